package policy

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// GenerateDiff renders a deterministic, human-readable preview of a pending
// change for the approver: a unified-diff-like listing for file changes and
// an argv echo for commands. It never executes the action.
func GenerateDiff(p *PendingChange) string {
	switch p.Kind {
	case ChangeCreateFile:
		var b strings.Builder
		fmt.Fprintf(&b, "--- /dev/null\n+++ %s\n", p.Path)
		writePrefixed(&b, "+", p.NewContent)
		return b.String()

	case ChangeModifyFile:
		var b strings.Builder
		fmt.Fprintf(&b, "--- %s\n+++ %s\n", p.Path, p.Path)
		b.WriteString(lineDiff(p.OldContent, p.NewContent))
		return b.String()

	case ChangeDeleteFile:
		var b strings.Builder
		fmt.Fprintf(&b, "--- %s\n+++ /dev/null\n", p.Path)
		writePrefixed(&b, "-", p.OldContent)
		return b.String()

	case ChangeRunCommand:
		dir := p.Dir
		if dir == "" {
			dir = "."
		}
		return fmt.Sprintf("$ %s\n# working directory: %s", p.Command, dir)

	default:
		return p.Description
	}
}

// lineDiff produces a line-oriented +/- listing of old vs new content.
func lineDiff(old, new string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(old, new)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writePrefixed(&out, "-", d.Text)
		case diffmatchpatch.DiffInsert:
			writePrefixed(&out, "+", d.Text)
		case diffmatchpatch.DiffEqual:
			writePrefixed(&out, " ", d.Text)
		}
	}
	return out.String()
}

func writePrefixed(b *strings.Builder, prefix, text string) {
	if text == "" {
		return
	}
	trimmed := strings.TrimSuffix(text, "\n")
	for _, line := range strings.Split(trimmed, "\n") {
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
