package policy

import (
	"strings"
	"testing"
)

func TestGenerateDiffCreate(t *testing.T) {
	p := newPendingChange(ChangeCreateFile, "write", "Create file a.txt", SafetySafe)
	p.Path = "a.txt"
	p.NewContent = "one\ntwo\n"

	diff := GenerateDiff(p)
	if !strings.Contains(diff, "--- /dev/null") {
		t.Errorf("create diff missing /dev/null header:\n%s", diff)
	}
	if !strings.Contains(diff, "+one\n+two\n") {
		t.Errorf("create diff missing added lines:\n%s", diff)
	}
}

func TestGenerateDiffModify(t *testing.T) {
	p := newPendingChange(ChangeModifyFile, "edit", "Modify file a.txt", SafetySafe)
	p.Path = "a.txt"
	p.OldContent = "one\ntwo\nthree\n"
	p.NewContent = "one\nTWO\nthree\n"

	diff := GenerateDiff(p)
	if !strings.Contains(diff, "-two") {
		t.Errorf("modify diff missing removed line:\n%s", diff)
	}
	if !strings.Contains(diff, "+TWO") {
		t.Errorf("modify diff missing added line:\n%s", diff)
	}
	if !strings.Contains(diff, " one") {
		t.Errorf("modify diff missing unchanged context:\n%s", diff)
	}
}

func TestGenerateDiffDelete(t *testing.T) {
	p := newPendingChange(ChangeDeleteFile, "delete", "Delete file a.txt", SafetyDangerous)
	p.Path = "a.txt"
	p.OldContent = "gone\n"

	diff := GenerateDiff(p)
	if !strings.Contains(diff, "+++ /dev/null") {
		t.Errorf("delete diff missing /dev/null header:\n%s", diff)
	}
	if !strings.Contains(diff, "-gone") {
		t.Errorf("delete diff missing removed line:\n%s", diff)
	}
}

func TestGenerateDiffCommand(t *testing.T) {
	p := newPendingChange(ChangeRunCommand, "bash", "Run command: make", SafetyCaution)
	p.Command = "make"
	p.Dir = "/work"

	diff := GenerateDiff(p)
	if !strings.Contains(diff, "$ make") {
		t.Errorf("command preview missing argv echo:\n%s", diff)
	}
	if !strings.Contains(diff, "/work") {
		t.Errorf("command preview missing working directory:\n%s", diff)
	}
}

func TestGenerateDiffDeterministic(t *testing.T) {
	p := newPendingChange(ChangeModifyFile, "edit", "Modify file b.txt", SafetySafe)
	p.Path = "b.txt"
	p.OldContent = "a\nb\nc\n"
	p.NewContent = "a\nx\nc\n"

	first := GenerateDiff(p)
	for i := 0; i < 5; i++ {
		if got := GenerateDiff(p); got != first {
			t.Fatalf("diff output not deterministic:\n%s\nvs\n%s", first, got)
		}
	}
}
