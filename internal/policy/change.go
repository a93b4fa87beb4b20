package policy

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SafetyLevel is the ordered risk tier assigned to a proposed action.
type SafetyLevel int

const (
	// SafetySafe covers read-only operations and writes inside the
	// workspace root.
	SafetySafe SafetyLevel = iota
	// SafetyCaution covers state-modifying operations that are routine but
	// not provably harmless.
	SafetyCaution
	// SafetyDangerous covers destructive commands, writes outside the
	// workspace, and network-affecting operations.
	SafetyDangerous
)

func (l SafetyLevel) String() string {
	switch l {
	case SafetySafe:
		return "safe"
	case SafetyCaution:
		return "caution"
	case SafetyDangerous:
		return "dangerous"
	default:
		return "unknown"
	}
}

// ApprovalMode is the session-wide autonomy policy.
type ApprovalMode string

const (
	// ApprovalReview requires approval for everything above Safe.
	ApprovalReview ApprovalMode = "review"
	// ApprovalSmart auto-approves Safe, asks for Caution and Dangerous.
	ApprovalSmart ApprovalMode = "smart"
	// ApprovalAuto auto-approves everything the mode ceiling permits.
	ApprovalAuto ApprovalMode = "auto"
	// ApprovalReadOnly rejects everything above Safe.
	ApprovalReadOnly ApprovalMode = "readonly"
)

// Valid reports whether m is a known approval mode.
func (m ApprovalMode) Valid() bool {
	switch m {
	case ApprovalReview, ApprovalSmart, ApprovalAuto, ApprovalReadOnly:
		return true
	}
	return false
}

// ChangeKind is the variant of a proposed mutation.
type ChangeKind int

const (
	// ChangeCreateFile creates a file that does not exist yet.
	ChangeCreateFile ChangeKind = iota
	// ChangeModifyFile overwrites or edits an existing file.
	ChangeModifyFile
	// ChangeDeleteFile removes a file.
	ChangeDeleteFile
	// ChangeRunCommand executes a shell command.
	ChangeRunCommand
	// ChangeOther covers non-mutating tool calls.
	ChangeOther
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeCreateFile:
		return "create_file"
	case ChangeModifyFile:
		return "modify_file"
	case ChangeDeleteFile:
		return "delete_file"
	case ChangeRunCommand:
		return "run_command"
	default:
		return "other"
	}
}

// PendingChange is a classified, not-yet-executed action awaiting a policy
// decision. It is never mutated after the decision, only superseded.
type PendingChange struct {
	ID          string
	Kind        ChangeKind
	Tool        string
	Description string
	Level       SafetyLevel
	Timestamp   time.Time

	// File change details (Create/Modify/Delete).
	Path       string
	OldContent string
	NewContent string

	// Command details (RunCommand).
	Command string
	Dir     string
}

func newPendingChange(kind ChangeKind, tool, description string, level SafetyLevel) *PendingChange {
	return &PendingChange{
		ID:          uuid.NewString(),
		Kind:        kind,
		Tool:        tool,
		Description: description,
		Level:       level,
		Timestamp:   time.Now(),
	}
}

// Mutating reports whether executing the change has side effects.
func (p *PendingChange) Mutating() bool {
	return p.Kind != ChangeOther
}

// Paths returns the filesystem paths the change touches, for snapshotting.
// Commands return nil: their reach is unknown, so the snapshotter captures
// the whole workspace instead.
func (p *PendingChange) Paths() []string {
	switch p.Kind {
	case ChangeCreateFile, ChangeModifyFile, ChangeDeleteFile:
		return []string{p.Path}
	default:
		return nil
	}
}

// commandWord returns argv[0] of a shell command ("npm test" -> "npm").
func commandWord(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return command
	}
	return fields[0]
}

// describeChange builds the human-readable summary shown to the approver.
func describeChange(kind ChangeKind, path, command string) string {
	switch kind {
	case ChangeCreateFile:
		return fmt.Sprintf("Create file %s", path)
	case ChangeModifyFile:
		return fmt.Sprintf("Modify file %s", path)
	case ChangeDeleteFile:
		return fmt.Sprintf("Delete file %s", path)
	case ChangeRunCommand:
		if len(command) > 120 {
			command = command[:117] + "..."
		}
		return fmt.Sprintf("Run command: %s", command)
	default:
		return "Tool call"
	}
}

// insideRoot reports whether path resolves to a location under root.
func insideRoot(root, path string) bool {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, abs)
	}
	abs = filepath.Clean(abs)
	rel, err := filepath.Rel(filepath.Clean(root), abs)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "..")
}
