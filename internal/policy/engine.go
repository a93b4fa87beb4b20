package policy

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"aircher/internal/logging"
	"aircher/internal/mode"
)

// Decision is the outcome of running a pending change through the policy.
type Decision int

const (
	// DecisionAutoApprove lets the change execute without asking.
	DecisionAutoApprove Decision = iota
	// DecisionRequireApproval gates the change behind the permission channel.
	DecisionRequireApproval
	// DecisionReject blocks the change outright.
	DecisionReject
)

func (d Decision) String() string {
	switch d {
	case DecisionAutoApprove:
		return "auto_approve"
	case DecisionRequireApproval:
		return "require_approval"
	case DecisionReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Decide maps a safety level, approval mode, and agent mode to a decision.
// It is a pure function of its three inputs and total over them: Plan mode
// is a hard ceiling that rejects anything above Safe regardless of the
// approval mode, and an unrecognized approval mode falls back to Review.
func Decide(level SafetyLevel, approval ApprovalMode, agentMode mode.Mode) Decision {
	if agentMode == mode.ModePlan && level > SafetySafe {
		return DecisionReject
	}

	switch approval {
	case ApprovalAuto:
		return DecisionAutoApprove
	case ApprovalSmart, ApprovalReview:
		if level == SafetySafe {
			return DecisionAutoApprove
		}
		return DecisionRequireApproval
	case ApprovalReadOnly:
		if level == SafetySafe {
			return DecisionAutoApprove
		}
		return DecisionReject
	default:
		if level == SafetySafe {
			return DecisionAutoApprove
		}
		return DecisionRequireApproval
	}
}

// Engine classifies proposed actions into pending changes and applies the
// session approval policy. It holds no per-call state beyond the rule table
// and the session's remembered approvals.
type Engine struct {
	workDir string

	mu       sync.RWMutex
	approval ApprovalMode
	similar  map[string]struct{}
}

// NewEngine creates an engine for the given workspace root.
func NewEngine(workDir string, approval ApprovalMode) *Engine {
	if !approval.Valid() {
		approval = ApprovalReview
	}
	return &Engine{
		workDir:  workDir,
		approval: approval,
		similar:  make(map[string]struct{}),
	}
}

// ApprovalMode returns the active approval mode.
func (e *Engine) ApprovalMode() ApprovalMode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.approval
}

// SetApprovalMode changes the session approval policy.
func (e *Engine) SetApprovalMode(m ApprovalMode) error {
	if !m.Valid() {
		return fmt.Errorf("unknown approval mode: %q", m)
	}
	e.mu.Lock()
	e.approval = m
	e.mu.Unlock()
	logging.Info("approval mode changed", "mode", string(m))
	return nil
}

// Classify assigns a change kind and safety level to a requested tool call.
func (e *Engine) Classify(toolName string, args map[string]any) *PendingChange {
	switch toolName {
	case "write", "edit":
		return e.classifyFileWrite(toolName, args)
	case "delete":
		path := stringArg(args, "file_path")
		p := newPendingChange(ChangeDeleteFile, toolName, describeChange(ChangeDeleteFile, path, ""), SafetyDangerous)
		p.Path = path
		if old, err := os.ReadFile(e.resolve(path)); err == nil {
			p.OldContent = string(old)
		}
		return p
	case "bash":
		return e.classifyCommand(toolName, args)
	default:
		// Read-only capabilities: read, glob, grep, list_dir, research.
		return newPendingChange(ChangeOther, toolName, describeChange(ChangeOther, "", ""), SafetySafe)
	}
}

func (e *Engine) classifyFileWrite(toolName string, args map[string]any) *PendingChange {
	path := stringArg(args, "file_path")

	kind := ChangeCreateFile
	var oldContent string
	if data, err := os.ReadFile(e.resolve(path)); err == nil {
		kind = ChangeModifyFile
		oldContent = string(data)
	}

	level := SafetySafe
	if !insideRoot(e.workDir, path) {
		level = SafetyDangerous
	}

	p := newPendingChange(kind, toolName, describeChange(kind, path, ""), level)
	p.Path = path
	p.OldContent = oldContent
	p.NewContent = e.proposedContent(toolName, args, oldContent)
	return p
}

// proposedContent reconstructs the post-change file content for the preview.
func (e *Engine) proposedContent(toolName string, args map[string]any, oldContent string) string {
	switch toolName {
	case "write":
		return stringArg(args, "content")
	case "edit":
		oldString := stringArg(args, "old_string")
		newString := stringArg(args, "new_string")
		if oldString == "" {
			return oldContent
		}
		return strings.Replace(oldContent, oldString, newString, 1)
	default:
		return oldContent
	}
}

var dangerousCommandPatterns = []string{
	"rm -rf /",
	"rm -rf ~",
	"mkfs",
	"dd if=/dev/zero",
	"of=/dev/",
	"> /dev/sd",
	"chmod 000",
	"drop database",
	"shutdown",
	"reboot",
	"curl | bash",
	"curl|bash",
	"wget | bash",
	"| sh",
	"git push --force",
}

var networkCommandWords = map[string]struct{}{
	"curl": {}, "wget": {}, "ssh": {}, "scp": {}, "nc": {}, "rsync": {},
}

var safeCommandPrefixes = []string{
	"ls", "pwd", "echo", "cat", "grep", "find", "head", "tail", "wc",
	"which", "file", "stat", "du", "df",
	"git status", "git diff", "git log", "git blame", "git show", "git branch",
}

func (e *Engine) classifyCommand(toolName string, args map[string]any) *PendingChange {
	command := strings.TrimSpace(stringArg(args, "command"))
	lower := strings.ToLower(command)

	level := SafetyCaution
	for _, pat := range dangerousCommandPatterns {
		if strings.Contains(lower, pat) {
			level = SafetyDangerous
			break
		}
	}
	if level != SafetyDangerous {
		if _, ok := networkCommandWords[commandWord(lower)]; ok {
			level = SafetyDangerous
		}
	}
	if level == SafetyCaution {
		for _, prefix := range safeCommandPrefixes {
			if lower == prefix || strings.HasPrefix(lower, prefix+" ") {
				level = SafetySafe
				break
			}
		}
	}
	// rm without the catastrophic patterns above still deletes data.
	if level == SafetyCaution && commandWord(lower) == "rm" {
		level = SafetyDangerous
	}

	p := newPendingChange(ChangeRunCommand, toolName, describeChange(ChangeRunCommand, "", command), level)
	p.Command = command
	p.Dir = e.workDir
	return p
}

// RememberSimilar records an ApprovedSimilar decision so structurally
// identical requests skip the approver for the rest of the session.
// Identity is tool name + safety level, plus the command word for shell
// commands: looser than full-parameter match (which would never repeat) and
// tighter than tool-name-only (which would let "ls" approve "rm").
func (e *Engine) RememberSimilar(p *PendingChange) {
	key := similarKey(p)
	e.mu.Lock()
	e.similar[key] = struct{}{}
	e.mu.Unlock()
	logging.Debug("remembered approval for similar requests", "key", key)
}

// IsRemembered reports whether a structurally identical request was
// previously approved with ApprovedSimilar.
func (e *Engine) IsRemembered(p *PendingChange) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.similar[similarKey(p)]
	return ok
}

// ForgetSimilar clears the session's remembered approvals.
func (e *Engine) ForgetSimilar() {
	e.mu.Lock()
	e.similar = make(map[string]struct{})
	e.mu.Unlock()
}

func similarKey(p *PendingChange) string {
	key := p.Tool + "/" + p.Level.String()
	if p.Kind == ChangeRunCommand {
		key += "/" + commandWord(p.Command)
	}
	return key
}

func (e *Engine) resolve(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return path
	}
	return e.workDir + string(os.PathSeparator) + path
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
