package permission

import "aircher/internal/policy"

// Response is the approver's answer to a permission request.
type Response int

const (
	// Denied blocks the gated action. Timeouts and cancellation also
	// resolve to Denied: the channel fails safe, never open.
	Denied Response = iota
	// Approved allows this specific action once.
	Approved
	// ApprovedSimilar allows the action and remembers the decision for
	// structurally identical requests within the session.
	ApprovedSimilar
)

func (r Response) String() string {
	switch r {
	case Approved:
		return "approved"
	case ApprovedSimilar:
		return "approved_similar"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Allowed reports whether the response permits execution.
func (r Response) Allowed() bool {
	return r == Approved || r == ApprovedSimilar
}

// Request is the payload an approver inspects before deciding.
type Request struct {
	Tool        string
	Command     string
	Args        map[string]any
	Description string
	Level       policy.SafetyLevel
	Diff        string
}

// NewRequest builds a request from a classified pending change.
func NewRequest(p *policy.PendingChange, args map[string]any) *Request {
	return &Request{
		Tool:        p.Tool,
		Command:     p.Command,
		Args:        args,
		Description: p.Description,
		Level:       p.Level,
		Diff:        policy.GenerateDiff(p),
	}
}
