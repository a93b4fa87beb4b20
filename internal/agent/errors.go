package agent

import "fmt"

// ProviderError wraps a failure from the model backend.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// OrchestrationTimeout reports that a conversation turn exceeded the
// tool-call iteration limit without the model producing a final answer.
type OrchestrationTimeout struct {
	MaxTurns int
}

func (e *OrchestrationTimeout) Error() string {
	return fmt.Sprintf("conversation turn exceeded %d tool iterations without completing", e.MaxTurns)
}

// ToolExecutionError reports that the turn was cancelled while executing a
// tool call. Ordinary tool failures are fed back to the model instead.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s interrupted: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// PlanModeViolation reports a mutating action blocked by plan mode.
type PlanModeViolation struct {
	Tool        string
	Description string
}

func (e *PlanModeViolation) Error() string {
	return fmt.Sprintf("plan mode blocks %s: %s", e.Tool, e.Description)
}

// PermissionDenied reports an action the approver (or a timeout) refused.
type PermissionDenied struct {
	Tool        string
	Description string
}

func (e *PermissionDenied) Error() string {
	return fmt.Sprintf("permission denied for %s: %s", e.Tool, e.Description)
}

// SnapshotFailure reports that pre-change state could not be captured, so
// the change was not executed.
type SnapshotFailure struct {
	Tool string
	Err  error
}

func (e *SnapshotFailure) Error() string {
	return fmt.Sprintf("snapshot before %s failed: %v", e.Tool, e.Err)
}

func (e *SnapshotFailure) Unwrap() error { return e.Err }
