package events

import "time"

// Kind identifies the variant of an AgentEvent.
type Kind string

const (
	// KindModeChanged is published when the session moves between Plan and Build.
	KindModeChanged Kind = "mode_changed"
	// KindToolExecuted is published after each tool call, success or failure.
	KindToolExecuted Kind = "tool_executed"
	// KindDiagnostic carries out-of-band observations (watcher hits, warnings).
	KindDiagnostic Kind = "diagnostic"
	// KindResearchStarted is published when a research task begins running.
	KindResearchStarted Kind = "research_started"
	// KindResearchFinished is published when a research task reaches a terminal state.
	KindResearchFinished Kind = "research_finished"
	// KindSnapshotTaken is published after a pre-mutation snapshot succeeds.
	KindSnapshotTaken Kind = "snapshot_taken"
)

// Event is the payload delivered to bus listeners.
type Event struct {
	Kind    Kind
	Time    time.Time
	Message string
	Data    map[string]any
}

// New creates an event stamped with the current time.
func New(kind Kind, message string, data map[string]any) Event {
	return Event{Kind: kind, Time: time.Now(), Message: message, Data: data}
}
