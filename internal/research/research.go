package research

import (
	"context"
	"time"

	"github.com/google/uuid"

	"aircher/internal/router"
)

// Status is the lifecycle state of a research task.
type Status int

const (
	StatusQueued Status = iota
	StatusRunning
	StatusSuccess
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// RunFunc does the actual research work. It reports interim progress through
// report and returns its findings plus the files it examined.
type RunFunc func(ctx context.Context, report func(Progress)) (findings string, files []string, err error)

// Task is a unit of research work submitted to the scheduler.
type Task struct {
	ID          string
	Description string
	AgentType   router.AgentType
	Complexity  router.TaskComplexity
	Run         RunFunc
}

// NewTask creates a task with a generated ID.
func NewTask(description string, agentType router.AgentType, complexity router.TaskComplexity, run RunFunc) *Task {
	return &Task{
		ID:          uuid.NewString(),
		Description: description,
		AgentType:   agentType,
		Complexity:  complexity,
		Run:         run,
	}
}

// Progress is a point-in-time view of a running task.
type Progress struct {
	Status  Status
	Message string
	Elapsed time.Duration
}

// Result is the final outcome of a task.
type Result struct {
	TaskID   string
	Status   Status
	Findings string
	Files    []string
	Err      error
	Duration time.Duration
}
