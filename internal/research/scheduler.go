package research

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"aircher/internal/events"
	"aircher/internal/logging"
)

// DefaultMaxConcurrent is how many research tasks may run at once.
const DefaultMaxConcurrent = 3

// ErrShutdown is returned by Submit after the scheduler has been shut down.
var ErrShutdown = errors.New("research scheduler is shut down")

// Handle tracks one submitted task. Poll is non-blocking; Result blocks
// until the task finishes or ctx is done.
type Handle struct {
	task *Task

	mu       sync.Mutex
	progress Progress

	cancel context.CancelFunc
	done   chan struct{}
	result *Result
}

// Poll returns the most recent progress report without blocking.
func (h *Handle) Poll() Progress {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress
}

// Cancel stops the task. Safe to call at any point in its lifecycle.
func (h *Handle) Cancel() {
	h.cancel()
}

// Result blocks until the task finishes, or returns ctx.Err() if the caller
// gives up waiting first.
func (h *Handle) Result(ctx context.Context) (*Result, error) {
	select {
	case <-h.done:
		return h.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Task returns the submitted task.
func (h *Handle) Task() *Task {
	return h.task
}

func (h *Handle) setProgress(p Progress) {
	h.mu.Lock()
	h.progress = p
	h.mu.Unlock()
}

// Scheduler runs research tasks with bounded concurrency. Submissions beyond
// the limit queue on the semaphore rather than failing.
type Scheduler struct {
	sem *semaphore.Weighted
	bus *events.Bus

	baseCtx   context.Context
	cancelAll context.CancelFunc
	wg        sync.WaitGroup

	mu       sync.Mutex
	shutdown bool
}

// NewScheduler creates a scheduler allowing maxConcurrent simultaneous
// tasks. Non-positive values fall back to DefaultMaxConcurrent.
func NewScheduler(maxConcurrent int, bus *events.Bus) *Scheduler {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
		bus:       bus,
		baseCtx:   ctx,
		cancelAll: cancel,
	}
}

// Submit queues a task and returns a handle for tracking it. The task waits
// for a concurrency slot before running.
func (s *Scheduler) Submit(task *Task) (*Handle, error) {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil, ErrShutdown
	}
	s.wg.Add(1)
	s.mu.Unlock()

	taskCtx, cancel := context.WithCancel(s.baseCtx)
	h := &Handle{
		task:     task,
		progress: Progress{Status: StatusQueued},
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go s.run(taskCtx, h)
	return h, nil
}

func (s *Scheduler) run(ctx context.Context, h *Handle) {
	defer s.wg.Done()
	start := time.Now()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		// Cancelled while still queued.
		s.finish(h, &Result{
			TaskID:   h.task.ID,
			Status:   StatusCancelled,
			Err:      err,
			Duration: time.Since(start),
		})
		return
	}
	defer s.sem.Release(1)

	h.setProgress(Progress{Status: StatusRunning, Elapsed: time.Since(start)})
	logging.Debug("research task started",
		"task", h.task.ID,
		"agent", string(h.task.AgentType),
		"description", h.task.Description)

	if s.bus != nil {
		s.bus.Publish(events.New(events.KindResearchStarted, h.task.Description, map[string]any{
			"task_id": h.task.ID,
			"agent":   string(h.task.AgentType),
		}))
	}

	report := func(p Progress) {
		p.Status = StatusRunning
		p.Elapsed = time.Since(start)
		h.setProgress(p)
	}

	findings, files, err := h.task.Run(ctx, report)

	result := &Result{
		TaskID:   h.task.ID,
		Findings: findings,
		Files:    files,
		Err:      err,
		Duration: time.Since(start),
	}
	switch {
	case err == nil:
		result.Status = StatusSuccess
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		result.Status = StatusCancelled
	default:
		result.Status = StatusFailed
	}

	s.finish(h, result)
}

func (s *Scheduler) finish(h *Handle, result *Result) {
	h.result = result
	h.setProgress(Progress{
		Status:  result.Status,
		Elapsed: result.Duration,
	})
	close(h.done)

	logging.Debug("research task finished",
		"task", result.TaskID,
		"status", result.Status.String(),
		"duration", result.Duration)

	if s.bus != nil {
		s.bus.Publish(events.New(events.KindResearchFinished, h.task.Description, map[string]any{
			"task_id": result.TaskID,
			"status":  result.Status.String(),
		}))
	}
}

// Shutdown cancels all queued and running tasks and waits for them to exit.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	s.cancelAll()
	s.wg.Wait()
}
