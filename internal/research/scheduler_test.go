package research

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"aircher/internal/router"
)

func waitTask(t *testing.T, h *Handle) *Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := h.Result(ctx)
	if err != nil {
		t.Fatalf("task did not finish: %v", err)
	}
	return result
}

func TestSchedulerRunsTask(t *testing.T) {
	s := NewScheduler(3, nil)
	defer s.Shutdown()

	task := NewTask("find callers", router.AgentExplorer, router.ComplexityLow,
		func(ctx context.Context, report func(Progress)) (string, []string, error) {
			report(Progress{Message: "searching"})
			return "found it", []string{"main.go"}, nil
		})

	h, err := s.Submit(task)
	if err != nil {
		t.Fatal(err)
	}

	result := waitTask(t, h)
	if result.Status != StatusSuccess {
		t.Errorf("status = %s, want success", result.Status)
	}
	if result.Findings != "found it" {
		t.Errorf("findings = %q", result.Findings)
	}
	if len(result.Files) != 1 || result.Files[0] != "main.go" {
		t.Errorf("files = %v", result.Files)
	}
}

func TestSchedulerBoundsConcurrency(t *testing.T) {
	const limit = 3
	s := NewScheduler(limit, nil)
	defer s.Shutdown()

	var running, peak int64
	var mu sync.Mutex
	release := make(chan struct{})

	var handles []*Handle
	for i := 0; i < 10; i++ {
		task := NewTask("burst", router.AgentExplorer, router.ComplexityLow,
			func(ctx context.Context, report func(Progress)) (string, []string, error) {
				n := atomic.AddInt64(&running, 1)
				mu.Lock()
				if n > peak {
					peak = n
				}
				mu.Unlock()
				<-release
				atomic.AddInt64(&running, -1)
				return "", nil, nil
			})
		h, err := s.Submit(task)
		if err != nil {
			t.Fatal(err)
		}
		handles = append(handles, h)
	}

	// Give the first wave time to occupy all slots.
	time.Sleep(100 * time.Millisecond)
	close(release)

	for _, h := range handles {
		waitTask(t, h)
	}

	mu.Lock()
	defer mu.Unlock()
	if peak > limit {
		t.Errorf("peak concurrency = %d, want <= %d", peak, limit)
	}
	if peak == 0 {
		t.Error("no task ever ran")
	}
}

func TestSchedulerCancelQueuedTask(t *testing.T) {
	s := NewScheduler(1, nil)
	defer s.Shutdown()

	block := make(chan struct{})
	started := make(chan struct{})
	first, err := s.Submit(NewTask("blocker", router.AgentExplorer, router.ComplexityLow,
		func(ctx context.Context, report func(Progress)) (string, []string, error) {
			close(started)
			<-block
			return "", nil, nil
		}))
	if err != nil {
		t.Fatal(err)
	}
	<-started

	queued, err := s.Submit(NewTask("queued", router.AgentExplorer, router.ComplexityLow,
		func(ctx context.Context, report func(Progress)) (string, []string, error) {
			return "should not run", nil, nil
		}))
	if err != nil {
		t.Fatal(err)
	}

	queued.Cancel()
	result := waitTask(t, queued)
	if result.Status != StatusCancelled {
		t.Errorf("cancelled queued task status = %s, want cancelled", result.Status)
	}

	close(block)
	waitTask(t, first)
}

func TestSchedulerCancelRunningTask(t *testing.T) {
	s := NewScheduler(1, nil)
	defer s.Shutdown()

	started := make(chan struct{})
	h, err := s.Submit(NewTask("long", router.AgentExplorer, router.ComplexityLow,
		func(ctx context.Context, report func(Progress)) (string, []string, error) {
			close(started)
			<-ctx.Done()
			return "", nil, ctx.Err()
		}))
	if err != nil {
		t.Fatal(err)
	}

	<-started
	h.Cancel()

	result := waitTask(t, h)
	if result.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", result.Status)
	}
}

func TestSchedulerFailedTask(t *testing.T) {
	s := NewScheduler(2, nil)
	defer s.Shutdown()

	h, err := s.Submit(NewTask("boom", router.AgentExplorer, router.ComplexityLow,
		func(ctx context.Context, report func(Progress)) (string, []string, error) {
			return "", nil, errors.New("no such symbol")
		}))
	if err != nil {
		t.Fatal(err)
	}

	result := waitTask(t, h)
	if result.Status != StatusFailed {
		t.Errorf("status = %s, want failed", result.Status)
	}
	if result.Err == nil {
		t.Error("failed result missing error")
	}
}

func TestSchedulerShutdownRejectsSubmissions(t *testing.T) {
	s := NewScheduler(1, nil)
	s.Shutdown()

	_, err := s.Submit(NewTask("late", router.AgentExplorer, router.ComplexityLow,
		func(ctx context.Context, report func(Progress)) (string, []string, error) {
			return "", nil, nil
		}))
	if !errors.Is(err, ErrShutdown) {
		t.Errorf("submit after shutdown error = %v, want ErrShutdown", err)
	}
}

func TestHandlePollProgress(t *testing.T) {
	s := NewScheduler(1, nil)
	defer s.Shutdown()

	reported := make(chan struct{})
	block := make(chan struct{})
	h, err := s.Submit(NewTask("progress", router.AgentExplorer, router.ComplexityLow,
		func(ctx context.Context, report func(Progress)) (string, []string, error) {
			report(Progress{Message: "halfway"})
			close(reported)
			<-block
			return "done", nil, nil
		}))
	if err != nil {
		t.Fatal(err)
	}

	<-reported
	p := h.Poll()
	if p.Status != StatusRunning {
		t.Errorf("status while running = %s, want running", p.Status)
	}
	if p.Message != "halfway" {
		t.Errorf("message = %q, want halfway", p.Message)
	}

	close(block)
	waitTask(t, h)
	if h.Poll().Status != StatusSuccess {
		t.Errorf("final polled status = %s, want success", h.Poll().Status)
	}
}
