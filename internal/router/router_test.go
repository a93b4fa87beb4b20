package router

import (
	"sync"
	"testing"
)

func TestSelectFallback(t *testing.T) {
	r := New(ModelConfig{Provider: "gemini", Model: "fallback-model"})
	r.SetRoute(AgentOrchestrator, ComplexityHigh, ModelConfig{Provider: "gemini", Model: "big-model"})

	if got := r.Select(AgentOrchestrator, ComplexityHigh); got.Model != "big-model" {
		t.Errorf("routed model = %s, want big-model", got.Model)
	}
	if got := r.Select(AgentExplorer, ComplexityLow); got.Model != "fallback-model" {
		t.Errorf("unrouted pair = %s, want fallback-model", got.Model)
	}
}

func TestForceModelOverridesTable(t *testing.T) {
	r := NewDefault()
	r.ForceModel("my-model")

	for _, c := range []TaskComplexity{ComplexityLow, ComplexityMedium, ComplexityHigh} {
		if got := r.Select(AgentOrchestrator, c); got.Model != "my-model" {
			t.Errorf("Select(orchestrator, %s) = %s, want my-model", c, got.Model)
		}
	}
}

func TestSetFallback(t *testing.T) {
	r := New(ModelConfig{Model: "old"})
	r.SetFallback(ModelConfig{Model: "new"})

	if got := r.Select(AgentExplorer, ComplexityLow); got.Model != "new" {
		t.Errorf("fallback = %s, want new", got.Model)
	}
}

func TestDefaultTableCoversAllPairs(t *testing.T) {
	r := NewDefault()
	agents := []AgentType{
		AgentOrchestrator, AgentExplorer, AgentBuilder, AgentDebugger,
		AgentFileSearcher, AgentPatternFinder, AgentDependencyMapper,
	}
	for _, agent := range agents {
		for _, c := range []TaskComplexity{ComplexityLow, ComplexityMedium, ComplexityHigh} {
			if got := r.Select(agent, c); got.Model == "" {
				t.Errorf("Select(%s, %s) returned empty model", agent, c)
			}
		}
	}

	// Searchers stay on the cheap model even at high complexity.
	if got := r.Select(AgentFileSearcher, ComplexityHigh); got.Model != "gemini-3-flash-preview" {
		t.Errorf("file searcher high = %s, want flash", got.Model)
	}
	// The orchestrator gets the large model for hard work.
	if got := r.Select(AgentOrchestrator, ComplexityHigh); got.Model != "gemini-3-pro-preview" {
		t.Errorf("orchestrator high = %s, want pro", got.Model)
	}
}

func TestEstimateCost(t *testing.T) {
	m := ModelConfig{CostPer1MInput: 1.0, CostPer1MOutput: 10.0}
	got := m.EstimateCost(1_000_000, 100_000)
	want := 1.0 + 1.0
	if got != want {
		t.Errorf("cost = %f, want %f", got, want)
	}
}

func TestRecordUsageAccumulates(t *testing.T) {
	r := NewDefault()
	m := ModelConfig{Model: "m", CostPer1MInput: 1.0, CostPer1MOutput: 2.0}

	r.RecordUsage(m, 100, 50)
	r.RecordUsage(m, 200, 100)

	usage := r.Usage()
	if usage.Requests != 2 {
		t.Errorf("requests = %d, want 2", usage.Requests)
	}
	if usage.InputTokens != 300 || usage.OutputTokens != 150 {
		t.Errorf("tokens = %d/%d, want 300/150", usage.InputTokens, usage.OutputTokens)
	}
	if mu := usage.ByModel["m"]; mu.Requests != 2 || mu.InputTokens != 300 {
		t.Errorf("per-model usage = %+v", mu)
	}
}

func TestRecordUsageConcurrent(t *testing.T) {
	r := NewDefault()
	m := ModelConfig{Model: "m", CostPer1MInput: 1.0, CostPer1MOutput: 1.0}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RecordUsage(m, 10, 5)
		}()
	}
	wg.Wait()

	usage := r.Usage()
	if usage.InputTokens != 500 || usage.OutputTokens != 250 {
		t.Errorf("tokens = %d/%d, want 500/250", usage.InputTokens, usage.OutputTokens)
	}
	if usage.Requests != 50 {
		t.Errorf("requests = %d, want 50", usage.Requests)
	}
}

func TestUsageReturnsCopy(t *testing.T) {
	r := NewDefault()
	m := ModelConfig{Model: "m"}
	r.RecordUsage(m, 1, 1)

	usage := r.Usage()
	usage.ByModel["m"] = ModelUsage{Requests: 999}

	if r.Usage().ByModel["m"].Requests == 999 {
		t.Error("Usage must return a copy of the per-model map")
	}
}

func TestEstimateComplexity(t *testing.T) {
	tests := []struct {
		message string
		want    TaskComplexity
	}{
		{"hi", ComplexityLow},
		{"what is this?", ComplexityLow},
		{"fix the typo in the readme", ComplexityMedium},
		{"refactor the storage layer to support migrations and then update every caller across the codebase, add tests, and fix the resulting race conditions in the scheduler", ComplexityHigh},
	}
	for _, tt := range tests {
		if got := EstimateComplexity(tt.message); got != tt.want {
			t.Errorf("EstimateComplexity(%q) = %s, want %s", tt.message, got, tt.want)
		}
	}
}
