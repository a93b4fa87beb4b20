package router

import (
	"sync"

	"aircher/internal/logging"
)

// AgentType identifies the role a model invocation serves. The orchestrator
// runs the main conversation; the others are research and build specialists.
type AgentType string

const (
	AgentOrchestrator    AgentType = "orchestrator"
	AgentExplorer        AgentType = "explorer"
	AgentBuilder         AgentType = "builder"
	AgentDebugger        AgentType = "debugger"
	AgentFileSearcher    AgentType = "file_searcher"
	AgentPatternFinder   AgentType = "pattern_finder"
	AgentDependencyMapper AgentType = "dependency_mapper"
)

// ModelConfig describes one selectable model and its pricing.
type ModelConfig struct {
	Provider        string  `yaml:"provider"`
	Model           string  `yaml:"model"`
	CostPer1MInput  float64 `yaml:"cost_per_1m_input"`
	CostPer1MOutput float64 `yaml:"cost_per_1m_output"`
	MaxContext      int     `yaml:"max_context"`
}

// EstimateCost returns the dollar cost of a call with the given token counts.
func (m ModelConfig) EstimateCost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1e6*m.CostPer1MInput +
		float64(outputTokens)/1e6*m.CostPer1MOutput
}

type routeKey struct {
	agent      AgentType
	complexity TaskComplexity
}

// UsageStats accumulates token and cost totals across a session. Counters
// only grow; there is no reset short of a new session.
type UsageStats struct {
	Requests     int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	ByModel      map[string]ModelUsage
}

// ModelUsage is the per-model slice of the session totals.
type ModelUsage struct {
	Requests     int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// Router selects a model for each (agent type, complexity) pair and tracks
// cumulative usage. Selection is a pure table lookup; the mutable state is
// only the usage counters.
type Router struct {
	table    map[routeKey]ModelConfig
	fallback ModelConfig

	mu    sync.Mutex
	stats UsageStats
}

// New creates a router with an empty routing table; every request resolves
// to the fallback model until routes are installed with SetRoute.
func New(fallback ModelConfig) *Router {
	return &Router{
		table:    make(map[routeKey]ModelConfig),
		fallback: fallback,
		stats:    UsageStats{ByModel: make(map[string]ModelUsage)},
	}
}

// NewDefault creates a router with the built-in routing table: cheap fast
// models for low-complexity and search-style agents, the large model for
// high-complexity orchestration and building.
func NewDefault() *Router {
	flash := ModelConfig{
		Provider:        "gemini",
		Model:           "gemini-3-flash-preview",
		CostPer1MInput:  0.10,
		CostPer1MOutput: 0.40,
		MaxContext:      1_000_000,
	}
	pro := ModelConfig{
		Provider:        "gemini",
		Model:           "gemini-3-pro-preview",
		CostPer1MInput:  1.25,
		CostPer1MOutput: 10.00,
		MaxContext:      1_000_000,
	}

	r := New(flash)
	for _, agent := range []AgentType{
		AgentOrchestrator, AgentExplorer, AgentBuilder, AgentDebugger,
		AgentFileSearcher, AgentPatternFinder, AgentDependencyMapper,
	} {
		r.SetRoute(agent, ComplexityLow, flash)
		r.SetRoute(agent, ComplexityMedium, flash)
		r.SetRoute(agent, ComplexityHigh, pro)
	}
	// Searchers never need the large model, even for broad queries.
	r.SetRoute(AgentFileSearcher, ComplexityHigh, flash)
	r.SetRoute(AgentPatternFinder, ComplexityHigh, flash)
	// Orchestration and debugging benefit from the large model earlier.
	r.SetRoute(AgentOrchestrator, ComplexityMedium, pro)
	r.SetRoute(AgentDebugger, ComplexityMedium, pro)

	return r
}

// Select returns the model for the given agent type and complexity. Unknown
// pairs fall back to the default model rather than failing: routing must
// always produce a usable model.
func (r *Router) Select(agent AgentType, complexity TaskComplexity) ModelConfig {
	if m, ok := r.table[routeKey{agent, complexity}]; ok {
		return m
	}
	logging.Debug("no route for agent/complexity, using fallback",
		"agent", string(agent),
		"complexity", complexity.String(),
		"fallback", r.fallback.Model)
	return r.fallback
}

// SetRoute installs or overrides a single routing table entry.
func (r *Router) SetRoute(agent AgentType, complexity TaskComplexity, m ModelConfig) {
	r.table[routeKey{agent, complexity}] = m
}

// SetFallback replaces the model used when no table entry matches.
func (r *Router) SetFallback(m ModelConfig) {
	r.fallback = m
}

// ForceModel routes every request to the named model, ignoring the table.
// Pricing is carried over from the current fallback entry.
func (r *Router) ForceModel(name string) {
	m := r.fallback
	m.Model = name
	r.table = make(map[routeKey]ModelConfig)
	r.fallback = m
}

// RecordUsage adds a completed call to the session totals.
func (r *Router) RecordUsage(m ModelConfig, inputTokens, outputTokens int) {
	cost := m.EstimateCost(inputTokens, outputTokens)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.Requests++
	r.stats.InputTokens += inputTokens
	r.stats.OutputTokens += outputTokens
	r.stats.CostUSD += cost

	mu := r.stats.ByModel[m.Model]
	mu.Requests++
	mu.InputTokens += inputTokens
	mu.OutputTokens += outputTokens
	mu.CostUSD += cost
	r.stats.ByModel[m.Model] = mu
}

// Usage returns a copy of the session totals.
func (r *Router) Usage() UsageStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.stats
	out.ByModel = make(map[string]ModelUsage, len(r.stats.ByModel))
	for k, v := range r.stats.ByModel {
		out.ByModel[k] = v
	}
	return out
}
