package router

import "strings"

// TaskComplexity is the routing tier assigned to a task.
type TaskComplexity int

const (
	ComplexityLow TaskComplexity = iota
	ComplexityMedium
	ComplexityHigh
)

func (c TaskComplexity) String() string {
	switch c {
	case ComplexityLow:
		return "low"
	case ComplexityMedium:
		return "medium"
	case ComplexityHigh:
		return "high"
	default:
		return "unknown"
	}
}

var highComplexitySignals = []string{
	"refactor", "architect", "redesign", "migrate", "debug", "race",
	"deadlock", "across the codebase", "all files", "entire", "rewrite",
	"implement", "design",
}

var mediumComplexitySignals = []string{
	"fix", "add", "change", "update", "write", "create", "test",
	"explain how", "why does", "compare",
}

// EstimateComplexity assigns a routing tier from surface features of the
// message: length, signal keywords, and multi-step markers. It errs toward
// the cheaper tier; the model router's fallback keeps misroutes recoverable.
func EstimateComplexity(message string) TaskComplexity {
	message = strings.TrimSpace(message)
	lower := strings.ToLower(message)

	score := 0

	words := len(strings.Fields(message))
	switch {
	case words > 100:
		score += 3
	case words > 40:
		score += 2
	case words > 15:
		score++
	}

	for _, sig := range highComplexitySignals {
		if strings.Contains(lower, sig) {
			score += 2
		}
	}
	for _, sig := range mediumComplexitySignals {
		if strings.Contains(lower, sig) {
			score++
		}
	}

	// Enumerations and "then" chains indicate multi-step work.
	if strings.Contains(lower, " then ") || strings.Contains(lower, " and then ") {
		score++
	}
	for _, marker := range []string{"1.", "2.", "- ", "* "} {
		if strings.Contains(message, "\n"+marker) {
			score++
			break
		}
	}

	switch {
	case score >= 5:
		return ComplexityHigh
	case score >= 2:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}
