package mode

import "strings"

// Classifier infers a recommended mode from conversation intent. The
// recommendation is advisory: callers decide whether to commit it via
// Machine.Set, typically after confirming with the user.
type Classifier struct{}

// NewClassifier creates a classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

var buildSignals = []string{
	"implement", "write", "create", "add ", "fix", "refactor",
	"change", "update", "delete", "remove", "rename", "install",
	"apply", "build it", "make it", "let's do it", "go ahead",
}

var planSignals = []string{
	"explore", "understand", "explain", "analyze", "read",
	"investigate", "how does", "what is", "where is", "show me",
	"research", "look at", "review",
}

// Recommend returns the mode the message appears to call for and whether a
// transition away from current is recommended at all.
func (c *Classifier) Recommend(current Mode, message string) (Mode, bool) {
	lower := strings.ToLower(message)

	buildHits := countHits(lower, buildSignals)
	planHits := countHits(lower, planSignals)

	switch {
	case buildHits > planHits && current != ModeBuild:
		return ModeBuild, true
	case planHits > buildHits && current != ModePlan:
		return ModePlan, true
	default:
		return current, false
	}
}

func countHits(s string, signals []string) int {
	n := 0
	for _, sig := range signals {
		if strings.Contains(s, sig) {
			n++
		}
	}
	return n
}
