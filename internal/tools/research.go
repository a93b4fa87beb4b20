package tools

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"aircher/internal/research"
	"aircher/internal/router"
)

// ResearchRunner performs one research query and returns the findings plus
// the files examined. The agent wires this to a model-backed sub-agent.
type ResearchRunner func(ctx context.Context, agentType router.AgentType, query string) (string, []string, error)

// ResearchTool fans research queries out to the scheduler and collects the
// findings. Multiple queries in one call run concurrently, up to the
// scheduler's limit.
type ResearchTool struct {
	scheduler *research.Scheduler
	runner    ResearchRunner
}

// NewResearchTool creates a new ResearchTool instance.
func NewResearchTool(scheduler *research.Scheduler, runner ResearchRunner) *ResearchTool {
	return &ResearchTool{scheduler: scheduler, runner: runner}
}

func (t *ResearchTool) Name() string {
	return "research"
}

func (t *ResearchTool) Description() string {
	return `Runs read-only research queries against the codebase using specialist sub-agents. Multiple queries run concurrently.

PARAMETERS:
- queries (required): One or more research questions
- agent_type (optional): Specialist to use: explorer, file_searcher, pattern_finder, dependency_mapper (default: explorer)`
}

func (t *ResearchTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"queries": {
					Type:        genai.TypeArray,
					Description: "Research questions to answer",
					Items: &genai.Schema{
						Type: genai.TypeString,
					},
				},
				"agent_type": {
					Type:        genai.TypeString,
					Description: "Specialist agent type",
				},
			},
			Required: []string{"queries"},
		},
	}
}

var researchAgentTypes = map[string]router.AgentType{
	"explorer":          router.AgentExplorer,
	"file_searcher":     router.AgentFileSearcher,
	"pattern_finder":    router.AgentPatternFinder,
	"dependency_mapper": router.AgentDependencyMapper,
}

func (t *ResearchTool) Validate(args map[string]any) error {
	queries := getQueries(args)
	if len(queries) == 0 {
		return NewValidationError("queries", "at least one query is required")
	}
	if at, ok := GetString(args, "agent_type"); ok && at != "" {
		if _, known := researchAgentTypes[at]; !known {
			return NewValidationError("agent_type", fmt.Sprintf("unknown agent type %q", at))
		}
	}
	return nil
}

func (t *ResearchTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	queries := getQueries(args)
	agentType := researchAgentTypes[GetStringDefault(args, "agent_type", "explorer")]
	if agentType == "" {
		agentType = router.AgentExplorer
	}

	handles := make([]*research.Handle, 0, len(queries))
	for _, q := range queries {
		query := q
		task := research.NewTask(query, agentType, router.EstimateComplexity(query),
			func(taskCtx context.Context, report func(research.Progress)) (string, []string, error) {
				report(research.Progress{Message: "querying " + string(agentType)})
				return t.runner(taskCtx, agentType, query)
			})
		h, err := t.scheduler.Submit(task)
		if err != nil {
			return NewErrorResult(fmt.Sprintf("cannot submit research task: %v", err)), nil
		}
		handles = append(handles, h)
	}

	var b strings.Builder
	var allFiles []string
	failures := 0
	for i, h := range handles {
		result, err := h.Result(ctx)
		if err != nil {
			// Caller gave up; stop the remaining tasks.
			for _, rest := range handles[i:] {
				rest.Cancel()
			}
			return NewErrorResult(fmt.Sprintf("research interrupted: %v", err)), nil
		}
		fmt.Fprintf(&b, "## %s\n", h.Task().Description)
		if result.Status == research.StatusSuccess {
			b.WriteString(result.Findings)
		} else {
			failures++
			fmt.Fprintf(&b, "(%s: %v)", result.Status, result.Err)
		}
		b.WriteString("\n\n")
		allFiles = append(allFiles, result.Files...)
	}

	out := strings.TrimSpace(b.String())
	if failures == len(handles) {
		return NewErrorResult("all research queries failed:\n" + out), nil
	}
	return NewSuccessResultWithData(out, map[string]any{"files": allFiles}), nil
}

func getQueries(args map[string]any) []string {
	raw, ok := args["queries"]
	if !ok {
		return nil
	}
	var out []string
	switch v := raw.(type) {
	case []string:
		out = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case string:
		if strings.TrimSpace(v) != "" {
			out = []string{v}
		}
	}
	return out
}
