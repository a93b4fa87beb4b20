package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"aircher/internal/client"
	"aircher/internal/logging"
	"aircher/internal/router"
)

var subAgentPrompts = map[router.AgentType]string{
	router.AgentExplorer:         "You are a code exploration specialist. Answer the question by reasoning about the repository context given. Be concise and cite file paths.",
	router.AgentFileSearcher:     "You are a file location specialist. Identify which files are relevant to the question and why. Return paths, one per line, with a short note each.",
	router.AgentPatternFinder:    "You are a code pattern specialist. Identify recurring patterns, conventions, or duplicated logic relevant to the question.",
	router.AgentDependencyMapper: "You are a dependency analysis specialist. Map which components depend on which, relevant to the question.",
}

// ResearchRunner returns a runner for the research tool: each query goes to
// a cheap specialist model selected by the router, with no tool access. The
// working-set summary from the main conversation is included as context.
func (c *Controller) ResearchRunner() func(ctx context.Context, agentType router.AgentType, query string) (string, []string, error) {
	return func(ctx context.Context, agentType router.AgentType, query string) (string, []string, error) {
		system, ok := subAgentPrompts[agentType]
		if !ok {
			system = subAgentPrompts[router.AgentExplorer]
		}

		modelCfg := c.router.Select(agentType, router.EstimateComplexity(query))
		logging.Debug("research sub-agent call",
			"agent", string(agentType),
			"model", modelCfg.Model)

		var prompt strings.Builder
		fmt.Fprintf(&prompt, "Working directory: %s\n", c.conv.WorkDir)
		if files := c.conv.ActiveFiles(); len(files) > 0 {
			prompt.WriteString("Files already examined:\n")
			for _, f := range files {
				fmt.Fprintf(&prompt, "  - %s\n", f)
			}
		}
		prompt.WriteString("\nQuestion: ")
		prompt.WriteString(query)

		resp, err := c.provider.Chat(ctx, &client.ChatRequest{
			Model:    modelCfg.Model,
			Messages: []*genai.Content{genai.NewContentFromText(prompt.String(), genai.RoleUser)},
			System:   system,
		})
		if err != nil {
			return "", nil, &ProviderError{Provider: c.provider.Name(), Err: err}
		}

		c.router.RecordUsage(modelCfg, resp.InputTokens, resp.OutputTokens)
		return resp.Text, extractPaths(resp.Text), nil
	}
}

// extractPaths pulls path-looking tokens out of a findings report.
func extractPaths(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, field := range strings.Fields(text) {
		field = strings.Trim(field, "`,:;()[]")
		if !strings.Contains(field, "/") || strings.Contains(field, "://") {
			continue
		}
		if !strings.Contains(field, ".") {
			continue
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, field)
	}
	return out
}
