package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"aircher/internal/logging"
)

// ErrUnknownTool is returned by Dispatch for names with no registered tool.
var ErrUnknownTool = errors.New("unknown tool")

// Registry manages the collection of available tools.
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}
	r.tools[name] = tool
	return nil
}

// MustRegister adds a tool and logs a warning on error.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		logging.Warn("failed to register tool", "tool", tool.Name(), "error", err)
	}
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tools.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools
}

// Names returns the names of all registered tools.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Declarations returns all tool declarations for Gemini.
func (r *Registry) Declarations() []*genai.FunctionDeclaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	declarations := make([]*genai.FunctionDeclaration, 0, len(r.tools))
	for _, tool := range r.tools {
		declarations = append(declarations, tool.Declaration())
	}
	return declarations
}

// GeminiTools returns the tools in Gemini format.
func (r *Registry) GeminiTools() []*genai.Tool {
	return []*genai.Tool{
		{
			FunctionDeclarations: r.Declarations(),
		},
	}
}

// Dispatch validates and executes a named tool, returning the result and
// wall-clock duration. A failed execution is reported both through the
// result's Success flag and an error result payload, never a panic.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (ToolResult, time.Duration, error) {
	tool, ok := r.Get(name)
	if !ok {
		return NewErrorResult(fmt.Sprintf("unknown tool: %s", name)), 0, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if err := tool.Validate(args); err != nil {
		return NewErrorResult(err.Error()), 0, nil
	}

	start := time.Now()
	result, err := tool.Execute(ctx, args)
	elapsed := time.Since(start)

	if err != nil {
		logging.Warn("tool execution failed",
			"tool", name,
			"duration", elapsed,
			"error", err)
		return NewErrorResult(err.Error()), elapsed, nil
	}

	logging.Debug("tool executed",
		"tool", name,
		"duration", elapsed,
		"success", result.Success)
	return result, elapsed, nil
}
