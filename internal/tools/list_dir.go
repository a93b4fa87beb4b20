package tools

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"google.golang.org/genai"
)

// ListDirTool lists the entries of a directory.
type ListDirTool struct {
	workDir string
}

// NewListDirTool creates a new ListDirTool instance.
func NewListDirTool(workDir string) *ListDirTool {
	return &ListDirTool{workDir: workDir}
}

func (t *ListDirTool) Name() string {
	return "list_dir"
}

func (t *ListDirTool) Description() string {
	return `Lists the entries of a directory. Directories are suffixed with "/".

PARAMETERS:
- path (optional): Directory to list (default: working directory)`
}

func (t *ListDirTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {
					Type:        genai.TypeString,
					Description: "The directory to list",
				},
			},
		},
	}
}

func (t *ListDirTool) Validate(args map[string]any) error {
	return nil
}

func (t *ListDirTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path := resolvePath(t.workDir, GetStringDefault(args, "path", "."))

	entries, err := os.ReadDir(path)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot list %s: %v", path, err)), nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return NewSuccessResult("(empty directory)"), nil
	}
	return NewSuccessResultWithData(strings.Join(names, "\n"), map[string]any{"count": len(names)}), nil
}
