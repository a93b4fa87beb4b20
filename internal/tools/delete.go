package tools

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// DeleteTool removes a single file. Directories are refused.
type DeleteTool struct {
	workDir string
}

// NewDeleteTool creates a new DeleteTool instance.
func NewDeleteTool(workDir string) *DeleteTool {
	return &DeleteTool{workDir: workDir}
}

func (t *DeleteTool) Name() string {
	return "delete"
}

func (t *DeleteTool) Description() string {
	return `Deletes a single file. Refuses directories.

PARAMETERS:
- file_path (required): Path to the file to delete`
}

func (t *DeleteTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"file_path": {
					Type:        genai.TypeString,
					Description: "The path of the file to delete",
				},
			},
			Required: []string{"file_path"},
		},
	}
}

func (t *DeleteTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "file_path")
	if !ok || path == "" {
		return NewValidationError("file_path", "is required")
	}
	return nil
}

func (t *DeleteTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path := resolvePath(t.workDir, GetStringDefault(args, "file_path", ""))

	info, err := os.Stat(path)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot delete %s: %v", path, err)), nil
	}
	if info.IsDir() {
		return NewErrorResult(fmt.Sprintf("%s is a directory; only files can be deleted", path)), nil
	}

	if err := os.Remove(path); err != nil {
		return NewErrorResult(fmt.Sprintf("cannot delete %s: %v", path, err)), nil
	}
	return NewSuccessResult(fmt.Sprintf("deleted %s", path)), nil
}
