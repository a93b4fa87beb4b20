package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/genai"

	"aircher/internal/fileutil"
)

// WriteTool creates or overwrites a file.
type WriteTool struct {
	workDir string
}

// NewWriteTool creates a new WriteTool instance.
func NewWriteTool(workDir string) *WriteTool {
	return &WriteTool{workDir: workDir}
}

func (t *WriteTool) Name() string {
	return "write"
}

func (t *WriteTool) Description() string {
	return `Writes content to a file, creating it if needed and overwriting if it exists. Parent directories are created automatically. The write is atomic.

PARAMETERS:
- file_path (required): Path to the file
- content (required): Full content to write`
}

func (t *WriteTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"file_path": {
					Type:        genai.TypeString,
					Description: "The path of the file to write",
				},
				"content": {
					Type:        genai.TypeString,
					Description: "The full content of the file",
				},
			},
			Required: []string{"file_path", "content"},
		},
	}
}

func (t *WriteTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "file_path")
	if !ok || path == "" {
		return NewValidationError("file_path", "is required")
	}
	if _, ok := GetString(args, "content"); !ok {
		return NewValidationError("content", "is required")
	}
	return nil
}

func (t *WriteTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path := resolvePath(t.workDir, GetStringDefault(args, "file_path", ""))
	content := GetStringDefault(args, "content", "")

	_, statErr := os.Stat(path)
	existed := statErr == nil

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return NewErrorResult(fmt.Sprintf("cannot create directory for %s: %v", path, err)), nil
	}
	if err := fileutil.AtomicWriteString(path, content, 0644); err != nil {
		return NewErrorResult(fmt.Sprintf("cannot write %s: %v", path, err)), nil
	}

	verb := "created"
	if existed {
		verb = "updated"
	}
	return NewSuccessResult(fmt.Sprintf("%s %s (%d bytes)", verb, path, len(content))), nil
}
