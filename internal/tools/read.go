package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
)

const (
	// DefaultReadLimit is the default number of lines returned per read.
	DefaultReadLimit = 2000
	// MaxReadBytes caps a single read to keep responses bounded.
	MaxReadBytes = 512 * 1024
)

// ReadTool reads file contents with optional offset and limit.
type ReadTool struct {
	workDir string
}

// NewReadTool creates a new ReadTool instance.
func NewReadTool(workDir string) *ReadTool {
	return &ReadTool{workDir: workDir}
}

func (t *ReadTool) Name() string {
	return "read"
}

func (t *ReadTool) Description() string {
	return `Reads a file and returns its contents with line numbers.

PARAMETERS:
- file_path (required): Path to the file, absolute or relative to the working directory
- offset (optional): 1-based line number to start from (default: 1)
- limit (optional): Maximum number of lines to return (default: 2000)`
}

func (t *ReadTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"file_path": {
					Type:        genai.TypeString,
					Description: "The path of the file to read",
				},
				"offset": {
					Type:        genai.TypeInteger,
					Description: "1-based line number to start reading from",
				},
				"limit": {
					Type:        genai.TypeInteger,
					Description: "Maximum number of lines to return",
				},
			},
			Required: []string{"file_path"},
		},
	}
}

func (t *ReadTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "file_path")
	if !ok || path == "" {
		return NewValidationError("file_path", "is required")
	}
	if offset, ok := GetInt(args, "offset"); ok && offset < 1 {
		return NewValidationError("offset", "must be >= 1")
	}
	if limit, ok := GetInt(args, "limit"); ok && limit < 1 {
		return NewValidationError("limit", "must be >= 1")
	}
	return nil
}

func (t *ReadTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path := resolvePath(t.workDir, GetStringDefault(args, "file_path", ""))
	offset := GetIntDefault(args, "offset", 1)
	limit := GetIntDefault(args, "limit", DefaultReadLimit)

	info, err := os.Stat(path)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot read %s: %v", path, err)), nil
	}
	if info.IsDir() {
		return NewErrorResult(fmt.Sprintf("%s is a directory", path)), nil
	}
	if info.Size() > MaxReadBytes {
		return NewErrorResult(fmt.Sprintf("%s is too large (%d bytes); read it in chunks with offset/limit", path, info.Size())), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot read %s: %v", path, err)), nil
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if offset > len(lines) {
		return NewErrorResult(fmt.Sprintf("offset %d is past end of file (%d lines)", offset, len(lines))), nil
	}

	end := offset - 1 + limit
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	for i := offset - 1; i < end; i++ {
		fmt.Fprintf(&b, "%6d\t%s\n", i+1, lines[i])
	}

	return NewSuccessResultWithData(b.String(), map[string]any{
		"total_lines": len(lines),
		"returned":    end - (offset - 1),
	}), nil
}

// resolvePath makes path absolute, resolving relative paths against workDir.
func resolvePath(workDir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(workDir, path)
}
