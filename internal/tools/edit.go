package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"aircher/internal/fileutil"
)

// EditTool replaces an exact string in an existing file.
type EditTool struct {
	workDir string
}

// NewEditTool creates a new EditTool instance.
func NewEditTool(workDir string) *EditTool {
	return &EditTool{workDir: workDir}
}

func (t *EditTool) Name() string {
	return "edit"
}

func (t *EditTool) Description() string {
	return `Performs an exact string replacement in a file. old_string must appear exactly once unless replace_all is set.

PARAMETERS:
- file_path (required): Path to the file
- old_string (required): Exact text to replace
- new_string (required): Replacement text
- replace_all (optional): Replace every occurrence (default: false)`
}

func (t *EditTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"file_path": {
					Type:        genai.TypeString,
					Description: "The path of the file to edit",
				},
				"old_string": {
					Type:        genai.TypeString,
					Description: "The exact text to replace",
				},
				"new_string": {
					Type:        genai.TypeString,
					Description: "The replacement text",
				},
				"replace_all": {
					Type:        genai.TypeBoolean,
					Description: "Replace all occurrences instead of exactly one",
				},
			},
			Required: []string{"file_path", "old_string", "new_string"},
		},
	}
}

func (t *EditTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "file_path")
	if !ok || path == "" {
		return NewValidationError("file_path", "is required")
	}
	oldString, ok := GetString(args, "old_string")
	if !ok || oldString == "" {
		return NewValidationError("old_string", "is required")
	}
	newString, ok := GetString(args, "new_string")
	if !ok {
		return NewValidationError("new_string", "is required")
	}
	if oldString == newString {
		return NewValidationError("new_string", "must differ from old_string")
	}
	return nil
}

func (t *EditTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path := resolvePath(t.workDir, GetStringDefault(args, "file_path", ""))
	oldString := GetStringDefault(args, "old_string", "")
	newString := GetStringDefault(args, "new_string", "")
	replaceAll := GetBoolDefault(args, "replace_all", false)

	data, err := os.ReadFile(path)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot read %s: %v", path, err)), nil
	}
	content := string(data)

	count := strings.Count(content, oldString)
	if count == 0 {
		return NewErrorResult(fmt.Sprintf("old_string not found in %s", path)), nil
	}
	if count > 1 && !replaceAll {
		return NewErrorResult(fmt.Sprintf("old_string appears %d times in %s; make it unique or set replace_all", count, path)), nil
	}

	var updated string
	replaced := 1
	if replaceAll {
		updated = strings.ReplaceAll(content, oldString, newString)
		replaced = count
	} else {
		updated = strings.Replace(content, oldString, newString, 1)
	}

	if err := fileutil.AtomicWriteString(path, updated, 0644); err != nil {
		return NewErrorResult(fmt.Sprintf("cannot write %s: %v", path, err)), nil
	}

	return NewSuccessResult(fmt.Sprintf("replaced %d occurrence(s) in %s", replaced, path)), nil
}
