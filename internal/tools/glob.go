package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"google.golang.org/genai"
)

// MaxGlobResults caps the number of paths returned by a single glob.
const MaxGlobResults = 1000

// GlobTool finds files matching a glob pattern.
type GlobTool struct {
	workDir string
}

// NewGlobTool creates a new GlobTool instance.
func NewGlobTool(workDir string) *GlobTool {
	return &GlobTool{workDir: workDir}
}

func (t *GlobTool) Name() string {
	return "glob"
}

func (t *GlobTool) Description() string {
	return `Finds files matching a glob pattern, sorted by modification time (newest first).

PARAMETERS:
- pattern (required): Glob pattern ("**/*.go", "src/**/*.{ts,tsx}")
- path (optional): Directory to search in (default: working directory)

Directories and anything under .git are excluded. At most 1000 results.`
}

func (t *GlobTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"pattern": {
					Type:        genai.TypeString,
					Description: "The glob pattern to match (e.g., '**/*.go')",
				},
				"path": {
					Type:        genai.TypeString,
					Description: "The directory to search in",
				},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *GlobTool) Validate(args map[string]any) error {
	pattern, ok := GetString(args, "pattern")
	if !ok || pattern == "" {
		return NewValidationError("pattern", "is required")
	}
	if !doublestar.ValidatePattern(pattern) {
		return NewValidationError("pattern", "is not a valid glob pattern")
	}
	return nil
}

func (t *GlobTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	pattern := GetStringDefault(args, "pattern", "")
	root := resolvePath(t.workDir, GetStringDefault(args, "path", "."))

	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("glob failed: %v", err)), nil
	}

	type entry struct {
		path string
		mod  int64
	}
	var entries []entry
	for _, m := range matches {
		if strings.HasPrefix(m, ".git/") || m == ".git" {
			continue
		}
		full := filepath.Join(root, m)
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		entries = append(entries, entry{path: full, mod: info.ModTime().UnixNano()})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].mod > entries[j].mod })
	if len(entries) > MaxGlobResults {
		entries = entries[:MaxGlobResults]
	}

	if len(entries) == 0 {
		return NewSuccessResult("no files matched"), nil
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.path
	}
	return NewSuccessResultWithData(strings.Join(paths, "\n"), map[string]any{"count": len(paths)}), nil
}
