package tools

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

const (
	// MaxGrepMatches caps the number of matching lines returned.
	MaxGrepMatches = 500
	// maxGrepLineBytes skips pathologically long lines (likely minified or binary).
	maxGrepLineBytes = 4096
)

// GrepTool searches file contents with a regular expression.
type GrepTool struct {
	workDir string
}

// NewGrepTool creates a new GrepTool instance.
func NewGrepTool(workDir string) *GrepTool {
	return &GrepTool{workDir: workDir}
}

func (t *GrepTool) Name() string {
	return "grep"
}

func (t *GrepTool) Description() string {
	return `Searches file contents for a regular expression and returns matching lines as path:line:text.

PARAMETERS:
- pattern (required): Go regular expression
- path (optional): Directory or file to search (default: working directory)
- include (optional): Glob filter on file names (e.g., "*.go")

Binary files and .git are skipped. At most 500 matches.`
}

func (t *GrepTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"pattern": {
					Type:        genai.TypeString,
					Description: "The regular expression to search for",
				},
				"path": {
					Type:        genai.TypeString,
					Description: "The directory or file to search",
				},
				"include": {
					Type:        genai.TypeString,
					Description: "Glob filter on file names (e.g., '*.go')",
				},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *GrepTool) Validate(args map[string]any) error {
	pattern, ok := GetString(args, "pattern")
	if !ok || pattern == "" {
		return NewValidationError("pattern", "is required")
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return NewValidationError("pattern", fmt.Sprintf("invalid regexp: %v", err))
	}
	return nil
}

func (t *GrepTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	re := regexp.MustCompile(GetStringDefault(args, "pattern", ""))
	root := resolvePath(t.workDir, GetStringDefault(args, "path", "."))
	include := GetStringDefault(args, "include", "")

	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if include != "" {
			if ok, _ := filepath.Match(include, d.Name()); !ok {
				return nil
			}
		}
		if len(matches) >= MaxGrepMatches {
			return filepath.SkipAll
		}
		t.grepFile(path, re, &matches)
		return nil
	})
	if err != nil && err != ctx.Err() {
		return NewErrorResult(fmt.Sprintf("search failed: %v", err)), nil
	}
	if ctx.Err() != nil {
		return NewErrorResult("search cancelled"), nil
	}

	if len(matches) == 0 {
		return NewSuccessResult("no matches"), nil
	}
	return NewSuccessResultWithData(strings.Join(matches, "\n"), map[string]any{"count": len(matches)}), nil
}

func (t *GrepTool) grepFile(path string, re *regexp.Regexp, matches *[]string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxGrepLineBytes)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.ContainsRune(line, '\x00') {
			return
		}
		if re.MatchString(line) {
			*matches = append(*matches, fmt.Sprintf("%s:%d:%s", path, lineNum, line))
			if len(*matches) >= MaxGrepMatches {
				return
			}
		}
	}
}
