package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	// DefaultBashTimeout is the default timeout for bash commands.
	DefaultBashTimeout = 120 * time.Second
	// MaxOutputBytes caps captured output per stream.
	MaxOutputBytes = 64 * 1024
)

// SafeEnvVars is the whitelist of environment variables passed to commands,
// so API keys and other secrets in the agent's environment never leak into
// child processes.
var SafeEnvVars = []string{
	"PATH", "HOME", "USER", "SHELL", "TERM", "LANG", "LC_ALL",
	"TMPDIR", "TMP", "TEMP",
	"GOPATH", "GOROOT", "GOPROXY", "GOFLAGS",
	"NODE_PATH", "PYTHONPATH", "VIRTUAL_ENV",
}

// BashTool executes shell commands in the working directory.
type BashTool struct {
	workDir string
	timeout time.Duration
}

// NewBashTool creates a new BashTool instance.
func NewBashTool(workDir string, timeout time.Duration) *BashTool {
	if timeout <= 0 {
		timeout = DefaultBashTimeout
	}
	return &BashTool{workDir: workDir, timeout: timeout}
}

func (t *BashTool) Name() string {
	return "bash"
}

func (t *BashTool) Description() string {
	return `Executes a shell command in the working directory and returns stdout, stderr, and the exit code. Commands time out after the configured limit.

PARAMETERS:
- command (required): The shell command to run
- timeout_seconds (optional): Per-command timeout override`
}

func (t *BashTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"command": {
					Type:        genai.TypeString,
					Description: "The shell command to execute",
				},
				"timeout_seconds": {
					Type:        genai.TypeInteger,
					Description: "Timeout in seconds for this command",
				},
			},
			Required: []string{"command"},
		},
	}
}

func (t *BashTool) Validate(args map[string]any) error {
	command, ok := GetString(args, "command")
	if !ok || strings.TrimSpace(command) == "" {
		return NewValidationError("command", "is required")
	}
	if secs, ok := GetInt(args, "timeout_seconds"); ok && secs < 1 {
		return NewValidationError("timeout_seconds", "must be >= 1")
	}
	return nil
}

func (t *BashTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	command := GetStringDefault(args, "command", "")

	timeout := t.timeout
	if secs, ok := GetInt(args, "timeout_seconds"); ok {
		timeout = time.Duration(secs) * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-c", command)
	cmd.Dir = t.workDir
	cmd.Env = buildSafeEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else if runCtx.Err() == context.DeadlineExceeded {
			return NewErrorResult(fmt.Sprintf("command timed out after %s", timeout)), nil
		} else {
			return NewErrorResult(fmt.Sprintf("command failed to start: %v", err)), nil
		}
	}

	var b strings.Builder
	if out := truncateOutput(stdout.String()); out != "" {
		b.WriteString(out)
	}
	if errOut := truncateOutput(stderr.String()); errOut != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("stderr:\n")
		b.WriteString(errOut)
	}

	result := NewSuccessResultWithData(b.String(), map[string]any{"exit_code": exitCode})
	if exitCode != 0 {
		result.Success = false
		result.Error = fmt.Sprintf("exit code %d", exitCode)
	}
	return result, nil
}

func buildSafeEnv() []string {
	env := make([]string, 0, len(SafeEnvVars))
	for _, key := range SafeEnvVars {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	return env
}

func truncateOutput(s string) string {
	if len(s) <= MaxOutputBytes {
		return s
	}
	return s[:MaxOutputBytes] + "\n... (output truncated)"
}
