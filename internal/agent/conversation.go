package agent

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// MaxHistoryMessages is the maximum number of messages kept in history.
// Older messages fall off the front; the system instruction is passed via
// the API parameter and never lives in history.
const MaxHistoryMessages = 200

// Conversation holds the message history and workspace context for one
// session.
type Conversation struct {
	ID        string
	StartTime time.Time
	WorkDir   string

	mu          sync.RWMutex
	history     []*genai.Content
	activeFiles map[string]struct{}
}

// NewConversation creates a conversation rooted at workDir.
func NewConversation(workDir string) *Conversation {
	return &Conversation{
		ID:          uuid.NewString(),
		StartTime:   time.Now(),
		WorkDir:     workDir,
		activeFiles: make(map[string]struct{}),
	}
}

// AddUserMessage appends a user text message.
func (c *Conversation) AddUserMessage(text string) {
	c.append(genai.NewContentFromText(text, genai.RoleUser))
}

// AddModelReply appends the model's reply parts verbatim, preserving
// function calls for the follow-up request.
func (c *Conversation) AddModelReply(parts []*genai.Part) {
	if len(parts) == 0 {
		return
	}
	c.append(&genai.Content{
		Role:  genai.RoleModel,
		Parts: parts,
	})
}

// AddToolResult appends a function response for a completed tool call.
func (c *Conversation) AddToolResult(call *genai.FunctionCall, response map[string]any) {
	part := genai.NewPartFromFunctionResponse(call.Name, response)
	if part.FunctionResponse != nil {
		part.FunctionResponse.ID = call.ID
	}
	c.append(&genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{part},
	})
}

func (c *Conversation) append(content *genai.Content) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = append(c.history, content)
	if len(c.history) > MaxHistoryMessages {
		c.history = c.history[len(c.history)-MaxHistoryMessages:]
	}
}

// History returns a copy of the message history.
func (c *Conversation) History() []*genai.Content {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*genai.Content, len(c.history))
	copy(out, c.history)
	return out
}

// Len returns the number of messages in history.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.history)
}

// Clear drops the history but keeps the session identity.
func (c *Conversation) Clear() {
	c.mu.Lock()
	c.history = nil
	c.activeFiles = make(map[string]struct{})
	c.mu.Unlock()
}

// TouchFile records that a file was read or modified this session, for the
// system prompt's working-set summary.
func (c *Conversation) TouchFile(path string) {
	if path == "" {
		return
	}
	c.mu.Lock()
	c.activeFiles[path] = struct{}{}
	c.mu.Unlock()
}

// ActiveFiles returns the files touched so far.
func (c *Conversation) ActiveFiles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.activeFiles))
	for p := range c.activeFiles {
		out = append(out, p)
	}
	return out
}

// SystemPrompt builds the system instruction for the next model call.
func (c *Conversation) SystemPrompt(agentMode string) string {
	var b strings.Builder
	b.WriteString("You are a coding agent working inside a user's repository.\n")
	fmt.Fprintf(&b, "Working directory: %s\n", c.WorkDir)
	fmt.Fprintf(&b, "Current mode: %s\n", agentMode)
	if agentMode == "plan" {
		b.WriteString("Plan mode: explore and propose; do not modify files or run mutating commands.\n")
	}
	if files := c.ActiveFiles(); len(files) > 0 {
		b.WriteString("Files touched this session:\n")
		for _, f := range files {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}
	b.WriteString("Use the available tools to inspect the repository before answering. Prefer small, verifiable changes.")
	return b.String()
}
