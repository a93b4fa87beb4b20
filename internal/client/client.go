package client

import (
	"context"

	"google.golang.org/genai"
)

// ChatRequest is a single model invocation: the full conversation so far
// plus the tool declarations and generation parameters for this call.
type ChatRequest struct {
	Model           string
	Messages        []*genai.Content
	Tools           []*genai.Tool
	System          string
	Temperature     float32
	MaxOutputTokens int32
}

// ChatResponse is the model's reply, decomposed into the pieces the agent
// loop consumes.
type ChatResponse struct {
	// Text is the concatenated text parts of the reply.
	Text string
	// ToolCalls are the function calls the model requested, in order.
	ToolCalls []*genai.FunctionCall
	// Parts is the raw reply content, preserved for conversation history.
	Parts []*genai.Part

	InputTokens  int
	OutputTokens int
}

// TotalTokens returns the combined prompt and completion token count.
func (r *ChatResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// Provider is a model backend. Implementations must be safe for concurrent
// use; the research scheduler calls Chat from multiple goroutines.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// Ptr returns a pointer to v, for the genai config fields that take
// optional scalars.
func Ptr[T any](v T) *T {
	return &v
}
