package agent

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"aircher/internal/client"
	"aircher/internal/events"
	"aircher/internal/logging"
	"aircher/internal/mode"
	"aircher/internal/permission"
	"aircher/internal/policy"
	"aircher/internal/router"
	"aircher/internal/snapshot"
	"aircher/internal/tools"
)

// DefaultMaxTurns bounds the tool-call iterations within one user message.
const DefaultMaxTurns = 25

// Controller runs the conversation loop: send the history to the model,
// execute the tool calls it requests under the safety policy, feed the
// results back, and repeat until the model answers in plain text.
type Controller struct {
	provider  client.Provider
	registry  *tools.Registry
	engine    *policy.Engine
	perms     *permission.Channel
	modes     *mode.Machine
	router    *router.Router
	snapshots snapshot.Snapshotter
	bus       *events.Bus
	stream    *events.Stream
	conv      *Conversation

	maxTurns        int
	maxOutputTokens int32
	temperature     float32
}

// Options configures a Controller.
type Options struct {
	Provider    client.Provider
	Registry    *tools.Registry
	Engine      *policy.Engine
	Permissions *permission.Channel
	Modes       *mode.Machine
	Router      *router.Router
	Snapshots   snapshot.Snapshotter
	Bus         *events.Bus
	Stream      *events.Stream
	WorkDir     string

	MaxTurns        int
	MaxOutputTokens int32
	Temperature     float32
}

// NewController wires the conversation loop together.
func NewController(opts Options) *Controller {
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Controller{
		provider:        opts.Provider,
		registry:        opts.Registry,
		engine:          opts.Engine,
		perms:           opts.Permissions,
		modes:           opts.Modes,
		router:          opts.Router,
		snapshots:       opts.Snapshots,
		bus:             opts.Bus,
		stream:          opts.Stream,
		conv:            NewConversation(opts.WorkDir),
		maxTurns:        maxTurns,
		maxOutputTokens: opts.MaxOutputTokens,
		temperature:     opts.Temperature,
	}
}

// Conversation returns the controller's conversation state.
func (c *Controller) Conversation() *Conversation {
	return c.conv
}

// ProcessMessage runs one full conversation turn. It returns the model's
// final text answer and the tool status log accumulated along the way. The
// same log is delivered incrementally on the stream as ToolStatus updates
// and repeated in the Complete update.
func (c *Controller) ProcessMessage(ctx context.Context, text string) (string, []string, error) {
	c.conv.AddUserMessage(text)

	complexity := router.EstimateComplexity(text)
	modelCfg := c.router.Select(router.AgentOrchestrator, complexity)
	logging.Info("processing message",
		"complexity", complexity.String(),
		"model", modelCfg.Model)

	var statusLog []string
	totalTokens := 0

	for turn := 0; turn < c.maxTurns; turn++ {
		req := &client.ChatRequest{
			Model:           modelCfg.Model,
			Messages:        c.conv.History(),
			Tools:           c.registry.GeminiTools(),
			System:          c.conv.SystemPrompt(string(c.modes.Current())),
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxOutputTokens,
		}

		resp, err := c.provider.Chat(ctx, req)
		if err != nil {
			perr := &ProviderError{Provider: c.provider.Name(), Err: err}
			c.stream.Error(perr)
			return "", statusLog, perr
		}

		totalTokens += resp.TotalTokens()
		c.router.RecordUsage(modelCfg, resp.InputTokens, resp.OutputTokens)
		c.conv.AddModelReply(resp.Parts)

		if resp.Text != "" {
			c.stream.TextChunk(resp.Text)
		}

		if len(resp.ToolCalls) == 0 {
			c.stream.Complete(totalTokens, statusLog)
			return resp.Text, statusLog, nil
		}

		for _, call := range resp.ToolCalls {
			status := c.handleToolCall(ctx, call)
			statusLog = append(statusLog, status)
			c.stream.ToolStatus(status)

			// Cancellation mid-loop aborts the turn; the partial results
			// stay in history for a retry.
			if ctx.Err() != nil {
				terr := &ToolExecutionError{Tool: call.Name, Err: ctx.Err()}
				c.stream.Error(terr)
				return "", statusLog, terr
			}
		}
	}

	err := &OrchestrationTimeout{MaxTurns: c.maxTurns}
	c.stream.Error(err)
	return "", statusLog, err
}

// handleToolCall runs one requested tool call through the safety pipeline:
// classify, decide, ask if required, snapshot if mutating, execute. Blocked
// and failed calls are fed back to the model as error results rather than
// aborting the turn.
func (c *Controller) handleToolCall(ctx context.Context, call *genai.FunctionCall) string {
	args := call.Args
	if args == nil {
		args = map[string]any{}
	}

	pending := c.engine.Classify(call.Name, args)
	decision := policy.Decide(pending.Level, c.engine.ApprovalMode(), c.modes.Current())

	switch decision {
	case policy.DecisionReject:
		return c.rejectToolCall(call, pending)

	case policy.DecisionRequireApproval:
		if !c.engine.IsRemembered(pending) {
			resp, err := c.perms.Ask(ctx, permission.NewRequest(pending, args))
			if err != nil || !resp.Allowed() {
				return c.denyToolCall(call, pending)
			}
			if resp == permission.ApprovedSimilar {
				c.engine.RememberSimilar(pending)
			}
		}
	}

	// Every Caution or Dangerous mutation gets a snapshot first; a command
	// has no path list, so the snapshotter captures the whole tree. No
	// snapshot, no mutation.
	if pending.Mutating() && pending.Level >= policy.SafetyCaution && c.snapshots != nil {
		if _, err := c.snapshots.Snapshot(pending.Description, pending.Paths()); err != nil {
			sferr := &SnapshotFailure{Tool: call.Name, Err: err}
			logging.Error("refusing change without snapshot", "tool", call.Name, "error", err)
			c.conv.AddToolResult(call, tools.NewErrorResult(sferr.Error()).ToMap())
			return fmt.Sprintf("%s: blocked (%v)", call.Name, sferr)
		}
	}

	result, elapsed, err := c.registry.Dispatch(ctx, call.Name, args)
	if err != nil {
		// Unknown tool; the error result tells the model what happened.
		c.conv.AddToolResult(call, result.ToMap())
		return fmt.Sprintf("%s: failed (%v)", call.Name, err)
	}

	c.conv.AddToolResult(call, result.ToMap())
	if path, ok := tools.GetString(args, "file_path"); ok {
		c.conv.TouchFile(path)
	}

	if c.bus != nil {
		c.bus.Publish(events.New(events.KindToolExecuted, pending.Description, map[string]any{
			"tool":     call.Name,
			"success":  result.Success,
			"duration": elapsed.String(),
			"level":    pending.Level.String(),
		}))
	}

	if result.Success {
		return fmt.Sprintf("%s: ok (%s)", call.Name, elapsed.Round(time.Millisecond))
	}
	return fmt.Sprintf("%s: failed (%s)", call.Name, result.Error)
}

func (c *Controller) rejectToolCall(call *genai.FunctionCall, pending *policy.PendingChange) string {
	var reason error
	if c.modes.Current() == mode.ModePlan && pending.Level > policy.SafetySafe {
		reason = &PlanModeViolation{Tool: call.Name, Description: pending.Description}
	} else {
		reason = &PermissionDenied{Tool: call.Name, Description: pending.Description}
	}
	logging.Info("tool call rejected", "tool", call.Name, "reason", reason)
	c.conv.AddToolResult(call, tools.NewErrorResult(reason.Error()).ToMap())
	return fmt.Sprintf("%s: blocked (%v)", call.Name, reason)
}

func (c *Controller) denyToolCall(call *genai.FunctionCall, pending *policy.PendingChange) string {
	derr := &PermissionDenied{Tool: call.Name, Description: pending.Description}
	logging.Info("tool call denied", "tool", call.Name)
	c.conv.AddToolResult(call, tools.NewErrorResult(derr.Error()).ToMap())
	return fmt.Sprintf("%s: denied", call.Name)
}
