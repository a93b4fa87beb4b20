package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"aircher/internal/agent"
	"aircher/internal/client"
	"aircher/internal/config"
	"aircher/internal/events"
	"aircher/internal/logging"
	"aircher/internal/mode"
	"aircher/internal/permission"
	"aircher/internal/policy"
	"aircher/internal/research"
	"aircher/internal/router"
	"aircher/internal/snapshot"
	"aircher/internal/tools"
	"aircher/internal/watcher"
)

// stdinReader serializes stdin access between the REPL and the approver
// prompt. The REPL blocks in ProcessMessage while the approver reads, so
// the two never contend for the same line.
type stdinReader struct {
	mu sync.Mutex
	r  *bufio.Reader
}

func (s *stdinReader) ReadLine() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, err := s.r.ReadString('\n')
	return strings.TrimSpace(line), err
}

func runApp(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Version = version

	if startMode != "" {
		cfg.Agent.StartMode = startMode
	}
	if approvalMode != "" {
		cfg.Approval.Mode = approvalMode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Logging.Enabled {
		dir := cfg.Logging.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err == nil {
				dir = home + "/.local/state/aircher"
			}
		}
		if dir != "" {
			if err := logging.EnableFileLogging(dir, logging.Level(cfg.Logging.Level)); err != nil {
				fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
			}
			defer logging.Close()
		}
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("cannot determine working directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := client.NewGeminiProvider(ctx, cfg.API.GeminiKey)
	if err != nil {
		return err
	}

	bus := events.NewBus()
	defer bus.Close()

	modes := mode.NewMachine(bus)
	if cfg.Agent.StartMode == "build" {
		modes.Set(mode.ModeBuild, "configured start mode")
	}

	engine := policy.NewEngine(workDir, policy.ApprovalMode(cfg.Approval.Mode))
	perms := permission.NewChannel(4, cfg.Approval.Timeout)
	defer perms.Close()

	snapshots := snapshot.New(workDir, bus)
	modelRouter := buildRouter(cfg)
	if modelOverride != "" {
		modelRouter.ForceModel(modelOverride)
	}

	scheduler := research.NewScheduler(cfg.Research.MaxConcurrent, bus)
	defer scheduler.Shutdown()

	stream := events.NewStream(events.DefaultStreamBuffer)

	registry := tools.NewRegistry()
	registry.MustRegister(tools.NewReadTool(workDir))
	registry.MustRegister(tools.NewWriteTool(workDir))
	registry.MustRegister(tools.NewEditTool(workDir))
	registry.MustRegister(tools.NewDeleteTool(workDir))
	registry.MustRegister(tools.NewBashTool(workDir, cfg.Agent.ToolTimeout))
	registry.MustRegister(tools.NewGlobTool(workDir))
	registry.MustRegister(tools.NewGrepTool(workDir))
	registry.MustRegister(tools.NewListDirTool(workDir))

	controller := agent.NewController(agent.Options{
		Provider:        provider,
		Registry:        registry,
		Engine:          engine,
		Permissions:     perms,
		Modes:           modes,
		Router:          modelRouter,
		Snapshots:       snapshots,
		Bus:             bus,
		Stream:          stream,
		WorkDir:         workDir,
		MaxTurns:        cfg.Agent.MaxTurns,
		MaxOutputTokens: cfg.Agent.MaxOutputTokens,
		Temperature:     cfg.Agent.Temperature,
	})
	registry.MustRegister(tools.NewResearchTool(scheduler, controller.ResearchRunner()))

	w, err := watcher.New(workDir, bus, watcher.Config{
		Enabled:    cfg.Watcher.Enabled,
		DebounceMs: cfg.Watcher.DebounceMs,
		MaxWatches: cfg.Watcher.MaxWatches,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: file watcher disabled: %v\n", err)
	} else if err := w.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: file watcher failed to start: %v\n", err)
	} else {
		defer w.Stop()
	}

	stdin := &stdinReader{r: bufio.NewReader(os.Stdin)}
	go approverLoop(perms, stdin)
	go streamPrinter(stream)

	return repl(ctx, controller, modes, engine, modelRouter, stdin)
}

// buildRouter constructs the model router from config overrides.
func buildRouter(cfg *config.Config) *router.Router {
	r := router.NewDefault()
	if cfg.Router.Default != nil {
		r.SetFallback(*cfg.Router.Default)
	}
	for key, model := range cfg.Router.Models {
		parts := strings.SplitN(key, "/", 2)
		if len(parts) != 2 {
			continue
		}
		var complexity router.TaskComplexity
		switch parts[1] {
		case "low":
			complexity = router.ComplexityLow
		case "medium":
			complexity = router.ComplexityMedium
		case "high":
			complexity = router.ComplexityHigh
		default:
			continue
		}
		r.SetRoute(router.AgentType(parts[0]), complexity, model)
	}
	return r
}

// approverLoop prompts the user for each gated action.
func approverLoop(perms *permission.Channel, stdin *stdinReader) {
	for ask := range perms.Requests() {
		req := ask.Request
		fmt.Printf("\n--- approval required [%s] ---\n%s\n", req.Level, req.Description)
		if req.Diff != "" {
			fmt.Println(req.Diff)
		}
		fmt.Print("approve? [y]es / [a]lways for similar / [n]o: ")

		line, err := stdin.ReadLine()
		if err != nil {
			ask.Respond(permission.Denied)
			continue
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			ask.Respond(permission.Approved)
		case "a", "always":
			ask.Respond(permission.ApprovedSimilar)
		default:
			ask.Respond(permission.Denied)
		}
	}
}

// streamPrinter renders agent updates as they arrive.
func streamPrinter(stream *events.Stream) {
	for update := range stream.Updates() {
		switch update.Kind {
		case events.UpdateToolStatus:
			fmt.Printf("  [tool] %s\n", update.Status)
		case events.UpdateTextChunk:
			fmt.Println(update.Text)
		case events.UpdateComplete:
			fmt.Printf("  (done, %d tokens, %d tool calls)\n", update.TotalTokens, len(update.ToolStatusMessages))
		case events.UpdateError:
			fmt.Printf("  error: %s\n", update.Err)
		}
	}
}

func repl(ctx context.Context, controller *agent.Controller, modes *mode.Machine, engine *policy.Engine, modelRouter *router.Router, stdin *stdinReader) error {
	classifier := mode.NewClassifier()

	fmt.Printf("aircher %s — mode: %s, approval: %s. /help for commands.\n",
		version, modes.Current(), engine.ApprovalMode())

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Printf("[%s]> ", modes.Current())
		line, err := stdin.ReadLine()
		if err != nil {
			return nil
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if done := handleCommand(line, modes, engine, modelRouter); done {
				return nil
			}
			continue
		}

		if recommended, change := classifier.Recommend(modes.Current(), line); change {
			fmt.Printf("  (this looks like %s-mode work; switch with /mode %s)\n", recommended, recommended)
		}

		if _, _, err := controller.ProcessMessage(ctx, line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

// handleCommand processes slash commands; returns true to exit.
func handleCommand(line string, modes *mode.Machine, engine *policy.Engine, modelRouter *router.Router) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/mode":
		if len(fields) < 2 {
			fmt.Printf("mode: %s\n", modes.Current())
			return false
		}
		target := mode.Mode(fields[1])
		if !modes.Set(target, "user command") {
			fmt.Printf("unknown mode %q (plan or build)\n", fields[1])
		}
	case "/approval":
		if len(fields) < 2 {
			fmt.Printf("approval: %s\n", engine.ApprovalMode())
			return false
		}
		if err := engine.SetApprovalMode(policy.ApprovalMode(fields[1])); err != nil {
			fmt.Println(err)
		}
	case "/usage":
		usage := modelRouter.Usage()
		fmt.Printf("requests: %d, input tokens: %d, output tokens: %d, cost: $%.4f\n",
			usage.Requests, usage.InputTokens, usage.OutputTokens, usage.CostUSD)
		for model, mu := range usage.ByModel {
			fmt.Printf("  %s: %d requests, $%.4f\n", model, mu.Requests, mu.CostUSD)
		}
	case "/help":
		fmt.Println("/mode [plan|build]  /approval [review|smart|auto|readonly]  /usage  /quit")
	default:
		fmt.Printf("unknown command %s\n", fields[0])
	}
	return false
}
