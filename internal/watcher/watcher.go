package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"aircher/internal/events"
	"aircher/internal/logging"
)

// Config controls the workspace watcher.
type Config struct {
	Enabled    bool
	DebounceMs int
	MaxWatches int
}

// Watcher monitors the workspace for external file changes and publishes
// them as diagnostic events, so the agent notices edits made outside its own
// tool calls.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	workDir    string
	bus        *events.Bus
	debounce   time.Duration
	maxWatches int

	mu       sync.Mutex
	pending  map[string]fsnotify.Op
	running  bool
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher for workDir. A disabled config yields an inert
// watcher whose Start and Stop are no-ops.
func New(workDir string, bus *events.Bus, cfg Config) (*Watcher, error) {
	if !cfg.Enabled {
		return &Watcher{}, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounceMs := cfg.DebounceMs
	if debounceMs <= 0 {
		debounceMs = 500
	}
	maxWatches := cfg.MaxWatches
	if maxWatches <= 0 {
		maxWatches = 1000
	}

	return &Watcher{
		fsWatcher:  fsw,
		workDir:    workDir,
		bus:        bus,
		debounce:   time.Duration(debounceMs) * time.Millisecond,
		maxWatches: maxWatches,
		pending:    make(map[string]fsnotify.Op),
		done:       make(chan struct{}),
	}, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start() error {
	if w.fsWatcher == nil {
		return nil
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addDirectories(); err != nil {
		return err
	}

	go w.processEvents()
	go w.flushLoop()
	return nil
}

// Stop stops watching. Safe to call more than once.
func (w *Watcher) Stop() error {
	if w.fsWatcher == nil {
		return nil
	}

	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	w.stopOnce.Do(func() {
		close(w.done)
	})
	return w.fsWatcher.Close()
}

var skippedDirs = map[string]struct{}{
	".git": {}, "node_modules": {}, "vendor": {}, ".idea": {},
	".vscode": {}, "__pycache__": {}, "target": {}, "build": {}, "dist": {},
}

func (w *Watcher) addDirectories() error {
	watchCount := 0
	return filepath.Walk(w.workDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if watchCount >= w.maxWatches {
			return filepath.SkipDir
		}
		if !info.IsDir() {
			return nil
		}
		if _, skip := skippedDirs[info.Name()]; skip {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return nil
		}
		watchCount++
		return nil
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logging.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.ignored(event.Name) {
		return
	}
	// Chmod-only events are noise.
	if event.Op == fsnotify.Chmod {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] |= event.Op
	w.mu.Unlock()

	// Watch newly created directories.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if _, skip := skippedDirs[filepath.Base(event.Name)]; !skip {
				_ = w.fsWatcher.Add(event.Name)
			}
		}
	}
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".aircher-") && strings.HasSuffix(base, ".tmp") {
		return true
	}
	rel, err := filepath.Rel(w.workDir, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if _, skip := skippedDirs[part]; skip {
			return true
		}
	}
	return false
}

// flushLoop publishes debounced changes as diagnostic events.
func (w *Watcher) flushLoop() {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.mu.Unlock()

	for path, op := range batch {
		w.bus.Publish(events.New(events.KindDiagnostic,
			"file changed outside agent: "+path,
			map[string]any{
				"path":      path,
				"operation": opString(op),
			}))
	}
}

func opString(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Remove):
		return "delete"
	case op.Has(fsnotify.Rename):
		return "rename"
	case op.Has(fsnotify.Write):
		return "modify"
	default:
		return "unknown"
	}
}
