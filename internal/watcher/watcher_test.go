package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"aircher/internal/events"
)

func TestDisabledWatcherIsInert(t *testing.T) {
	w, err := New(t.TempDir(), events.NewBus(), Config{Enabled: false})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Errorf("Start on disabled watcher: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop on disabled watcher: %v", err)
	}
}

func TestIgnoredPaths(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, events.NewBus(), Config{Enabled: true})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "main.go"), false},
		{filepath.Join(dir, ".aircher-123.tmp"), true},
		{filepath.Join(dir, ".git", "HEAD"), true},
		{filepath.Join(dir, "node_modules", "x", "y.js"), true},
		{filepath.Join(dir, "src", "app.go"), false},
	}
	for _, tt := range tests {
		if got := w.ignored(tt.path); got != tt.want {
			t.Errorf("ignored(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFlushPublishesDiagnostics(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus()
	listener := bus.Subscribe(8)
	defer listener.Close()

	w, err := New(dir, bus, Config{Enabled: true})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	changed := filepath.Join(dir, "changed.go")
	w.handleEvent(fsnotify.Event{Name: changed, Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, ".aircher-9.tmp"), Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "mode.go"), Op: fsnotify.Chmod})
	w.flush()

	select {
	case ev := <-listener.Events():
		if ev.Kind != events.KindDiagnostic {
			t.Errorf("kind = %q", ev.Kind)
		}
		if ev.Data["path"] != changed {
			t.Errorf("path = %v, want %s", ev.Data["path"], changed)
		}
		if ev.Data["operation"] != "modify" {
			t.Errorf("operation = %v, want modify", ev.Data["operation"])
		}
	default:
		t.Fatal("no diagnostic published")
	}

	// Temp files and chmod noise must not produce events.
	select {
	case ev := <-listener.Events():
		t.Errorf("unexpected extra event: %+v", ev)
	default:
	}
}

func TestWatcherDetectsExternalWrite(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus()
	listener := bus.Subscribe(8)
	defer listener.Close()

	w, err := New(dir, bus, Config{Enabled: true, DebounceMs: 10})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "external.txt"), []byte("edited"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-listener.Events():
			if ev.Kind == events.KindDiagnostic {
				return
			}
		case <-deadline:
			t.Fatal("no diagnostic for external write")
		}
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want string
	}{
		{fsnotify.Create, "create"},
		{fsnotify.Remove, "delete"},
		{fsnotify.Rename, "rename"},
		{fsnotify.Write, "modify"},
		{fsnotify.Create | fsnotify.Write, "create"},
	}
	for _, tt := range tests {
		if got := opString(tt.op); got != tt.want {
			t.Errorf("opString(%v) = %q, want %q", tt.op, got, tt.want)
		}
	}
}
