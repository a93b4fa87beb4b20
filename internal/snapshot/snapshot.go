package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"aircher/internal/events"
	"aircher/internal/fileutil"
	"aircher/internal/logging"
)

// DefaultMaxSnapshots bounds how many snapshots are retained before the
// oldest are dropped.
const DefaultMaxSnapshots = 50

// MaxTreeFiles bounds a whole-tree capture; files beyond the cap are skipped.
const MaxTreeFiles = 2000

// maxTreeFileSize keeps large binaries out of whole-tree captures.
const maxTreeFileSize = 1 << 20

// Snapshotter captures restorable file state before a mutating action.
type Snapshotter interface {
	// Snapshot records the current content of the given paths and returns a
	// snapshot ID that can be passed to Restore.
	Snapshot(reason string, paths []string) (string, error)
}

// fileRecord is the captured state of a single file.
type fileRecord struct {
	content []byte
	mode    os.FileMode
	existed bool
}

// record is one snapshot: the pre-change state of every touched file.
type record struct {
	id     string
	reason string
	taken  time.Time
	files  map[string]fileRecord
}

// Info is the externally visible summary of a snapshot.
type Info struct {
	ID     string
	Reason string
	Taken  time.Time
	Files  []string
}

// FileSnapshotter keeps in-memory copies of files about to be changed, so a
// bad change can be rolled back without git involvement. Retention is
// bounded; the oldest snapshots fall off first.
type FileSnapshotter struct {
	workDir string
	bus     *events.Bus

	mu      sync.Mutex
	history []*record
	max     int
}

// New creates a snapshotter rooted at workDir. Events for taken snapshots
// are published to bus when it is non-nil.
func New(workDir string, bus *events.Bus) *FileSnapshotter {
	return &FileSnapshotter{
		workDir: workDir,
		bus:     bus,
		max:     DefaultMaxSnapshots,
	}
}

// Snapshot captures the current content of paths. Relative paths resolve
// against the workspace root. A path that does not exist yet is recorded as
// absent, so restoring removes the file a change created. An empty path list
// means the change's reach is unknown (a shell command), so the whole
// workspace tree is captured instead.
func (s *FileSnapshotter) Snapshot(reason string, paths []string) (string, error) {
	if len(paths) == 0 {
		tree, err := s.treePaths()
		if err != nil {
			return "", fmt.Errorf("walk workspace: %w", err)
		}
		paths = tree
	}

	rec := &record{
		id:     uuid.NewString(),
		reason: reason,
		taken:  time.Now(),
		files:  make(map[string]fileRecord, len(paths)),
	}

	for _, p := range paths {
		abs := s.resolve(p)
		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				rec.files[abs] = fileRecord{existed: false}
				continue
			}
			return "", fmt.Errorf("stat %s: %w", abs, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("cannot snapshot directory %s", abs)
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", abs, err)
		}
		rec.files[abs] = fileRecord{
			content: data,
			mode:    info.Mode().Perm(),
			existed: true,
		}
	}

	s.mu.Lock()
	s.history = append(s.history, rec)
	if len(s.history) > s.max {
		s.history = s.history[len(s.history)-s.max:]
	}
	s.mu.Unlock()

	logging.Debug("snapshot taken",
		"id", rec.id,
		"reason", reason,
		"files", len(rec.files))

	if s.bus != nil {
		s.bus.Publish(events.New(events.KindSnapshotTaken, reason, map[string]any{
			"snapshot_id": rec.id,
			"files":       len(rec.files),
		}))
	}

	return rec.id, nil
}

// Restore puts every file in the snapshot back to its captured state. Files
// that did not exist at snapshot time are removed.
func (s *FileSnapshotter) Restore(id string) error {
	s.mu.Lock()
	var rec *record
	for _, r := range s.history {
		if r.id == id {
			rec = r
			break
		}
	}
	s.mu.Unlock()

	if rec == nil {
		return fmt.Errorf("snapshot %s not found", id)
	}

	for path, fr := range rec.files {
		if !fr.existed {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove %s: %w", path, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("mkdir for %s: %w", path, err)
		}
		if err := fileutil.AtomicWrite(path, fr.content, fr.mode); err != nil {
			return fmt.Errorf("restore %s: %w", path, err)
		}
	}

	logging.Info("snapshot restored", "id", id, "files", len(rec.files))
	return nil
}

// List returns summaries of retained snapshots, oldest first.
func (s *FileSnapshotter) List() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Info, 0, len(s.history))
	for _, r := range s.history {
		files := make([]string, 0, len(r.files))
		for p := range r.files {
			files = append(files, p)
		}
		out = append(out, Info{
			ID:     r.id,
			Reason: r.reason,
			Taken:  r.taken,
			Files:  files,
		})
	}
	return out
}

// Latest returns the most recent snapshot ID, or "" when none exist.
func (s *FileSnapshotter) Latest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return ""
	}
	return s.history[len(s.history)-1].id
}

// Clear drops all retained snapshots.
func (s *FileSnapshotter) Clear() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

var skippedDirs = map[string]struct{}{
	".git": {}, "node_modules": {}, "vendor": {},
}

// treePaths lists the workspace files worth capturing, bounded by
// MaxTreeFiles and maxTreeFileSize.
func (s *FileSnapshotter) treePaths() ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.workDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if _, skip := skippedDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if len(out) >= MaxTreeFiles {
			return filepath.SkipAll
		}
		info, err := d.Info()
		if err != nil || !info.Mode().IsRegular() || info.Size() > maxTreeFileSize {
			return nil
		}
		out = append(out, path)
		return nil
	})
	return out, err
}

func (s *FileSnapshotter) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.workDir, path)
}
