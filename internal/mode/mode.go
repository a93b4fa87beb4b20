package mode

import (
	"sync"

	"aircher/internal/events"
	"aircher/internal/logging"
)

// Mode is the session's current phase of engagement with the project.
type Mode string

const (
	// ModePlan is the read-only exploration phase. Nothing above Safe may
	// execute while the session is in Plan.
	ModePlan Mode = "plan"
	// ModeBuild is the mutating implementation phase.
	ModeBuild Mode = "build"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModePlan || m == ModeBuild
}

// Machine tracks the session mode. All transitions go through Set, which
// serializes writers and publishes a ModeChanged event for every committed
// change. Sessions start in Plan.
type Machine struct {
	mu      sync.Mutex
	current Mode
	bus     *events.Bus
}

// NewMachine creates a machine in Plan mode.
func NewMachine(bus *events.Bus) *Machine {
	return &Machine{current: ModePlan, bus: bus}
}

// Current returns the active mode.
func (m *Machine) Current() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Set commits a transition to target and reports whether the mode changed.
// Unknown targets are ignored.
func (m *Machine) Set(target Mode, reason string) bool {
	if !target.Valid() {
		logging.Warn("ignoring transition to unknown mode", "mode", string(target))
		return false
	}

	m.mu.Lock()
	if m.current == target {
		m.mu.Unlock()
		return false
	}
	from := m.current
	m.current = target
	m.mu.Unlock()

	logging.Info("agent mode changed", "from", string(from), "to", string(target), "reason", reason)
	if m.bus != nil {
		m.bus.Publish(events.New(events.KindModeChanged, reason, map[string]any{
			"from": string(from),
			"to":   string(target),
		}))
	}
	return true
}
