package mode

import (
	"testing"
	"time"

	"aircher/internal/events"
)

func TestMachineStartsInPlan(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != ModePlan {
		t.Errorf("initial mode = %s, want plan", m.Current())
	}
}

func TestMachineSet(t *testing.T) {
	m := NewMachine(nil)

	if !m.Set(ModeBuild, "test") {
		t.Error("transition to build should report a change")
	}
	if m.Current() != ModeBuild {
		t.Errorf("mode = %s, want build", m.Current())
	}

	if m.Set(ModeBuild, "test") {
		t.Error("setting the current mode again should report no change")
	}

	if m.Set(Mode("yolo"), "test") {
		t.Error("unknown mode must be ignored")
	}
	if m.Current() != ModeBuild {
		t.Errorf("mode after invalid set = %s, want build", m.Current())
	}
}

func TestMachinePublishesModeChanged(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()
	listener := bus.Subscribe(4)

	m := NewMachine(bus)
	m.Set(ModeBuild, "user asked")

	select {
	case ev := <-listener.Events():
		if ev.Kind != events.KindModeChanged {
			t.Errorf("event kind = %s, want mode_changed", ev.Kind)
		}
		if ev.Data["from"] != "plan" || ev.Data["to"] != "build" {
			t.Errorf("event data = %v", ev.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("no mode_changed event published")
	}
}

func TestClassifierRecommend(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		current Mode
		message string
		want    Mode
		change  bool
	}{
		{ModePlan, "implement the login handler and fix the tests", ModeBuild, true},
		{ModeBuild, "explain how the session store works", ModePlan, true},
		{ModePlan, "how does the cache work?", ModePlan, false},
		{ModeBuild, "fix the bug in parser.go", ModeBuild, false},
		{ModePlan, "hello", ModePlan, false},
	}

	for _, tt := range tests {
		got, change := c.Recommend(tt.current, tt.message)
		if got != tt.want || change != tt.change {
			t.Errorf("Recommend(%s, %q) = (%s, %v), want (%s, %v)",
				tt.current, tt.message, got, change, tt.want, tt.change)
		}
	}
}
