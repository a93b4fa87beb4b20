package events

import (
	"errors"
	"testing"
)

func TestStreamOrderingWithinTurn(t *testing.T) {
	s := NewStream(16)

	s.TextChunk("thinking")
	s.ToolStatus("read: ok")
	s.ToolStatus("write: ok")
	s.Complete(1234, []string{"read: ok", "write: ok"})

	wantKinds := []UpdateKind{UpdateTextChunk, UpdateToolStatus, UpdateToolStatus, UpdateComplete}
	for i, want := range wantKinds {
		u := <-s.Updates()
		if u.Kind != want {
			t.Fatalf("update %d kind = %d, want %d", i, u.Kind, want)
		}
	}
}

func TestStreamCompleteCarriesSummary(t *testing.T) {
	s := NewStream(4)

	log := []string{"bash: ok"}
	s.Complete(99, log)

	// Mutating the caller's slice after sending must not affect the update.
	log[0] = "mutated"

	u := <-s.Updates()
	if u.TotalTokens != 99 {
		t.Errorf("total tokens = %d, want 99", u.TotalTokens)
	}
	if len(u.ToolStatusMessages) != 1 || u.ToolStatusMessages[0] != "bash: ok" {
		t.Errorf("tool status messages = %v", u.ToolStatusMessages)
	}
}

func TestStreamError(t *testing.T) {
	s := NewStream(4)
	s.Error(errors.New("model unavailable"))

	u := <-s.Updates()
	if u.Kind != UpdateError {
		t.Errorf("kind = %d, want error", u.Kind)
	}
	if u.Err != "model unavailable" {
		t.Errorf("err = %q", u.Err)
	}
}
