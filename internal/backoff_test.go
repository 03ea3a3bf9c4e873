package internal

import (
	"testing"
	"time"
)

// TestReconnectDelayGrowth verifies the delay starts at the floor, doubles per
// attempt, and never exceeds the ceiling.
func TestReconnectDelayGrowth(t *testing.T) {
	state := NewReconnectState()

	expected := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}
	for i, want := range expected {
		if got := state.Next(); got != want {
			t.Errorf("attempt %d: expected delay %s, got %s", i+1, want, got)
		}
	}
	if state.Attempt() != len(expected) {
		t.Errorf("expected %d attempts recorded, got %d", len(expected), state.Attempt())
	}
}

// TestReconnectReset verifies a successful open snaps the delay back to the
// floor no matter how far it had grown.
func TestReconnectReset(t *testing.T) {
	state := NewReconnectState()
	for i := 0; i < 10; i++ {
		state.Next()
	}

	state.Reset()

	if got := state.Next(); got != ReconnectFloor {
		t.Errorf("expected delay %s after reset, got %s", ReconnectFloor, got)
	}
	if state.Attempt() != 1 {
		t.Errorf("expected attempt count 1 after reset and one retry, got %d", state.Attempt())
	}
}
