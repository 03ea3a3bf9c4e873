package internal

import "testing"

// TestPresenceCounts verifies joins and leaves produce the post-mutation count
// and never drop below zero.
func TestPresenceCounts(t *testing.T) {
	tracker := NewPresenceTracker()

	if got := tracker.Join("a"); got != 1 {
		t.Errorf("first join: expected 1, got %d", got)
	}
	if got := tracker.Join("a"); got != 2 {
		t.Errorf("second join: expected 2, got %d", got)
	}
	if got := tracker.Leave("a"); got != 1 {
		t.Errorf("first leave: expected 1, got %d", got)
	}
	if got := tracker.Leave("a"); got != 0 {
		t.Errorf("second leave: expected 0, got %d", got)
	}
	// Leaving an empty room must not go negative.
	if got := tracker.Leave("a"); got != 0 {
		t.Errorf("extra leave: expected 0, got %d", got)
	}
}

// TestPresenceRoomsAreIndependent verifies counts do not bleed between rooms.
func TestPresenceRoomsAreIndependent(t *testing.T) {
	tracker := NewPresenceTracker()
	tracker.Join("a")
	tracker.Join("a")
	tracker.Join("b")

	if got := tracker.Count("a"); got != 2 {
		t.Errorf("room a: expected 2, got %d", got)
	}
	if got := tracker.Count("b"); got != 1 {
		t.Errorf("room b: expected 1, got %d", got)
	}
	if got := tracker.ActiveRooms(); got != 2 {
		t.Errorf("expected 2 active rooms, got %d", got)
	}

	tracker.Leave("b")
	if got := tracker.ActiveRooms(); got != 1 {
		t.Errorf("expected 1 active room after b emptied, got %d", got)
	}
}
