package internal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestPingService(t *testing.T) *PingService {
	t.Helper()
	_, store := newTestServer(t, "", 0)
	return NewPingService(store)
}

// TestCreateTextValidation verifies empty and whitespace-only content is
// rejected and valid content is stamped and trimmed.
func TestCreateTextValidation(t *testing.T) {
	svc := newTestPingService(t)
	ctx := context.Background()

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := svc.CreateText(ctx, "room", "alice", content); !errors.Is(err, ErrValidationFailed) {
			t.Errorf("content %q: expected ErrValidationFailed, got %v", content, err)
		}
	}

	before := time.Now()
	ping, err := svc.CreateText(ctx, "room", "alice", "  hello  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ping.ID == "" {
		t.Error("expected a server-assigned id")
	}
	if ping.Content != "hello" {
		t.Errorf("expected trimmed content, got %q", ping.Content)
	}
	if ping.CreatedAt.Before(before.Add(-time.Second)) {
		t.Errorf("expected a fresh server timestamp, got %v", ping.CreatedAt)
	}
}

// TestCreateFileCap verifies the 50 MiB cap holds on the metadata path too.
func TestCreateFileCap(t *testing.T) {
	svc := newTestPingService(t)
	ctx := context.Background()

	if _, err := svc.CreateFile(ctx, "room", "alice", "big.bin", MaxFileSize+1, "loc"); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if _, err := svc.CreateFile(ctx, "room", "alice", "fits.bin", MaxFileSize, "loc"); err != nil {
		t.Fatalf("a file of exactly the cap should be accepted, got %v", err)
	}
	if _, err := svc.CreateFile(ctx, "room", "alice", "", 10, "loc"); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed for missing name, got %v", err)
	}
}

// TestDismissIsIdempotent verifies only the first dismissal reports removal.
func TestDismissIsIdempotent(t *testing.T) {
	svc := newTestPingService(t)
	ctx := context.Background()

	ping, err := svc.CreateText(ctx, "room", "alice", "bye")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	removed, err := svc.Dismiss(ctx, "room", ping.ID)
	if err != nil || !removed {
		t.Fatalf("expected first dismiss to remove, got %v %v", removed, err)
	}
	removed, err = svc.Dismiss(ctx, "room", ping.ID)
	if err != nil || removed {
		t.Fatalf("expected repeat dismiss to be a no-op, got %v %v", removed, err)
	}

	replay, err := svc.Replay(ctx, "room")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(replay) != 0 {
		t.Errorf("dismissed ping should not replay, got %d items", len(replay))
	}
}

// TestDismissScopedToRoom verifies a dismissal from another conversation
// cannot remove the record.
func TestDismissScopedToRoom(t *testing.T) {
	svc := newTestPingService(t)
	ctx := context.Background()

	ping, err := svc.CreateText(ctx, "room", "alice", "stay")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	removed, err := svc.Dismiss(ctx, "elsewhere", ping.ID)
	if err != nil || removed {
		t.Fatalf("expected foreign-room dismiss to be a no-op, got %v %v", removed, err)
	}

	replay, err := svc.Replay(ctx, "room")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(replay) != 1 {
		t.Fatalf("expected the ping to survive, got %d items", len(replay))
	}

	if removed, err := svc.Dismiss(ctx, "room", ping.ID); err != nil || !removed {
		t.Fatalf("expected own-room dismiss to remove, got %v %v", removed, err)
	}
}
