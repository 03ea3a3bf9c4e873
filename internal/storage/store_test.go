package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore("file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func testPing(id string, createdAt time.Time) *Ping {
	return &Ping{
		ID:        id,
		Room:      "room",
		Sender:    "alice",
		Kind:      "text",
		Content:   "hello",
		CreatedAt: createdAt,
	}
}

// TestPingRoundTrip verifies create, fetch, and delete of a single ping.
func TestPingRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	createdAt := time.UnixMilli(1_700_000_000_000)

	if err := store.CreatePing(ctx, testPing("p1", createdAt)); err != nil {
		t.Fatalf("create: %v", err)
	}

	ping, err := store.GetPing(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ping == nil {
		t.Fatal("expected ping to exist")
	}
	if ping.Content != "hello" || ping.Sender != "alice" {
		t.Errorf("fields lost on round trip: %+v", ping)
	}
	if !ping.CreatedAt.Equal(createdAt) {
		t.Errorf("expected created_at %v, got %v", createdAt, ping.CreatedAt)
	}

	if removed, err := store.DeletePing(ctx, "elsewhere", "p1"); err != nil || removed {
		t.Fatalf("expected delete from another room to be a no-op, got %v %v", removed, err)
	}
	removed, err := store.DeletePing(ctx, "room", "p1")
	if err != nil || !removed {
		t.Fatalf("expected first delete to remove, got %v %v", removed, err)
	}
	removed, err = store.DeletePing(ctx, "room", "p1")
	if err != nil || removed {
		t.Fatalf("expected second delete to be a no-op, got %v %v", removed, err)
	}
	if ping, err := store.GetPing(ctx, "p1"); err != nil || ping != nil {
		t.Fatalf("expected nil after delete, got %v %v", ping, err)
	}
}

// TestDuplicatePingID verifies id conflicts surface as ErrPingExists.
func TestDuplicatePingID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreatePing(ctx, testPing("p1", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreatePing(ctx, testPing("p1", time.Now())); !errors.Is(err, ErrPingExists) {
		t.Fatalf("expected ErrPingExists, got %v", err)
	}
}

// TestListPingsOrder verifies replay order is creation time ascending
// regardless of insert order, scoped to the requested room.
func TestListPingsOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	for _, ping := range []*Ping{
		testPing("p2", base.Add(2*time.Second)),
		testPing("p1", base.Add(1*time.Second)),
		testPing("p3", base.Add(3*time.Second)),
	} {
		if err := store.CreatePing(ctx, ping); err != nil {
			t.Fatalf("create %s: %v", ping.ID, err)
		}
	}
	other := testPing("q1", base)
	other.Room = "elsewhere"
	if err := store.CreatePing(ctx, other); err != nil {
		t.Fatalf("create q1: %v", err)
	}

	pings, err := store.ListPings(ctx, "room")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pings) != 3 {
		t.Fatalf("expected 3 pings, got %d", len(pings))
	}
	for i, want := range []string{"p1", "p2", "p3"} {
		if pings[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, pings[i].ID)
		}
	}
}

// TestFileMetadata verifies the locator row round trip.
func TestFileMetadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := &File{
		Locator:     "abc-notes.txt",
		Room:        "room",
		Name:        "notes.txt",
		SizeBytes:   42,
		SHA256:      "deadbeef",
		StoragePath: "room/abc-notes.txt",
		UploadedBy:  "alice",
		UploadedAt:  time.Now().UTC(),
	}
	if err := store.CreateFile(ctx, record); err != nil {
		t.Fatalf("create: %v", err)
	}

	fetched, err := store.GetFile(ctx, "abc-notes.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected file metadata to exist")
	}
	if fetched.Name != "notes.txt" || fetched.SizeBytes != 42 || fetched.SHA256 != "deadbeef" {
		t.Errorf("fields lost on round trip: %+v", fetched)
	}

	if err := store.DeleteFile(ctx, "abc-notes.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if fetched, err := store.GetFile(ctx, "abc-notes.txt"); err != nil || fetched != nil {
		t.Fatalf("expected nil after delete, got %v %v", fetched, err)
	}
}
