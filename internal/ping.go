package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/johannaefageras/ping/internal/storage"
)

// Ping is the transient unit of content the whole system moves around. The
// storage row is the authoritative shape; the rest of the server passes it by
// reference.
type Ping = storage.Ping

const (
	KindText = "text"
	KindFile = "file"
)

// MaxFileSize caps file ping payloads at 50 MiB.
const MaxFileSize = 50 << 20

// PingService validates, stamps, and persists pings. Identity and timestamp
// are assigned here with the server clock, which makes created_at the
// authoritative ordering key for a conversation.
type PingService struct {
	store *storage.Store
	now   func() time.Time
}

func NewPingService(store *storage.Store) *PingService {
	return &PingService{store: store, now: time.Now}
}

// CreateText builds and persists a text ping. Empty input after trimming is
// rejected with ErrValidationFailed; callers absorb that as a no-op.
func (svc *PingService) CreateText(ctx context.Context, room, sender, content string) (*Ping, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty text ping: %w", ErrValidationFailed)
	}
	ping := &Ping{
		ID:        uuid.NewString(),
		Room:      room,
		Sender:    sender,
		Kind:      KindText,
		Content:   content,
		CreatedAt: svc.now(),
	}
	if err := svc.store.CreatePing(ctx, ping); err != nil {
		return nil, fmt.Errorf("persist text ping: %w", err)
	}
	return ping, nil
}

// CreateFile builds and persists a file ping for an already completed upload.
// The size cap is enforced again here so a ping can never reference an
// oversized payload regardless of which path created it.
func (svc *PingService) CreateFile(ctx context.Context, room, sender, filename string, size int64, locator string) (*Ping, error) {
	if size > MaxFileSize {
		return nil, fmt.Errorf("file ping of %d bytes: %w", size, ErrPayloadTooLarge)
	}
	if strings.TrimSpace(filename) == "" || strings.TrimSpace(locator) == "" {
		return nil, fmt.Errorf("file ping missing name or locator: %w", ErrValidationFailed)
	}
	ping := &Ping{
		ID:          uuid.NewString(),
		Room:        room,
		Sender:      sender,
		Kind:        KindFile,
		FileName:    filename,
		FileSize:    size,
		FileLocator: locator,
		CreatedAt:   svc.now(),
	}
	if err := svc.store.CreatePing(ctx, ping); err != nil {
		return nil, fmt.Errorf("persist file ping: %w", err)
	}
	return ping, nil
}

// Dismiss deletes the authoritative record, scoped to the room the trigger
// came from so an id can only be removed by its own conversation. Every
// removal trigger (timer, button, download) routes through here, and
// dismissing an already removed id is a no-op, so removal is at-most-once no
// matter how many triggers fire.
func (svc *PingService) Dismiss(ctx context.Context, room, id string) (bool, error) {
	return svc.store.DeletePing(ctx, room, id)
}

// Replay lists the live pings of a room in created_at order for delivery to a
// freshly joined connection.
func (svc *PingService) Replay(ctx context.Context, room string) ([]Ping, error) {
	return svc.store.ListPings(ctx, room)
}
