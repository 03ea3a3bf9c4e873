package internal

import (
	"testing"
	"time"
)

// TestParseFrameMalformed verifies garbage payloads error without panicking,
// so the read loop can log and keep going.
func TestParseFrameMalformed(t *testing.T) {
	for _, payload := range []string{"not json", "{", `{"count":1}`, ""} {
		if _, err := ParseFrame([]byte(payload)); err == nil {
			t.Errorf("expected error for payload %q", payload)
		}
	}
}

// TestParseFrameUnknownType verifies unrecognized types decode fine but are
// reported as unknown, the skip-don't-kill contract.
func TestParseFrameUnknownType(t *testing.T) {
	frame, err := ParseFrame([]byte(`{"type":"typing-indicator","sender":"a"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if KnownFrameType(frame.Type) {
		t.Errorf("expected %q to be unknown", frame.Type)
	}
}

// TestPingFrameSelfVariants verifies the router's two encodings of the same
// ping differ only in the self flag.
func TestPingFrameSelfVariants(t *testing.T) {
	ping := &Ping{
		ID:        "p1",
		Room:      "r",
		Sender:    "alice",
		Kind:      KindText,
		Content:   "hello",
		CreatedAt: time.UnixMilli(1_700_000_000_000),
	}

	echo := PingFrame(ping, true)
	other := PingFrame(ping, false)

	if !echo.Self {
		t.Error("echo variant should carry self=true")
	}
	if other.Self {
		t.Error("other variant should carry self=false")
	}
	if echo.ID != other.ID || echo.Content != other.Content || echo.Timestamp != other.Timestamp {
		t.Error("variants should agree on everything but self")
	}
	if echo.Timestamp != 1_700_000_000_000 {
		t.Errorf("expected millisecond timestamp, got %d", echo.Timestamp)
	}
}

// TestPingFrameFileFields verifies file pings carry metadata, not content.
func TestPingFrameFileFields(t *testing.T) {
	ping := &Ping{
		ID:          "f1",
		Room:        "r",
		Sender:      "alice",
		Kind:        KindFile,
		FileName:    "notes.pdf",
		FileSize:    2048,
		FileLocator: "abc-notes.pdf",
		CreatedAt:   time.Now(),
	}

	frame := PingFrame(ping, false)
	if frame.Type != FrameTypeFile {
		t.Errorf("expected type %q, got %q", FrameTypeFile, frame.Type)
	}
	if frame.Filename != "notes.pdf" || frame.StoredName != "abc-notes.pdf" || frame.Size != 2048 {
		t.Errorf("file metadata not carried: %+v", frame)
	}
	if frame.Content != "" {
		t.Error("file frames should not carry text content")
	}
}
