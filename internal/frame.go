package internal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Frame is the json envelope both sides exchange over the websocket. The Type
// discriminator decides which fields are meaningful; everything else is left
// at its zero value.
type Frame struct {
	Type string `json:"type"`

	// presence
	Count int `json:"count,omitempty"`

	// text and file pings
	ID        string `json:"id,omitempty"`
	Room      string `json:"room,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Content   string `json:"content,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Self      bool   `json:"self,omitempty"`

	// file pings only
	Filename   string `json:"filename,omitempty"`
	StoredName string `json:"stored_name,omitempty"`
	Size       int64  `json:"size,omitempty"`
}

const (
	FrameTypePresence = "presence"
	FrameTypeText     = "text"
	FrameTypeFile     = "file"
	FrameTypeDismiss  = "dismiss"
)

// ParseFrame decodes an inbound payload. Frames with an unknown type are not
// an error for the connection; callers skip them and keep reading.
func ParseFrame(payload []byte) (Frame, error) {
	var frame Frame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return Frame{}, fmt.Errorf("malformed frame: %w", err)
	}
	if strings.TrimSpace(frame.Type) == "" {
		return Frame{}, fmt.Errorf("frame missing type: %w", ErrValidationFailed)
	}
	return frame, nil
}

// KnownFrameType reports whether the receive loop understands this type.
// Unknown types are ignored, not fatal.
func KnownFrameType(t string) bool {
	switch t {
	case FrameTypePresence, FrameTypeText, FrameTypeFile, FrameTypeDismiss:
		return true
	}
	return false
}

// PresenceFrame builds the count broadcast sent after every membership change.
func PresenceFrame(count int) Frame {
	return Frame{Type: FrameTypePresence, Count: count}
}

// PingFrame renders a ping for one viewer. The self flag is per target
// connection, so the router encodes two variants of the same ping.
func PingFrame(p *Ping, self bool) Frame {
	frame := Frame{
		Type:      p.Kind,
		ID:        p.ID,
		Room:      p.Room,
		Sender:    p.Sender,
		Timestamp: p.CreatedAt.UnixMilli(),
		Self:      self,
	}
	switch p.Kind {
	case KindText:
		frame.Content = p.Content
	case KindFile:
		frame.Filename = p.FileName
		frame.StoredName = p.FileLocator
		frame.Size = p.FileSize
	}
	return frame
}

// Encode marshals the frame for the wire.
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}
