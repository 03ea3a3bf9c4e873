package internal

import "time"

const (
	// ReconnectFloor is the delay before the first retry and the value the
	// state resets to after any successful open.
	ReconnectFloor = 2 * time.Second
	// ReconnectCeiling caps the doubling.
	ReconnectCeiling = 30 * time.Second
)

// ReconnectState implements the client's unconditional exponential backoff:
// every close grows the delay, every successful open resets it, and there is
// no attempt bound. Not safe for concurrent use; the client's event loop owns
// it.
type ReconnectState struct {
	delay   time.Duration
	attempt int
}

func NewReconnectState() *ReconnectState {
	return &ReconnectState{delay: ReconnectFloor}
}

// Next returns the delay to wait before the upcoming attempt and doubles the
// stored delay for the one after, capped at the ceiling.
func (r *ReconnectState) Next() time.Duration {
	delay := r.delay
	r.attempt++
	r.delay *= 2
	if r.delay > ReconnectCeiling {
		r.delay = ReconnectCeiling
	}
	return delay
}

// Reset snaps the delay back to the floor after a successful open.
func (r *ReconnectState) Reset() {
	r.delay = ReconnectFloor
	r.attempt = 0
}

// Current reports the delay the next Next call will return, for display.
func (r *ReconnectState) Current() time.Duration {
	return r.delay
}

// Attempt reports how many close events have occurred since the last reset.
func (r *ReconnectState) Attempt() int {
	return r.attempt
}
