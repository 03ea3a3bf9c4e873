package internal

import "sync"

// PresenceTracker keeps counts of active websocket connections per room.
// Counts live only in process memory; a server restart resets them to zero.
type PresenceTracker struct {
	mu     sync.Mutex
	online map[string]int
}

func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{online: make(map[string]int)}
}

// Join increments the room's count and returns the value after the mutation,
// which is what every broadcast must carry.
func (p *PresenceTracker) Join(room string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[room]++
	return p.online[room]
}

// Leave decrements the room's count, never going below zero, and returns the
// post-mutation value.
func (p *PresenceTracker) Leave(room string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if count, ok := p.online[room]; ok {
		if count <= 1 {
			delete(p.online, room)
			return 0
		}
		p.online[room] = count - 1
		return p.online[room]
	}
	return 0
}

// Count reads the current count for a room.
func (p *PresenceTracker) Count(room string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[room]
}

// ActiveRooms reports how many rooms have at least one open connection.
func (p *PresenceTracker) ActiveRooms() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.online)
}
