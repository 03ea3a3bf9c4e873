package internal

import "sync"

// Hub is the process-scoped registry mapping room keys to live rooms. It is
// one of the two mutable shared structures (the other is the presence
// tracker); every mutation happens under the mutex.
type Hub struct {
	mutex sync.RWMutex
	rooms map[string]*Room
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*Room)}
}

// getOrCreateRoom ensures there is a live Room for the given key. A room
// already torn down is replaced, never handed out.
func (hub *Hub) getOrCreateRoom(key string, presence *PresenceTracker) *Room {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if room, exists := hub.rooms[key]; exists && !room.closed() {
		return room
	}
	room := newRoom(key, presence)
	hub.rooms[key] = room
	go room.run()
	return room
}

// getRoom retrieves a live room by key (may return nil).
func (hub *Hub) getRoom(key string) *Room {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()
	if room, exists := hub.rooms[key]; exists && !room.closed() {
		return room
	}
	return nil
}

// deleteRoomIfEmpty drops the in-memory room once its last connection leaves
// and stops its run goroutine. Persisted pings and uploaded files are
// untouched; they belong to the conversation, not the connection set.
func (hub *Hub) deleteRoomIfEmpty(key string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if room, exists := hub.rooms[key]; exists {
		if room.size() == 0 && !room.closed() {
			delete(hub.rooms, key)
			close(room.quit)
		}
	}
}
