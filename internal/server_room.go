package internal

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// delivery is one created ping headed for every connection in a room.
type delivery struct {
	ping *Ping
}

// Room fans events out to all currently connected clients and handles
// membership changes. The run goroutine serializes register, unregister, and
// deliver events, which guarantees every connection observes the same
// sequence of presence counts.
type Room struct {
	key        string
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	quit       chan struct{}
	mutex      sync.RWMutex
	presence   *PresenceTracker
}

func newRoom(key string, presence *PresenceTracker) *Room {
	return &Room{
		key:        key,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		quit:       make(chan struct{}),
		presence:   presence,
	}
}

func (room *Room) size() int {
	room.mutex.RLock()
	defer room.mutex.RUnlock()
	return len(room.clients)
}

func (room *Room) run() {
	for {
		select {
		case client := <-room.register:
			room.mutex.Lock()
			room.clients[client] = true
			room.mutex.Unlock()
			room.broadcastPresence(room.presence.Join(room.key))
		case client := <-room.unregister:
			room.mutex.Lock()
			if _, exists := room.clients[client]; exists {
				delete(room.clients, client)
				close(client.send)
			}
			room.mutex.Unlock()
			room.broadcastPresence(room.presence.Leave(room.key))
		case d := <-room.deliver:
			room.broadcastPing(d.ping)
		case <-room.quit:
			return
		}
	}
}

// closed reports whether the hub has torn this room down. A closed room is a
// stale map entry at worst; callers look up a fresh one.
func (room *Room) closed() bool {
	select {
	case <-room.quit:
		return true
	default:
		return false
	}
}

// deliverPing queues a ping for fan-out without wedging on a room that was
// torn down between lookup and send.
func (room *Room) deliverPing(ping *Ping) {
	select {
	case room.deliver <- delivery{ping: ping}:
	case <-room.quit:
	}
}

// snapshot copies the connection set so broadcasts never hold the room lock
// for the duration of N writes.
func (room *Room) snapshot() []*Client {
	room.mutex.RLock()
	defer room.mutex.RUnlock()
	clients := make([]*Client, 0, len(room.clients))
	for client := range room.clients {
		clients = append(clients, client)
	}
	return clients
}

// broadcastPresence sends the post-mutation count to every connection in
// scope, including the one that just joined.
func (room *Room) broadcastPresence(count int) {
	payload, err := PresenceFrame(count).Encode()
	if err != nil {
		return
	}
	for _, client := range room.snapshot() {
		client.enqueue(payload)
	}
}

// broadcastPing pushes a created ping to every connection, tagging the
// sender's own connections with self so their view renders the echo. A write
// to one slow or broken connection never delays the others.
func (room *Room) broadcastPing(ping *Ping) {
	selfPayload, err := PingFrame(ping, true).Encode()
	if err != nil {
		return
	}
	otherPayload, err := PingFrame(ping, false).Encode()
	if err != nil {
		return
	}
	for _, client := range room.snapshot() {
		if client.user == ping.Sender {
			client.enqueue(selfPayload)
		} else {
			client.enqueue(otherPayload)
		}
	}
}

// Client wraps a single websocket connection bound to one participant
// identity, with a buffered send queue drained by writePump.
type Client struct {
	room *Room
	conn *websocket.Conn
	send chan []byte
	user string
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 8192
)

func newClient(room *Room, conn *websocket.Conn, user string) *Client {
	return &Client{
		room: room,
		conn: conn,
		send: make(chan []byte, 256),
		user: user,
	}
}

// enqueue hands a payload to the client's writer without blocking. The
// membership check and the send happen under the room mutex, the same lock
// every close(client.send) runs under, so a payload racing an unregister is
// discarded instead of hitting a closed channel. A client whose buffer is
// full is dropped; its own teardown then corrects the presence count.
func (client *Client) enqueue(payload []byte) {
	client.room.mutex.RLock()
	if !client.room.clients[client] {
		client.room.mutex.RUnlock()
		return
	}
	select {
	case client.send <- payload:
		client.room.mutex.RUnlock()
	default:
		client.room.mutex.RUnlock()
		client.room.drop(client)
	}
}

func (room *Room) drop(client *Client) {
	room.mutex.Lock()
	defer room.mutex.Unlock()
	if _, exists := room.clients[client]; exists {
		delete(room.clients, client)
		close(client.send)
	}
}

func (client *Client) readPump(server *Server) {
	defer func() {
		select {
		case client.room.unregister <- client:
		case <-client.room.quit:
			// room already torn down; settle the presence count directly.
			client.room.presence.Leave(client.room.key)
		}
		client.conn.Close()
		server.hub.deleteRoomIfEmpty(client.room.key)
		server.metrics.DecConn()
	}()
	client.conn.SetReadLimit(maxMsgSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, payload, err := client.conn.ReadMessage()
		if err != nil {
			// normal close or read error; deferred cleanup runs.
			break
		}
		client.handleFrame(server, payload)
	}
}

// handleFrame processes one inbound frame. Malformed or unknown frames are
// logged and skipped; nothing a peer sends can terminate the receive loop.
func (client *Client) handleFrame(server *Server, payload []byte) {
	frame, err := ParseFrame(payload)
	if err != nil {
		log.Printf("room %s: dropping frame from %s: %v", client.room.key, client.user, err)
		return
	}
	if !KnownFrameType(frame.Type) {
		log.Printf("room %s: ignoring frame type %q from %s", client.room.key, frame.Type, client.user)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	switch frame.Type {
	case FrameTypeText:
		ping, err := server.pings.CreateText(ctx, client.room.key, client.user, frame.Content)
		if err != nil {
			if errors.Is(err, ErrValidationFailed) {
				return
			}
			log.Printf("room %s: create text ping: %v", client.room.key, err)
			return
		}
		server.metrics.IncPing()
		client.room.deliverPing(ping)
	case FrameTypeDismiss:
		// scoped to the connection's room; ids from elsewhere are no-ops.
		removed, err := server.pings.Dismiss(ctx, client.room.key, frame.ID)
		if err != nil {
			log.Printf("room %s: dismiss %s: %v", client.room.key, frame.ID, err)
			return
		}
		if removed {
			server.metrics.IncDismissal()
		}
	default:
		// presence and file frames are server-originated; a client sending
		// them is ignored.
	}
}

func (client *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()
	for {
		select {
		case message, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
