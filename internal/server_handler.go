package internal

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS authenticates and upgrades the request, binds the connection to an
// identity and room, admits it to presence counting and fan-out, and replays
// the room's persisted pings to the new connection.
func (s *Server) ServeWS(writer http.ResponseWriter, request *http.Request) {
	roomKey := request.URL.Query().Get("room")
	if roomKey == "" {
		http.Error(writer, "missing room query param", http.StatusBadRequest)
		return
	}
	user := strings.TrimSpace(request.URL.Query().Get("user"))
	if user == "" {
		http.Error(writer, "missing user query param", http.StatusBadRequest)
		return
	}
	if err := s.auth.Verify(requestToken(request)); err != nil {
		http.Error(writer, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	websocketConn, err := upgrader.Upgrade(writer, request, nil)
	if err != nil {
		log.Printf("upgrade error: %v", err)
		return
	}

	// A room can be torn down between lookup and registration when its last
	// connection leaves at the same moment; retry against a fresh one.
	var client *Client
	for {
		room := s.hub.getOrCreateRoom(roomKey, s.presence)
		client = newClient(room, websocketConn, user)
		select {
		case room.register <- client:
		case <-room.quit:
			continue
		}
		break
	}
	s.metrics.IncConn()

	go client.writePump()
	go client.readPump(s)
	go s.replayTo(client)
}

// replayTo queues the room's persisted pings onto a freshly joined
// connection. Replay is fetched after registration, so a ping created in the
// gap may arrive twice; the client board deduplicates by id.
func (s *Server) replayTo(client *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pings, err := s.pings.Replay(ctx, client.room.key)
	if err != nil {
		log.Printf("room %s: replay: %v", client.room.key, err)
		return
	}
	for i := range pings {
		ping := &pings[i]
		payload, err := PingFrame(ping, ping.Sender == client.user).Encode()
		if err != nil {
			continue
		}
		client.enqueue(payload)
	}
}
