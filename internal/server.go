package internal

import (
	"net"
	"net/http"
	"strings"

	"github.com/johannaefageras/ping/internal/auth"
	"github.com/johannaefageras/ping/internal/storage"
)

// Server bundles the shared state behind the HTTP and websocket handlers: the
// room registry, presence counters, ping lifecycle, file bridge, and the auth
// collaborator.
type Server struct {
	hub         *Hub
	store       *storage.Store
	pings       *PingService
	presence    *PresenceTracker
	auth        *auth.Authenticator
	metrics     *Metrics
	authLimiter *AttemptLimiter
	files       *FileTransfer
}

func NewServer(store *storage.Store, authn *auth.Authenticator, uploadDir string, maxFileSize int64) *Server {
	if maxFileSize <= 0 {
		maxFileSize = MaxFileSize
	}
	server := &Server{
		hub:         NewHub(),
		store:       store,
		pings:       NewPingService(store),
		presence:    NewPresenceTracker(),
		auth:        authn,
		metrics:     NewMetrics(),
		authLimiter: NewAuthLimiter(),
	}
	server.files = NewFileTransfer(server, uploadDir, maxFileSize)
	return server
}

func (s *Server) MetricsHandler() http.Handler {
	return s.metrics
}

func (s *Server) HandleFileUpload(w http.ResponseWriter, r *http.Request) {
	s.files.HandleUpload(w, r)
}

func (s *Server) HandleFileDownload(w http.ResponseWriter, r *http.Request) {
	s.files.HandleDownload(w, r)
}

// requestToken pulls the bearer token from the Authorization header or, for
// websocket dials that cannot set headers, the token query parameter.
func requestToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (s *Server) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
