package internal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/johannaefageras/ping/internal/auth"
)

type authRequest struct {
	Code string `json:"code"`
}

type authResponse struct {
	Token string `json:"token"`
}

type authCheckResponse struct {
	Required      bool `json:"required"`
	Authenticated bool `json:"authenticated"`
}

// HandleAuth exchanges a room code for a bearer token. Wrong codes get 403;
// attempts are rate limited per client IP.
func (s *Server) HandleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if !s.authLimiter.Allow(s.clientIP(r)) {
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		return
	}
	var req authRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	token, err := s.auth.Login(req.Code)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			writeError(w, http.StatusForbidden, errors.New("wrong room code"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token})
}

// HandleAuthCheck tells a client whether the server requires a room code and
// whether the presented token is currently valid.
func (s *Server) HandleAuthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	resp := authCheckResponse{
		Required:      s.auth.Required(),
		Authenticated: s.auth.Verify(requestToken(r)) == nil,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
