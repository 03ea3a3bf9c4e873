package internal

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

type Metrics struct {
	pings       atomic.Uint64
	uploads     atomic.Uint64
	dismissals  atomic.Uint64
	activeConns atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncPing() {
	m.pings.Add(1)
}

func (m *Metrics) IncUpload() {
	m.uploads.Add(1)
}

func (m *Metrics) IncDismissal() {
	m.dismissals.Add(1)
}

func (m *Metrics) IncConn() {
	m.activeConns.Add(1)
}

func (m *Metrics) DecConn() {
	m.activeConns.Add(-1)
}

func (m *Metrics) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{
		"pings_total":        m.pings.Load(),
		"uploads_total":      m.uploads.Load(),
		"dismissals_total":   m.dismissals.Load(),
		"active_connections": m.activeConns.Load(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
