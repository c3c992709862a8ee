package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/healthyair/btscan/internal/logging"
	"github.com/healthyair/btscan/internal/registry"
)

// Snapshot is the JSON document served by /api/devices and /ws
type Snapshot struct {
	State   string            `json:"state"`
	Count   int               `json:"count"`
	Devices []registry.Device `json:"devices"`
	At      time.Time         `json:"at"`
}

// snapshot captures the session state and devices in discovery order
func (s *Server) snapshot() Snapshot {
	devs := s.session.Registry().Snapshot()
	if devs == nil {
		devs = []registry.Device{}
	}
	return Snapshot{
		State:   s.session.State().String(),
		Count:   len(devs),
		Devices: devs,
		At:      time.Now().UTC(),
	}
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

// handleStartScan restarts the scan. The scan outlives the request.
func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Restart(context.WithoutCancel(r.Context())); err != nil {
		logging.Error("Failed to start scan", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, s.snapshot())
}

func (s *Server) handleStopScan(w http.ResponseWriter, r *http.Request) {
	s.session.Stop()
	writeJSON(w, http.StatusOK, s.snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Failed to write response", zap.Error(err))
	}
}

// statusRecorder remembers the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack hands the connection to the WebSocket upgrader
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Unwrap lets http.ResponseController and the WebSocket upgrader reach
// the underlying writer
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status)
	})
}
