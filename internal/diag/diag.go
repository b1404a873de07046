// Package diag exposes a localhost-only, read-only HTTP surface for
// operators: a health check and a snapshot of the charger's current state.
// It carries no control-plane authority and is never bound to the
// charger-facing interface.
package diag

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/matemat13/ha-s-charge/internal/charger"
)

// Server is the diagnostics HTTP surface.
type Server struct {
	addr      string
	log       *log.Logger
	state     *charger.State
	startedAt time.Time
	httpSrv   *http.Server
}

// New builds a diagnostics server bound to addr (expected to be a
// loopback address, e.g. "127.0.0.1:8090").
func New(addr string, logger *log.Logger, state *charger.State) *Server {
	return &Server{addr: addr, log: logger, state: state, startedAt: time.Now()}
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/state", s.handleState).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost", "http://127.0.0.1"},
		AllowedMethods: []string{http.MethodGet},
	})
	return c.Handler(r)
}

// Run starts the HTTP listener and serves until the process exits. A bind
// failure is returned for the caller to log, never treated as fatal by it:
// the diagnostics surface is optional tooling.
func (s *Server) Run() error {
	s.httpSrv = &http.Server{Addr: s.addr, Handler: s.router()}
	s.log.Printf("[diag] listening on %s", s.addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close shuts the diagnostics server down, if it was started.
func (s *Server) Close() error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Close()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status": "healthy",
		"uptime": time.Since(s.startedAt).String(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.state.Snapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
