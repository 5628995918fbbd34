// Package status serves a read-only view of the bridge over local HTTP.
package status

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"

	"github.com/AsteroidOS/asteroid-tap2ble/internal/bridge"
	"github.com/AsteroidOS/asteroid-tap2ble/internal/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SnapshotSource provides the state to report.
type SnapshotSource interface {
	Snapshot() bridge.Snapshot
}

// Server is the status HTTP server.
type Server struct {
	srv *http.Server
	log logging.Logger
}

// NewServer returns a Server for addr. It does not listen until Start.
func NewServer(addr string, src SnapshotSource, log logging.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      Handler(src, log),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

// Handler builds the router.
func Handler(src SnapshotSource, log logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "service": "tap2ble"})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		snap := src.Snapshot()
		jsonResponse(w, http.StatusOK, struct {
			bridge.Snapshot
			Summary string `json:"summary"`
		}{snap, snap.Status()})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusNotFound, map[string]interface{}{
			"error": "not found",
			"code":  http.StatusNotFound,
		})
	})

	return r
}

// Start binds the listen address and serves in the background. Bind errors
// are returned.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}

	s.log.Infof("status listening on %s", ln.Addr())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("status server failed: %v", err)
		}
	}()
	return nil
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debugf("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start))
		})
	}
}
