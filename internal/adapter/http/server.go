package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/precip-maps/internal/domain"
	"github.com/couchcryptid/precip-maps/internal/pipeline"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// MapRunner produces the maps for a reference date on demand.
type MapRunner interface {
	RunAt(ctx context.Context, ref time.Time) ([]domain.MapProduct, error)
}

// Options configures the optional manual-run endpoint.
type Options struct {
	Runner   MapRunner      // nil disables POST /runs
	Location *time.Location // zone for the date query parameter
}

// Server exposes health, readiness, metrics and manual-run HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz and /metrics routes,
// plus POST /runs when a runner is configured.
func NewServer(addr string, ready ReadinessChecker, opts Options, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 2 * time.Minute, // POST /runs renders every map before responding
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if opts.Runner != nil {
		loc := opts.Location
		if loc == nil {
			loc = time.Local
		}
		mux.HandleFunc("POST /runs", s.handleRun(opts.Runner, loc))
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type runResponse struct {
	Status string              `json:"status"`
	Maps   []domain.MapProduct `json:"maps,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// handleRun reruns the maps for ?date=YYYY-MM-DD, or for today when absent.
func (s *Server) handleRun(runner MapRunner, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := time.Now().In(loc)
		if d := r.URL.Query().Get("date"); d != "" {
			var err error
			ref, err = time.ParseInLocation(time.DateOnly, d, loc)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, runResponse{Status: "invalid date", Error: "date must be YYYY-MM-DD"})
				return
			}
		}

		products, err := runner.RunAt(r.Context(), ref)
		switch {
		case errors.Is(err, pipeline.ErrRunInProgress):
			writeJSON(w, http.StatusConflict, runResponse{Status: "busy", Error: err.Error()})
		case err != nil:
			s.logger.Error("manual map run failed", "reference_date", ref.Format(time.DateOnly), "error", err)
			writeJSON(w, http.StatusInternalServerError, runResponse{Status: "failed", Maps: products, Error: err.Error()})
		default:
			writeJSON(w, http.StatusOK, runResponse{Status: "ok", Maps: products})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
