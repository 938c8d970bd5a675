package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const probeTimeout = 2 * time.Second

var errStopped = errors.New("stopped")

// Pinger checks a backend connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// Readiness reports whether a component is serving
type Readiness interface {
	Ready() bool
}

// probe is one named dependency check.
type probe struct {
	name  string
	check func(ctx context.Context) error
}

// HealthServer serves /health (liveness of the registry backend) and /ready
// (backend plus worker loop).
type HealthServer struct {
	port   int
	live   []probe
	ready  []probe
	logger *zap.Logger
	server *http.Server
}

// NewHealthServer creates a new health server. readiness may be nil.
func NewHealthServer(port int, backend Pinger, readiness Readiness, logger *zap.Logger) *HealthServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := probe{name: "registry", check: backend.Ping}
	hs := &HealthServer{
		port:   port,
		live:   []probe{registry},
		ready:  []probe{registry},
		logger: logger,
	}
	if readiness != nil {
		worker := probe{name: "worker", check: func(context.Context) error {
			if !readiness.Ready() {
				return errStopped
			}
			return nil
		}}
		hs.ready = []probe{worker, registry}
	}
	return hs
}

// Handler returns the probe routes
func (hs *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hs.serve(hs.live, "healthy", "unhealthy"))
	mux.HandleFunc("/ready", hs.serve(hs.ready, "ready", "not ready"))
	return mux
}

// Start listens on the configured port in the background
func (hs *HealthServer) Start() error {
	hs.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", hs.port),
		Handler:           hs.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	hs.logger.Info("starting health server", zap.Int("port", hs.port))

	go func() {
		if err := hs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			hs.logger.Error("health server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down; it is a no-op when Start was never called
func (hs *HealthServer) Stop() error {
	if hs.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hs.logger.Info("stopping health server")
	return hs.server.Shutdown(ctx)
}

// HealthResponse is the body of both probe endpoints
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// serve runs probes in order and stops at the first failure.
func (hs *HealthServer) serve(probes []probe, okStatus, failStatus string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		checks := make(map[string]string, len(probes))
		for _, p := range probes {
			if err := p.check(ctx); err != nil {
				checks[p.name] = err.Error()
				hs.logger.Debug("probe failed",
					zap.String("path", r.URL.Path),
					zap.String("check", p.name),
					zap.Error(err),
				)
				hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: failStatus, Checks: checks})
				return
			}
			checks[p.name] = "ok"
		}

		hs.respondJSON(w, http.StatusOK, HealthResponse{Status: okStatus, Checks: checks})
	}
}

func (hs *HealthServer) respondJSON(w http.ResponseWriter, statusCode int, body HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		hs.logger.Error("failed to encode response", zap.Error(err))
	}
}
