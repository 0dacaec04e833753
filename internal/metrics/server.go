package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	runtimeRefresh  = 15 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server exposes the Prometheus registry and a health endpoint.
type Server struct {
	cfg *config.MetricsConfig
	log *logger.Logger
}

// NewServer returns a metrics server for cfg.
func NewServer(cfg *config.MetricsConfig, log *logger.Logger) *Server {
	return &Server{cfg: cfg, log: log}
}

// Handler serves the registry on the configured path and "ok" on /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, promhttp.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Serve listens on the configured address until ctx is done, refreshing the runtime gauges
// in the background. A disabled server returns immediately.
func (s *Server) Serve(ctx context.Context) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	s.log.Infow("serving metrics", "address", ln.Addr().String(), "path", s.cfg.Path)

	ticker := time.NewTicker(runtimeRefresh)
	defer ticker.Stop()
	UpdateSystemMetrics()

	for {
		select {
		case <-ticker.C:
			UpdateSystemMetrics()
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("metrics server: %w", err)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("metrics server shutdown: %w", err)
			}
			return nil
		}
	}
}
