package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	"github.com/goran-ethernal/SafeIndexor/pkg/api/docs"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	"github.com/goran-ethernal/SafeIndexor/pkg/rpc"
)

// Ensure docs are registered with swag.
var _ = docs.SwaggerInfo

const shutdownCtxTimeout = 10 * time.Second

// Server is the operator HTTP API.
type Server struct {
	cfg     *config.APIConfig
	handler http.Handler
	log     *logger.Logger
}

// NewServer wires the API routes over st. rpcClient may be nil, in which case the status
// endpoint omits the chain head.
func NewServer(cfg *config.APIConfig, st *store.Store, rpcClient rpc.EthClient, log *logger.Logger) *Server {
	h := NewHandler(st, rpcClient, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /api/v1/status", h.GetStatus)
	mux.HandleFunc("GET /api/v1/safes/{address}", h.GetSafe)
	mux.HandleFunc("POST /api/v1/reindex", h.Reindex)
	mux.HandleFunc("POST /api/v1/reprocess", h.Reprocess)
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
	))

	// outermost first: CORS, logging, recovery
	root := LoggingMiddleware(log)(RecoveryMiddleware(log)(mux))
	if cfg.CORS.Enabled {
		root = CORSMiddleware(cfg.CORS.AllowedOrigins)(root)
	}

	return &Server{cfg: cfg, handler: root, log: log}
}

// Handler returns the routes with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until ctx is cancelled, then drains
// in-flight requests. A disabled server returns immediately.
func (s *Server) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.log.Info("API server is disabled")
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("api listener: %w", err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.ReadTimeout.Duration,
		ReadTimeout:       s.cfg.ReadTimeout.Duration,
		WriteTimeout:      s.cfg.WriteTimeout.Duration,
		IdleTimeout:       s.cfg.IdleTimeout.Duration,
	}
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := s.httpServer()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	s.log.Infow("serving api", "address", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownCtxTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	s.log.Info("api server stopped")
	return nil
}
