// package server contains middleware & handlers for the collection upload web service
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yday/internal/metrics"
	"github.com/desertthunder/yday/internal/shared"
	"github.com/desertthunder/yday/internal/tasks"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, CORS, metrics, panic recovery, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the upload service.
// Implementations handle specific endpoints (uploads, health).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// ServerOpts contains the dependencies of a [Server].
type ServerOpts struct {
	Config *shared.Config
	Engine tasks.Reconciler
	Logger *log.Logger
}

// Server is the upload HTTP service.
type Server struct {
	config *shared.Config
	router *BasicRouter
	logger *log.Logger
}

// NewServer wires routes and middleware for the upload service.
func NewServer(opts ServerOpts) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = shared.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	router := NewBasicRouter()
	router.Use(
		Recover(logger),
		Logging(logger),
		metrics.Middleware,
		CORS(cfg.Server.CORSOrigin),
	)

	router.Handler(NewUploadHandler(opts.Engine, UploadHandlerOpts{
		DefaultFolder: cfg.Discogs.Folder,
		Timeout:       cfg.Server.RequestTimeoutDuration(),
		Logger:        logger,
	}))
	router.Handle(http.MethodGet, "/health", HealthHandler())
	router.Handle(http.MethodGet, "/metrics", metrics.Handler())

	return &Server{config: cfg, router: router, logger: logger}
}

// Handler returns the root handler with all routes registered.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down gracefully.
//
// Request contexts derive from ctx, so in-flight uploads stop at their next release and
// respond with partial results before the shutdown timeout elapses.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeoutDuration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
