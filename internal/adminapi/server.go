package adminapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/naming-server/internal/logger"
)

// Server wraps an *http.Server bound to the admin API router.
type Server struct {
	http         *http.Server
	shutdownOnce sync.Once
}

// NewServer builds a Server on the given port. When localOnly is true the
// listener binds 127.0.0.1 rather than all interfaces, guarding POST
// /shutdown from remote callers by default.
func NewServer(port int, localOnly bool, api *API) *Server {
	host := ""
	if localOnly {
		host = "127.0.0.1"
	}
	return &Server{
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      api.Router(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start serves the admin API until ctx is cancelled, then gracefully shuts
// down within 5 seconds.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("admin API listening", "address", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("admin API server failed: %w", err)
	}
}

// Stop gracefully shuts down the admin API server; safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.http.Shutdown(ctx)
	})
	return err
}
