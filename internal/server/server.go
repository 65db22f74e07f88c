package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/louisbranch/bakscore/internal/platform/timeouts"
	"github.com/louisbranch/bakscore/internal/scorekeeper"
)

// Server hosts the score keeper behind a JSON API plus the embedded app.
type Server struct {
	mu     sync.Mutex
	keeper *scorekeeper.Keeper
}

// New returns a server over the given keeper.
func New(keeper *scorekeeper.Keeper) *Server {
	return &Server{keeper: keeper}
}

// Handler builds the root mux: API routes first, static assets as fallback.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerAPIRoutes(mux)
	mux.Handle("/", newStaticHandler())
	return withTracing(mux)
}

// ListenAndServe runs the HTTP server on addr until the context ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	serveErr := make(chan error, 1)
	log.Printf("listening on %s", addr)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
