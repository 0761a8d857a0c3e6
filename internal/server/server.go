package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Closer releases a resource when the server stops, such as the chat
// registry, the database pool or the Redis client.
type Closer func()

type Server struct {
	http    *http.Server
	closers []Closer
	logger  *zap.SugaredLogger
}

// New builds a server for handler. closers run in order after the HTTP
// server has stopped accepting requests.
func New(addr string, handler http.Handler, logger *zap.SugaredLogger, closers ...Closer) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		closers: closers,
		logger:  logger,
	}
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("server starting", "addr", ln.Addr().String())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	s.close()
	return err
}

func (s *Server) close() {
	for _, c := range s.closers {
		c()
	}
}
