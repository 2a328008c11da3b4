package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server serves the metrics endpoint for the whole process lifetime,
// independent of cycle state.
type Server struct {
	addr    string
	handler http.Handler
	logger  *zap.Logger
}

// NewServer returns a Server binding addr to the exposition handler.
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{addr: addr, handler: handler, logger: logger}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.handler)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("metrics endpoint listening", zap.String("addr", s.addr))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
