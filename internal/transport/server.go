package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/DavePearce/OnlineCards/internal/config"
)

// Server runs the HTTP listener hosting the room event endpoint. It
// implements the lifecycle Service contract: Start blocks until the
// server stops, Stop shuts it down gracefully.
type Server struct {
	cfg    config.ServerConfig
	http   *http.Server
	logger *zap.Logger
}

// NewServer creates a Server routing requests to the given handler.
//
// Precondition: handler and logger must be non-nil; cfg must have
// passed config validation.
func NewServer(cfg config.ServerConfig, handler *Handler, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	handler.Register(e)

	return &Server{
		cfg: cfg,
		http: &http.Server{
			Handler:      e,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// Start binds the first free candidate address and serves requests
// until Stop is called.
//
// Postcondition: Returns nil after a graceful Stop, or a non-nil error
// if no candidate port could be bound or serving failed.
func (s *Server) Start() error {
	ln, err := s.listen()
	if err != nil {
		return err
	}

	s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))

	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

// listen tries each configured address in order and returns the first
// listener that binds.
func (s *Server) listen() (net.Listener, error) {
	var lastErr error
	for _, addr := range s.cfg.Addrs() {
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			return ln, nil
		}
		lastErr = err
		s.logger.Warn("port unavailable, trying next",
			zap.String("addr", addr),
			zap.Error(err),
		)
	}
	return nil, fmt.Errorf("no candidate port available: %w", lastErr)
}

// Stop gracefully shuts down the server, bounded by the configured
// shutdown timeout.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown failed, closing", zap.Error(err))
		_ = s.http.Close()
	}
}
