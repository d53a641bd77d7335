package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/controller"
	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/infrastructure/config"
	"github.com/AbigailTB/proyecto-nuevo-sub000/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Default HTTP timeouts, used when the config leaves them at zero.
const (
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// Deps holds the dependencies required by the observer server.
type Deps struct {
	Config     config.APIConfig
	Logger     *logging.Logger
	Controller *controller.Controller
	Version    string
}

// Server is the read-only HTTP server over the controller's state.
type Server struct {
	cfg        config.APIConfig
	logger     *logging.Logger
	controller *controller.Controller
	version    string
	server     *http.Server
}

// New creates the observer server. It does not start listening.
func New(deps Deps) *Server {
	s := &Server{
		cfg:        deps.Config,
		logger:     deps.Logger,
		controller: deps.Controller,
		version:    deps.Version,
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", deps.Config.Host, deps.Config.Port),
		Handler:      s.buildRouter(),
		ReadTimeout:  timeoutOr(deps.Config.Timeouts.Read, defaultReadTimeout),
		WriteTimeout: timeoutOr(deps.Config.Timeouts.Write, defaultWriteTimeout),
		IdleTimeout:  timeoutOr(deps.Config.Timeouts.Idle, defaultIdleTimeout),
	}

	return s
}

func timeoutOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Start begins listening in a background goroutine. It returns
// immediately; listen errors are logged.
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.logger.Info("observer api listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("observer api server failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Close()
	}()
}

// Close shuts the server down gracefully.
func (s *Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("observer api shutdown incomplete", "error", err)
	}
}
