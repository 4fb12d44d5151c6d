package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/server/handlers"
	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	Cfg        *config.Config
	Handlers   *handlers.Handlers
	Logger     zerolog.Logger
	Router     *gin.Engine
	httpServer *http.Server
}

func New(cfg *config.Config, h *handlers.Handlers, logger zerolog.Logger) *Server {
	if cfg.Server.Environment == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Server{
		Cfg:      cfg,
		Handlers: h,
		Logger:   logger,
		Router:   gin.New(),
	}
}

func (s *Server) SetupRouter() {
	s.Handlers.Middleware.SetupMiddleware(s.Router)
	s.Handlers.SetupHandlers(s.Router)
}

// Start serves HTTP until ctx is cancelled, then drains in-flight
// requests. It returns nil after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.SetupRouter()

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(s.Cfg.Server.Host, s.Cfg.Server.Port),
		Handler:      s.Router,
		ReadTimeout:  s.Cfg.Server.ReadTimeout,
		WriteTimeout: s.Cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	s.Logger.Info().Msgf("Starting server on %s", s.httpServer.Addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.Logger.Error().Err(err).Msg("Failed to start server")
			return err
		}
		return nil
	case <-ctx.Done():
	}
	s.Logger.Info().Msg("Shutdown signal received, shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.Logger.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	s.Logger.Info().Msg("Server exited gracefully")
	return nil
}
