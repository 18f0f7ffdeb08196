// Package server exposes the query router over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/coursebot/ai/metrics"
	"github.com/hrygo/coursebot/internal/profile"
	"github.com/hrygo/coursebot/internal/version"
	"github.com/hrygo/coursebot/server/middleware"
	apiv1 "github.com/hrygo/coursebot/server/router/api/v1"
)

const limiterCleanupInterval = 5 * time.Minute

type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
	limiter    *middleware.RateLimiter
	listener   net.Listener

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewServer(ctx context.Context, profile *profile.Profile, router apiv1.QueryHandler, exporter *metrics.PrometheusExporter) (*Server, error) {
	if router == nil {
		return nil, errors.New("query handler is required")
	}

	s := &Server{
		Profile: profile,
		limiter: middleware.NewRateLimiter(profile.RateLimit, middleware.DefaultBurst),
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomw.Recover())
	echoServer.Use(middleware.RequestID())
	if exporter != nil {
		echoServer.Use(middleware.Metrics(exporter))
	}
	echoServer.Server.Handler = echoServer
	s.echoServer = echoServer

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": profile.Version,
		})
	})
	if exporter != nil {
		echoServer.GET("/metrics", echo.WrapHandler(exporter.Handler()))
	}

	apiGroup := echoServer.Group("/api/v1")
	apiGroup.Use(s.limiter.Middleware())
	apiv1.NewAPIV1Service(router).RegisterRoutes(apiGroup)

	return s, nil
}

// Handler exposes the underlying echo instance as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	s.listener = listener

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := s.echoServer.Server.Serve(listener); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start echo server", "error", err)
		}
	}()
	go func() {
		defer s.wg.Done()
		s.cleanupLimiters(ctx)
	}()
	return nil
}

// Addr returns the bound listener address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	s.wg.Wait()
	slog.Info("server stopped properly", "version", version.String())
}

func (s *Server) cleanupLimiters(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Cleanup(); n > 0 {
				slog.Debug("rate limiter cleanup", "removed", n)
			}
		}
	}
}
