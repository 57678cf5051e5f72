package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"invite-reviewer/internal/config"
	"invite-reviewer/internal/review"
)

const (
	draftField          = "draft_invitation"
	msgMissingDraft     = "Please enter a draft invitation."
	shutdownGracePeriod = 10 * time.Second
	readTimeout         = 30 * time.Second
	idleTimeout         = 120 * time.Second
	writeTimeoutSlack   = 30 * time.Second
)

// Reviewer submits a draft for review. *review.Client satisfies it.
type Reviewer interface {
	Submit(ctx context.Context, draft string) review.Result
}

type Server struct {
	cfg      config.Config
	reviewer Reviewer
	app      *echo.Echo
	address  string
}

// New constructs an HTTP server wired with routing and middleware.
func New(cfg config.Config, reviewer Reviewer) (*Server, error) {
	if reviewer == nil {
		return nil, errors.New("reviewer must not be nil")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	renderer, err := newTemplateRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = plainErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency: true,
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"error", v.Error,
			)
			return nil
		},
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; form-action 'self'; frame-ancestors 'none'",
	}))

	srv := &Server{
		cfg:      cfg,
		reviewer: reviewer,
		app:      e,
		address:  fmt.Sprintf(":%d", cfg.Server.Port),
	}

	srv.registerRoutes()

	return srv, nil
}

// ServeHTTP exposes the router, mainly for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	printStartupBanner(s.cfg.Server.Port)
	slog.Info("starting server", "addr", s.address, "model", s.cfg.Completion.Model)

	httpServer := &http.Server{
		Addr:         s.address,
		Handler:      s.app,
		ReadTimeout:  readTimeout,
		WriteTimeout: s.cfg.Completion.Timeout + writeTimeoutSlack,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		slog.Info("server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	s.app.GET("/", s.handleIndex)
	s.app.POST("/", s.handleSubmit)
	s.app.GET("/health", s.handleHealth)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.Render(http.StatusOK, indexTemplate, pageData{})
}

func (s *Server) handleSubmit(c echo.Context) error {
	draft := c.FormValue(draftField)
	if strings.TrimSpace(draft) == "" {
		return c.Render(http.StatusOK, indexTemplate, pageData{Error: msgMissingDraft})
	}

	res := s.reviewer.Submit(c.Request().Context(), draft)
	return c.Render(http.StatusOK, indexTemplate, resultPage(draft, res))
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func plainErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.String(he.Code, fmt.Sprint(he.Message))
		return
	}

	slog.Error("unhandled request error", "uri", c.Request().RequestURI, "err", err)
	_ = c.String(http.StatusInternalServerError, "internal server error")
}

func printStartupBanner(port int) {
	host := "127.0.0.1"
	fmt.Println()
	fmt.Println("invite-reviewer ready")
	fmt.Printf("Open http://%s:%d in your browser\n", host, port)
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /")
	fmt.Println("  POST /")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /metrics")
	fmt.Println()
}
