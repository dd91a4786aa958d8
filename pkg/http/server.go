package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"AstroCore/pkg/http/middleware"
	"AstroCore/pkg/logger"
)

// ServerOption configures Server.
type ServerOption func(*ServerConfig)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORS            bool
	MetricsPath     string // empty disables the scrape endpoint
	Registry        *prometheus.Registry
	SlowThreshold   time.Duration
	Middleware      []echo.MiddlewareFunc
	Logger          *logger.Logger
}

// Server wraps Echo HTTP server.
type Server struct {
	echo   *echo.Echo
	config *ServerConfig
	log    *logger.Logger
}

// NewServer creates an Echo server and registers every handler's routes.
func NewServer(handlers []Handler, opts ...ServerOption) *Server {
	cfg := &ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		CORS:            true,
		MetricsPath:     "/metrics",
		SlowThreshold:   time.Second,
		Logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.Use(middleware.Recover(cfg.Logger))
	e.Use(middleware.RequestLogging(cfg.Logger))
	if cfg.Registry != nil {
		e.Use(middleware.NewHTTPMetrics(cfg.Registry).Middleware(cfg.Logger, cfg.SlowThreshold))
	}
	if cfg.CORS {
		e.Use(middleware.CORS(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			MaxAge:       600,
		}))
	}
	e.Use(cfg.Middleware...)

	for _, h := range handlers {
		if h != nil {
			h.RegisterRoutes(e)
		}
	}

	if cfg.MetricsPath != "" {
		var mh http.Handler = promhttp.Handler()
		if cfg.Registry != nil {
			mh = promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{Registry: cfg.Registry})
		}
		e.GET(cfg.MetricsPath, echo.WrapHandler(mh))
	}
	e.GET("/healthz", func(c echo.Context) error {
		return SuccessResponse(c, map[string]string{"status": "ok"})
	})

	return &Server{echo: e, config: cfg, log: cfg.Logger}
}

// Start listens in the background.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	go func() {
		s.log.Info("http server listening", logger.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server error", logger.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.log.Info("http server stopped")
	return nil
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo { return s.echo }

func WithHost(host string) ServerOption {
	return func(c *ServerConfig) { c.Host = host }
}

func WithPort(port int) ServerOption {
	return func(c *ServerConfig) { c.Port = port }
}

// WithTimeouts sets read, write and shutdown timeouts.
func WithTimeouts(read, write, shutdown time.Duration) ServerOption {
	return func(c *ServerConfig) {
		c.ReadTimeout = read
		c.WriteTimeout = write
		c.ShutdownTimeout = shutdown
	}
}

func WithCORS(enabled bool) ServerOption {
	return func(c *ServerConfig) { c.CORS = enabled }
}

// WithMetrics instruments requests into reg and serves it on path.
func WithMetrics(reg *prometheus.Registry, path string) ServerOption {
	return func(c *ServerConfig) {
		c.Registry = reg
		c.MetricsPath = path
	}
}

// WithMiddleware appends middleware after the built-in ones.
func WithMiddleware(mw ...echo.MiddlewareFunc) ServerOption {
	return func(c *ServerConfig) { c.Middleware = append(c.Middleware, mw...) }
}

func WithServerLogger(l *logger.Logger) ServerOption {
	return func(c *ServerConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}
