package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AstroCore/pkg/config"
	xhttp "AstroCore/pkg/http"
	pkgkafka "AstroCore/pkg/kafka"
	"AstroCore/pkg/logger"
)

// Drainer waits for background work, such as queued chart audits.
type Drainer interface {
	Wait()
}

// Sweeper drops idle state older than the given age.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *logger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	drainer    Drainer
	sweeper    Sweeper
	closers    []namedCloser
}

type namedCloser struct {
	name string
	c    io.Closer
}

// Option attaches optional components to the App.
type Option func(*App)

// WithConsumer starts c with the app. Handlers must already be registered.
func WithConsumer(c *pkgkafka.Consumer) Option {
	return func(a *App) { a.consumer = c }
}

// WithDrainer waits on d after the HTTP server and consumer have stopped.
func WithDrainer(d Drainer) Option {
	return func(a *App) { a.drainer = d }
}

// WithSweeper runs s once a minute, dropping state idle for ten minutes.
func WithSweeper(s Sweeper) Option {
	return func(a *App) { a.sweeper = s }
}

// WithCloser closes c on shutdown. Closers run in registration order, after
// the drainer.
func WithCloser(name string, c io.Closer) Option {
	return func(a *App) {
		if c != nil {
			a.closers = append(a.closers, namedCloser{name: name, c: c})
		}
	}
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, log *logger.Logger, httpServer *xhttp.Server, opts ...Option) *App {
	a := &App{cfg: cfg, log: log, httpServer: httpServer}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts every component and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			return err
		}
	}
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", logger.Error(err))
		return errors.Join(err, a.shutdown())
	}
	a.log.Info("astrocore started",
		logger.String("env", a.cfg.Environment),
		logger.Int("port", a.cfg.Server.Port),
		logger.String("ephemeris", a.cfg.Ephemeris.Provider),
		logger.String("cache", a.cfg.Cache.Backend),
	)

	if a.sweeper != nil {
		go a.sweep(ctx)
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) sweep(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.sweeper.Sweep(10 * time.Minute); n > 0 {
				a.log.Debug("swept idle rate limit buckets", logger.Int("count", n))
			}
		}
	}
}

// shutdown stops intake first, then drains and closes infrastructure.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
		errs = append(errs, err)
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", logger.Error(err))
			errs = append(errs, err)
		}
	}
	if a.drainer != nil {
		a.drainer.Wait()
	}
	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.log.Warn("close error", logger.String("component", nc.name), logger.Error(err))
			errs = append(errs, err)
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
