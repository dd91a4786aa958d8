// Package ws streams live transit charts over websockets.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"AstroCore/internal/domain/models"
	"AstroCore/internal/domain/service"
	xhttp "AstroCore/pkg/http"
	"AstroCore/pkg/logger"
	"AstroCore/pkg/util"
)

// Frame is one message sent to feed subscribers.
type Frame struct {
	Type  string               `json:"type"` // "transit" or "error"
	Data  *models.TransitChart `json:"data,omitempty"`
	Error *xhttp.AppError      `json:"error,omitempty"`
}

// FeedConfig holds feed options.
type FeedConfig struct {
	DefaultInterval time.Duration
	MinInterval     time.Duration
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	Logger          *logger.Logger
	Now             func() time.Time
}

type FeedOption func(*FeedConfig)

func WithIntervals(def, min time.Duration) FeedOption {
	return func(c *FeedConfig) {
		c.DefaultInterval = def
		c.MinInterval = min
	}
}

func WithWriteTimeout(d time.Duration) FeedOption {
	return func(c *FeedConfig) { c.WriteTimeout = d }
}

func WithPingInterval(d time.Duration) FeedOption {
	return func(c *FeedConfig) { c.PingInterval = d }
}

func WithFeedLogger(l *logger.Logger) FeedOption {
	return func(c *FeedConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}

func WithFeedClock(now func() time.Time) FeedOption {
	return func(c *FeedConfig) { c.Now = now }
}

// TransitFeed pushes the current sky to each subscriber on its own interval.
// Query parameters: interval (seconds, clamped to the minimum) and aspects.
type TransitFeed struct {
	transit  service.TransitCharter
	cfg      *FeedConfig
	upgrader websocket.Upgrader
}

func NewTransitFeed(transit service.TransitCharter, opts ...FeedOption) *TransitFeed {
	cfg := &FeedConfig{
		DefaultInterval: time.Minute,
		MinInterval:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		Logger:          logger.Nop(),
		Now:             time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &TransitFeed{
		transit: transit,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

var _ xhttp.Handler = (*TransitFeed)(nil)

func (f *TransitFeed) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/transits", f.Serve)
}

// interval reads the requested period, clamped to the configured minimum.
func (f *TransitFeed) interval(c echo.Context) time.Duration {
	secs := util.ParseIntDefault(c.QueryParam("interval"), int(f.cfg.DefaultInterval/time.Second))
	d := time.Duration(secs) * time.Second
	if d < f.cfg.MinInterval {
		d = f.cfg.MinInterval
	}
	return d
}

func (f *TransitFeed) Serve(c echo.Context) error {
	every := f.interval(c)
	withAspects := util.ParseBoolDefault(c.QueryParam("aspects"), true)

	conn, err := f.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the error response
		f.cfg.Logger.Debug("websocket upgrade failed", logger.Error(err))
		return nil
	}
	defer conn.Close()

	log := f.cfg.Logger.With(logger.String("remote", c.RealIP()))
	log.Debug("transit feed opened", logger.Duration("interval", every))

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// read loop: only control frames are expected, any error ends the feed
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	ping := time.NewTicker(f.cfg.PingInterval)
	defer ping.Stop()

	if err := f.push(ctx, conn, withAspects); err != nil {
		log.Debug("transit feed closed", logger.Error(err))
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			log.Debug("transit feed closed")
			return nil
		case <-ping.C:
			deadline := time.Now().Add(f.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return nil
			}
		case <-ticker.C:
			if err := f.push(ctx, conn, withAspects); err != nil {
				log.Debug("transit feed closed", logger.Error(err))
				return nil
			}
		}
	}
}

// push computes the current transit chart and writes it. Calculation errors
// are sent as error frames and keep the feed open; write errors end it.
func (f *TransitFeed) push(ctx context.Context, conn *websocket.Conn, withAspects bool) error {
	frame := Frame{Type: "transit"}
	chart, err := f.transit.Compute(ctx, models.TransitRequest{At: f.cfg.Now(), WithAspects: withAspects})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.cfg.Logger.Warn("transit feed calculation failed", logger.Error(err))
		frame = Frame{Type: "error", Error: xhttp.BadGatewayError("ERR_TRANSIT", "transit calculation failed")}
	} else {
		frame.Data = chart
	}

	if err := conn.SetWriteDeadline(time.Now().Add(f.cfg.WriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}
