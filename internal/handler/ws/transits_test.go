package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroCore/internal/domain/models"
)

type transitFunc func(context.Context, models.TransitRequest) (*models.TransitChart, error)

func (f transitFunc) Compute(ctx context.Context, req models.TransitRequest) (*models.TransitChart, error) {
	return f(ctx, req)
}

func dial(t *testing.T, feed *TransitFeed, query string) *websocket.Conn {
	t.Helper()
	e := echo.New()
	feed.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/transits" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestFeedPushesImmediatelyAndOnInterval(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var calls atomic.Int64
	var aspects atomic.Bool
	feed := NewTransitFeed(
		transitFunc(func(_ context.Context, req models.TransitRequest) (*models.TransitChart, error) {
			calls.Add(1)
			aspects.Store(req.WithAspects)
			return &models.TransitChart{CalculatedAt: req.At, Points: []models.FormattedPoint{{Name: "Sun"}}}, nil
		}),
		WithIntervals(time.Minute, 20*time.Millisecond),
		WithFeedClock(func() time.Time { return at }),
	)

	conn := dial(t, feed, "?interval=0&aspects=false")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	for i := 0; i < 2; i++ {
		var frame Frame
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, "transit", frame.Type)
		require.NotNil(t, frame.Data)
		assert.True(t, at.Equal(frame.Data.CalculatedAt))
	}
	assert.GreaterOrEqual(t, calls.Load(), int64(2))
	assert.False(t, aspects.Load())
}

func TestFeedSendsErrorFrames(t *testing.T) {
	feed := NewTransitFeed(
		transitFunc(func(context.Context, models.TransitRequest) (*models.TransitChart, error) {
			return nil, errors.New("ephemeris down")
		}),
		WithIntervals(time.Minute, time.Second),
	)

	conn := dial(t, feed, "")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "error", frame.Type)
	require.NotNil(t, frame.Error)
	assert.Equal(t, "ERR_TRANSIT", frame.Error.Code)
}

func TestIntervalClamp(t *testing.T) {
	feed := NewTransitFeed(nil, WithIntervals(time.Minute, 5*time.Second))
	e := echo.New()
	tests := map[string]time.Duration{
		"":             time.Minute,
		"?interval=1":  5 * time.Second,
		"?interval=x":  time.Minute,
		"?interval=30": 30 * time.Second,
	}
	for q, want := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/ws/transits"+q, nil), httptest.NewRecorder())
		assert.Equal(t, want, feed.interval(c), q)
	}
}

func TestPlainHTTPIsRejected(t *testing.T) {
	feed := NewTransitFeed(nil)
	e := echo.New()
	feed.RegisterRoutes(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/transits", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
