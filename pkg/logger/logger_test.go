package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, zerolog.DebugLevel).With(String("component", "natal"))

	log.Info("chart computed",
		Int("points", 12),
		Float64("jd", 2451545.5),
		Duration("took", 1500*time.Millisecond),
		Bool("cached", false),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "chart computed", got["message"])
	assert.Equal(t, "natal", got["component"])
	assert.Equal(t, float64(12), got["points"])
	assert.Equal(t, 2451545.5, got["jd"])
	assert.Equal(t, float64(1500), got["took"])
	assert.Equal(t, false, got["cached"])
	assert.Equal(t, "boom", got["error"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, zerolog.WarnLevel)
	log.Debug("hidden")
	log.Info("hidden")
	assert.Zero(t, buf.Len())
	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	require.Error(t, err)
}

func TestNopDiscards(t *testing.T) {
	Nop().Error("nothing", String("k", "v"))
}
