package usecase

import (
	"time"

	"AstroCore/internal/domain/models"
	domrepo "AstroCore/internal/domain/repository"
	"AstroCore/pkg/logger"
	"AstroCore/pkg/metrics"
)

// DefaultCalcTimeout bounds a whole chart computation.
const DefaultCalcTimeout = 5 * time.Second

// CalcConfig holds options shared by the chart calculators.
type CalcConfig struct {
	Timeout     time.Duration
	Flags       models.CalcFlag
	AspectTypes models.AspectSet // nil means all
	Orbs        models.OrbOverrides
	Logger      *logger.Logger
	Metrics     domrepo.Metrics
	Now         func() time.Time
}

type CalcOption func(*CalcConfig)

func defaultCalcConfig() *CalcConfig {
	return &CalcConfig{
		Timeout: DefaultCalcTimeout,
		Flags:   models.DefaultCalcFlags,
		Logger:  logger.Nop(),
		Metrics: metrics.Noop{},
		Now:     time.Now,
	}
}

func buildCalcConfig(opts []CalcOption) *CalcConfig {
	cfg := defaultCalcConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithCalcTimeout overrides DefaultCalcTimeout.
func WithCalcTimeout(d time.Duration) CalcOption {
	return func(c *CalcConfig) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

func WithCalcFlags(f models.CalcFlag) CalcOption {
	return func(c *CalcConfig) { c.Flags = f }
}

// WithAspectTypes restricts aspect detection to types.
func WithAspectTypes(types models.AspectSet) CalcOption {
	return func(c *CalcConfig) { c.AspectTypes = types }
}

// WithOrbOverrides replaces default orbs per aspect type.
func WithOrbOverrides(o models.OrbOverrides) CalcOption {
	return func(c *CalcConfig) { c.Orbs = o }
}

func WithCalcLogger(l *logger.Logger) CalcOption {
	return func(c *CalcConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}

func WithCalcMetrics(m domrepo.Metrics) CalcOption {
	return func(c *CalcConfig) {
		if m != nil {
			c.Metrics = m
		}
	}
}

// WithClock sets the time source used when a transit instant is omitted.
func WithClock(now func() time.Time) CalcOption {
	return func(c *CalcConfig) { c.Now = now }
}

// observe logs and records the outcome of one computation.
func (c *CalcConfig) observe(kind models.ChartKind, start time.Time, err error) {
	took := time.Since(start)
	if err != nil {
		c.Metrics.RecordChart(kind, "error", took.Seconds())
		c.Metrics.RecordError(errorKind(err))
		c.Logger.Error("chart calculation failed",
			logger.String("kind", string(kind)),
			logger.Duration("took_ms", took),
			logger.Error(err),
		)
		return
	}
	c.Metrics.RecordChart(kind, "ok", took.Seconds())
	c.Logger.Debug("chart calculated", logger.String("kind", string(kind)), logger.Duration("took_ms", took))
}
