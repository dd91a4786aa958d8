package usecase

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"AstroCore/internal/domain/models"
	domrepo "AstroCore/internal/domain/repository"
)

// skyPositions is the ephemeris stage shared by the calculators.
type skyPositions struct {
	eph   domrepo.Ephemeris
	flags models.CalcFlag
}

// bodies looks up every tracked body in parallel. The result is in
// models.TrackedBodies order regardless of completion order, and the first
// failure cancels the rest.
func (s skyPositions) bodies(ctx context.Context, jd float64) ([]models.PointPosition, error) {
	out := make([]models.PointPosition, len(models.TrackedBodies))
	g, gctx := errgroup.WithContext(ctx)
	for i, body := range models.TrackedBodies {
		i, body := i, body
		g.Go(func() error {
			pos, err := bounded(gctx, func() (models.PointPosition, error) {
				return s.eph.PointPosition(gctx, jd, body, s.flags)
			})
			if err != nil {
				return asEphemerisError(err, "position", body.String())
			}
			out[i] = pos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s skyPositions) houses(ctx context.Context, jd, lat, lon float64, hs models.HouseSystem) (models.HouseData, error) {
	data, err := bounded(ctx, func() (models.HouseData, error) {
		return s.eph.HousesAndAngles(ctx, jd, lat, lon, hs)
	})
	if err != nil {
		return models.HouseData{}, asEphemerisError(err, "houses", "")
	}
	return data, nil
}

// bounded runs fn but returns as soon as ctx is done, for adapters that do
// not watch the context themselves.
func bounded[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// asEphemerisError keeps adapter errors as they are and wraps anything else,
// such as a context deadline, into an EphemerisComputationError.
func asEphemerisError(err error, op, body string) error {
	var ece *models.EphemerisComputationError
	if errors.As(err, &ece) {
		return err
	}
	return &models.EphemerisComputationError{Op: op, Body: body, Err: err}
}
