package usecase

import (
	"context"
	"errors"

	"AstroCore/internal/domain/models"
)

func chartError(kind models.ChartKind, stage string, err error) error {
	return &models.ChartCalculationError{Kind: kind, Stage: stage, Err: err}
}

// errorKind classifies err for metrics labels.
func errorKind(err error) string {
	var (
		tce *models.TimeConversionError
		ece *models.EphemerisComputationError
		uhs *models.UnsupportedHouseSystemError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &tce):
		return "time_conversion"
	case errors.As(err, &uhs):
		return "unsupported_house_system"
	case errors.As(err, &ece):
		return "ephemeris"
	default:
		return "chart"
	}
}
