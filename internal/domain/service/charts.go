package service

import (
	"context"

	"AstroCore/internal/domain/models"
)

// NatalCharter computes birth charts.
type NatalCharter interface {
	Compute(ctx context.Context, req models.NatalRequest) (*models.NatalChart, error)
}

// TransitCharter computes sky positions at an instant, optionally against a natal chart.
type TransitCharter interface {
	Compute(ctx context.Context, req models.TransitRequest) (*models.TransitChart, error)
}

// CompositeCharter computes midpoint charts for two people.
type CompositeCharter interface {
	Compute(ctx context.Context, req models.CompositeRequest) (*models.CompositeChart, error)
}
