package aspects

import "AstroCore/internal/domain/models"

// Importance is power * exactness / 10, in [0, 1].
func Importance(a models.Aspect) float64 {
	return float64(a.Type.Power()) * a.Exactness / 10
}

// FilterByImportance keeps aspects whose importance reaches threshold,
// preserving order.
func FilterByImportance(aspects []models.Aspect, threshold float64) []models.Aspect {
	out := make([]models.Aspect, 0, len(aspects))
	for _, a := range aspects {
		if Importance(a) >= threshold {
			out = append(out, a)
		}
	}
	return out
}

// Cap filters by threshold only when there are more than limit aspects.
func Cap(aspects []models.Aspect, limit int, threshold float64) []models.Aspect {
	if len(aspects) <= limit {
		return aspects
	}
	return FilterByImportance(aspects, threshold)
}

// Soft ceilings and the thresholds applied once they are exceeded.
const (
	ChartLimit       = 50
	ChartThreshold   = 0.3
	TransitLimit     = 30
	TransitThreshold = 0.4
)
