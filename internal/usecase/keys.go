package usecase

import (
	"strconv"
	"strings"
	"time"

	"AstroCore/internal/domain/models"
	"AstroCore/pkg/cache"
)

// Cache namespaces, one per chart kind.
const (
	NamespaceNatal     = "natal"
	NamespaceTransit   = "transit"
	NamespaceComposite = "composite"
)

func birthKeyParts(b models.BirthData) []interface{} {
	clock := "unknown"
	if b.HasTime() {
		clock = b.Time
	}
	return []interface{}{
		b.Date,
		clock,
		strconv.FormatFloat(b.Latitude, 'g', -1, 64),
		strconv.FormatFloat(b.Longitude, 'g', -1, 64),
		b.Timezone,
	}
}

// NatalKey identifies a natal chart by birth data, house system, aspect flag
// and ephemeris accuracy.
func NatalKey(req models.NatalRequest, acc models.Accuracy) string {
	hs := req.HouseSystem
	if hs == 0 {
		hs = models.WholeSign
	}
	parts := append(birthKeyParts(req.Birth), hs.Code(), req.WithAspects, acc)
	return cache.GenerateKeyWithParams("birth", parts...)
}

// TransitKey rounds the instant down to the hour. A natal chart is folded in
// as a hash of its exact point longitudes and speeds.
func TransitKey(at time.Time, natal *models.NatalChart, withAspects bool, acc models.Accuracy) string {
	ref := "none"
	if natal != nil {
		var b strings.Builder
		for _, p := range natal.AspectPoints() {
			b.WriteString(strconv.FormatFloat(p.Exact(), 'g', -1, 64))
			b.WriteByte('/')
			b.WriteString(strconv.FormatFloat(p.Speed, 'g', -1, 64))
			b.WriteByte(',')
		}
		ref = cache.HashKey(b.String())
	}
	return cache.GenerateKeyWithParams(at.UTC().Format("2006-01-02T15"), ref, withAspects, acc)
}

// CompositeKey is the same for (A, B) and (B, A).
func CompositeKey(req models.CompositeRequest, acc models.Accuracy) string {
	a, b := CanonicalPair(req.A, req.B)
	hs := req.HouseSystem
	if hs == 0 {
		hs = models.WholeSign
	}
	raw := cache.GenerateKeyWithParams("pair", append(append(birthKeyParts(a), birthKeyParts(b)...), hs.Code())...)
	return cache.GenerateKeyWithParams(cache.HashKey(raw), req.WithAspects, acc)
}
