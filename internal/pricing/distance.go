package pricing

import (
	"context"

	"go.uber.org/zap"
)

// ResolveLeg walks the lookup cascade for a route: live routing service,
// curated city pairs, per-country fallback, then a conservative default.
func (e *Engine) ResolveLeg(ctx context.Context, origin, destination string) Leg {
	fo, fd := fold(origin), fold(destination)

	if e.routes != nil {
		leg, err := e.routes.Route(ctx, origin, destination)
		if err == nil && leg.DistanceKm > 0 {
			return leg
		}
		if err != nil {
			zap.L().Debug("route lookup failed, using curated distances",
				zap.String("origin", origin),
				zap.String("destination", destination),
				zap.Error(err))
		}
	}

	if d, ok := pairDistance(fo, fd); ok {
		return Leg{DistanceKm: d}
	}
	if country, ok := cityCountry[fd]; ok {
		if d, ok := countryKm[country]; ok {
			return Leg{DistanceKm: d}
		}
	}
	return Leg{DistanceKm: defaultDistanceKm}
}

func pairDistance(a, b string) (float64, bool) {
	if m, ok := cityPairKm[a]; ok {
		if d, ok := m[b]; ok {
			return d, true
		}
	}
	if m, ok := cityPairKm[b]; ok {
		if d, ok := m[a]; ok {
			return d, true
		}
	}
	return 0, false
}

// DestinationCountry resolves the ISO country code for a destination city,
// or "" when the city is not in the curated tables.
func DestinationCountry(destination string) string {
	country, ok := cityCountry[fold(destination)]
	if !ok {
		return ""
	}
	return countryCodes[country]
}
