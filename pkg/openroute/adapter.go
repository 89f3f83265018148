package openroute

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/stock-logistic/quoting-cli/internal/pricing"
)

// CountryResolver lists the countries an encoded route geometry crosses.
type CountryResolver interface {
	CountriesAlong(geometry string) ([]string, error)
}

// RouteAdapter exposes the client as the pricing engine's route
// collaborator, geocoding both endpoints on each lookup. The optional
// resolver annotates the leg with transited countries.
type RouteAdapter struct {
	client   Client
	resolver CountryResolver
}

// NewRouteAdapter wraps a client for the pricing engine. resolver may be
// nil.
func NewRouteAdapter(client Client, resolver CountryResolver) *RouteAdapter {
	return &RouteAdapter{client: client, resolver: resolver}
}

func (a *RouteAdapter) Route(ctx context.Context, origin, destination string) (pricing.Leg, error) {
	from, err := a.client.Geocode(ctx, origin)
	if err != nil {
		return pricing.Leg{}, err
	}
	to, err := a.client.Geocode(ctx, destination)
	if err != nil {
		return pricing.Leg{}, err
	}
	route, err := a.client.Directions(ctx, from, to)
	if err != nil {
		return pricing.Leg{}, err
	}

	leg := pricing.Leg{DistanceKm: route.DistanceKm, Geometry: route.Geometry}
	if a.resolver != nil {
		countries, err := a.resolver.CountriesAlong(route.Geometry)
		if err != nil {
			return leg, eris.Wrap(err, "openroute: resolve countries")
		}
		leg.Countries = countries
	}
	return leg, nil
}
