// Package pricing computes deterministic road-freight quotes: distance
// resolution, cost breakdown, transit timing, driving restrictions, and
// derived service alternatives. External lookups (routing, tolls,
// restriction calendars) are optional collaborators; every lookup has a
// local fallback so a quote is always produced once the route endpoints
// are known.
package pricing

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stock-logistic/quoting-cli/internal/extract"
	"github.com/stock-logistic/quoting-cli/internal/model"
)

// ErrMissingRoute is returned when origin or destination is absent. Route
// endpoints are never defaulted.
var ErrMissingRoute = eris.New("pricing: origin and destination are required")

// Leg is a resolved route segment from a routing collaborator.
type Leg struct {
	DistanceKm float64
	Geometry   string
	Countries  []string
}

// RouteService resolves road distance and geometry between two cities.
type RouteService interface {
	Route(ctx context.Context, origin, destination string) (Leg, error)
}

// TollService prices tolls for a route geometry and vehicle profile.
type TollService interface {
	Tolls(ctx context.Context, geometry string, vehicle model.VehicleSpec) (float64, error)
}

// RestrictionService returns driving alerts and public holidays for the
// transited countries on a given date.
type RestrictionService interface {
	Alerts(ctx context.Context, countries []string, date time.Time, vehicle model.VehicleSpec) ([]model.Alert, []string, error)
}

// Request is a complete field set ready for pricing.
type Request struct {
	Origin        string
	Destination   string
	WeightKg      float64
	VolumeM3      float64
	CargoType     string
	ServiceType   model.ServiceTier
	PickupDate    string
	DeclaredValue float64
	ProfitMargin  float64
}

// Result is everything the quote builder needs.
type Result struct {
	Route        model.Route
	Vehicle      model.VehicleSpec
	Costs        model.CostBreakdown
	Timing       model.Timing
	Alerts       []model.Alert
	Holidays     []string
	Alternatives []model.ServiceOption
}

// Engine prices shipments. All collaborators are optional; a nil service
// selects the corresponding fallback.
type Engine struct {
	routes       RouteService
	tolls        TollService
	restrictions RestrictionService
}

// Option configures an Engine.
type Option func(*Engine)

func WithRouteService(s RouteService) Option { return func(e *Engine) { e.routes = s } }

func WithTollService(s TollService) Option { return func(e *Engine) { e.tolls = s } }

func WithRestrictionService(s RestrictionService) Option {
	return func(e *Engine) { e.restrictions = s }
}

// NewEngine builds an Engine with the given collaborators.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Quote prices a shipment. Missing route endpoints fail fast; weight and
// cargo type fall back to documented defaults. Collaborator failures are
// absorbed by local fallbacks and never surface to the caller.
func (e *Engine) Quote(ctx context.Context, req Request) (*Result, error) {
	if req.Origin == "" || req.Destination == "" {
		return nil, ErrMissingRoute
	}

	weight := req.WeightKg
	if weight <= 0 {
		weight = 1000
	}
	cargo := req.CargoType
	if cargo == "" {
		cargo = model.CargoGeneral
	}

	leg := e.ResolveLeg(ctx, req.Origin, req.Destination)
	distance, geometry := leg.DistanceKm, leg.Geometry
	vehicle := SelectVehicle(weight)
	countries := leg.Countries
	if len(countries) == 0 {
		countries = transitedCountries(req.Destination)
	}

	var (
		tollCost float64
		alerts   []model.Alert
		holidays []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tollCost = e.resolveTolls(gctx, distance, geometry, vehicle)
		return nil
	})
	g.Go(func() error {
		alerts, holidays = e.resolveAlerts(gctx, countries, req.PickupDate, vehicle)
		return nil
	})
	_ = g.Wait()

	transport := round2(weight * TransportRate(cargo) * distance / 100)
	fuel := round2(fuelPerKm * distance)
	tolls := round2(tollCost)
	insurance := round2(math.Max(weight*insuranceRate, insuranceMinimum))

	costs := model.CostBreakdown{
		Transport: transport,
		Fuel:      fuel,
		Tolls:     tolls,
		Insurance: insurance,
		Total:     transport + fuel + tolls + insurance,
	}

	timing := computeTiming(distance)

	return &Result{
		Route: model.Route{
			Origin:      req.Origin,
			Destination: req.Destination,
			DistanceKm:  distance,
			Countries:   countries,
		},
		Vehicle:      vehicle,
		Costs:        costs,
		Timing:       timing,
		Alerts:       alerts,
		Holidays:     holidays,
		Alternatives: Alternatives(costs.Total, timing.EstimatedDays),
	}, nil
}

func (e *Engine) resolveTolls(ctx context.Context, distance float64, geometry string, vehicle model.VehicleSpec) float64 {
	if e.tolls != nil && geometry != "" {
		cost, err := e.tolls.Tolls(ctx, geometry, vehicle)
		if err == nil && cost >= 0 {
			return cost
		}
		if err != nil {
			zap.L().Debug("toll lookup failed, using linear estimate", zap.Error(err))
		}
	}
	return distance * tollFallbackKm
}

func (e *Engine) resolveAlerts(ctx context.Context, countries []string, pickupDate string, vehicle model.VehicleSpec) ([]model.Alert, []string) {
	date, err := time.Parse("2006-01-02", pickupDate)
	if err != nil {
		return nil, nil
	}
	if e.restrictions != nil {
		alerts, holidays, err := e.restrictions.Alerts(ctx, countries, date, vehicle)
		if err == nil {
			return alerts, holidays
		}
		zap.L().Debug("restriction lookup failed, using weekend heuristic", zap.Error(err))
	}
	return SundayBanAlerts(countries, date), nil
}

func computeTiming(distanceKm float64) model.Timing {
	driving := distanceKm / avgSpeedKmh
	additional := baseServiceHours + (distanceKm/restStopEveryKm)*restStopHours
	total := driving + additional
	days := int(math.Round(total / workHoursPerDay))
	if days < 1 {
		days = 1
	}
	return model.Timing{
		EstimatedDays: days,
		DrivingHours:  round2(driving),
	}
}

// transitedCountries lists the countries a route to the destination
// crosses. Without live geometry only the destination country is known.
func transitedCountries(destination string) []string {
	if code := DestinationCountry(destination); code != "" {
		return []string{code}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func fold(s string) string { return extract.Fold(s) }
