package model

import "time"

// ServiceTier is one of the three derived service levels on a quote.
type ServiceTier string

const (
	TierEconomic ServiceTier = "economic"
	TierStandard ServiceTier = "standard"
	TierExpress  ServiceTier = "express"
)

// CargoCategory values the extractor emits. The rate table accepts more
// keys than these; anything unknown prices as general cargo.
const (
	CargoGeneral      = "general"
	CargoForestry     = "forestry"
	CargoADR          = "adr"
	CargoRefrigerated = "refrigerated"
	CargoSpecial      = "special"
)

// Route describes the resolved origin/destination leg of a quote.
type Route struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	DistanceKm  float64  `json:"distance_km"`
	Countries   []string `json:"countries"`
}

// Cargo describes what is being shipped.
type Cargo struct {
	WeightKg      float64 `json:"weight_kg"`
	VolumeM3      float64 `json:"volume_m3,omitempty"`
	CargoType     string  `json:"cargo_type"`
	DeclaredValue float64 `json:"declared_value,omitempty"`
}

// CostBreakdown holds the EUR cost components. Total is always the exact
// sum of the other four.
type CostBreakdown struct {
	Transport float64 `json:"transport"`
	Fuel      float64 `json:"fuel"`
	Tolls     float64 `json:"tolls"`
	Insurance float64 `json:"insurance"`
	Total     float64 `json:"total"`
}

// Timing holds the transit estimate.
type Timing struct {
	EstimatedDays int     `json:"estimated_days"`
	DrivingHours  float64 `json:"driving_hours"`
}

// Alert severities.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert is a route restriction warning.
type Alert struct {
	Severity string `json:"severity"`
	Country  string `json:"country"`
	Message  string `json:"message"`
}

// VehicleSpec is the vehicle class selected for the shipment weight.
// Dimensions are informational only; pricing never reads them.
type VehicleSpec struct {
	Type       string  `json:"type"`
	WeightTons float64 `json:"weight_tons"`
	HeightM    float64 `json:"height_m"`
	WidthM     float64 `json:"width_m"`
	LengthM    float64 `json:"length_m"`
	Axles      int     `json:"axles"`
}

// ServiceOption is one derived service alternative on a quote.
type ServiceOption struct {
	Tier        ServiceTier `json:"tier"`
	Price       float64     `json:"price"`
	Days        int         `json:"days"`
	Features    []string    `json:"features"`
	Recommended bool        `json:"recommended,omitempty"`
}

// QuoteRecord is the finalized, immutable priced result for a complete
// field set. Regeneration produces a new record, never a mutation.
type QuoteRecord struct {
	QuoteID        string          `json:"quote_id"`
	SessionID      string          `json:"session_id,omitempty"`
	Route          Route           `json:"route"`
	Cargo          Cargo           `json:"cargo"`
	Costs          CostBreakdown   `json:"cost_breakdown"`
	Timing         Timing          `json:"timing"`
	Restrictions   []Alert         `json:"restrictions"`
	CriticalAlerts int             `json:"critical_alerts"`
	Holidays       []string        `json:"holidays,omitempty"`
	Vehicle        VehicleSpec     `json:"vehicle"`
	PickupDate     string          `json:"pickup_date"`
	ServiceType    string          `json:"service_type"`
	ProfitMargin   float64         `json:"profit_margin,omitempty"`
	ValidityDays   int             `json:"validity_days"`
	Alternatives   []ServiceOption `json:"service_alternatives"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// CountCritical returns how many alerts carry critical severity.
func CountCritical(alerts []Alert) int {
	n := 0
	for _, a := range alerts {
		if a.Severity == SeverityCritical {
			n++
		}
	}
	return n
}
