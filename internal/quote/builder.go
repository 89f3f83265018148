// Package quote assembles immutable quote records from pricing output.
package quote

import (
	"fmt"
	"time"

	"github.com/stock-logistic/quoting-cli/internal/model"
	"github.com/stock-logistic/quoting-cli/internal/pricing"
)

// ValidityDays is the fixed commercial validity window of every quote.
const ValidityDays = 7

// DefaultProfitMargin applies when the customer never stated a margin.
const DefaultProfitMargin = 15

const idPrefix = "SL"

// Builder turns pricing results into quote records. now is injectable for
// deterministic ids in tests.
type Builder struct {
	now func() time.Time
}

// NewBuilder returns a Builder using wall-clock time.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// NewBuilderAt returns a Builder with a fixed clock.
func NewBuilderAt(now func() time.Time) *Builder {
	return &Builder{now: now}
}

// Build assembles the final record for a priced request. The record is a
// fresh value each call; regenerating for the same session yields a new
// quote id rather than mutating the prior record.
func (b *Builder) Build(sessionID string, req pricing.Request, res *pricing.Result) *model.QuoteRecord {
	now := b.now().UTC()
	margin := req.ProfitMargin
	if margin == 0 {
		margin = DefaultProfitMargin
	}
	return &model.QuoteRecord{
		QuoteID:   b.id(now, req.WeightKg),
		SessionID: sessionID,
		Route:     res.Route,
		Cargo: model.Cargo{
			WeightKg:      req.WeightKg,
			VolumeM3:      req.VolumeM3,
			CargoType:     req.CargoType,
			DeclaredValue: req.DeclaredValue,
		},
		Costs:          res.Costs,
		Timing:         res.Timing,
		Restrictions:   res.Alerts,
		CriticalAlerts: model.CountCritical(res.Alerts),
		Holidays:       res.Holidays,
		Vehicle:        res.Vehicle,
		PickupDate:     req.PickupDate,
		ServiceType:    string(req.ServiceType),
		ProfitMargin:   margin,
		ValidityDays:   ValidityDays,
		Alternatives:   res.Alternatives,
		GeneratedAt:    now,
	}
}

// id builds the quote identifier: prefix, compact date, and a weight
// discriminator. Collisions between same-day same-weight quotes are an
// accepted limitation of the scheme.
func (b *Builder) id(now time.Time, weightKg float64) string {
	return fmt.Sprintf("%s-%s-%d", idPrefix, now.Format("20060102"), int(weightKg))
}
