package quote

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stock-logistic/quoting-cli/internal/model"
	"github.com/stock-logistic/quoting-cli/internal/pricing"
)

func pricedRequest(t *testing.T) (pricing.Request, *pricing.Result) {
	t.Helper()
	req := pricing.Request{
		Origin:      "Madrid",
		Destination: "París",
		WeightKg:    1500,
		VolumeM3:    10,
		CargoType:   model.CargoGeneral,
		ServiceType: model.TierStandard,
		PickupDate:  "2026-10-15",
	}
	res, err := pricing.NewEngine().Quote(context.Background(), req)
	require.NoError(t, err)
	return req, res
}

func TestBuild(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	b := NewBuilderAt(func() time.Time { return at })
	req, res := pricedRequest(t)

	rec := b.Build("sess-1", req, res)

	assert.Equal(t, "SL-20261001-1500", rec.QuoteID)
	assert.Equal(t, "sess-1", rec.SessionID)
	assert.Equal(t, ValidityDays, rec.ValidityDays)
	assert.Equal(t, res.Costs, rec.Costs)
	assert.Equal(t, res.Timing, rec.Timing)
	assert.Equal(t, 1500.0, rec.Cargo.WeightKg)
	assert.Equal(t, "standard", rec.ServiceType)
	assert.Equal(t, float64(DefaultProfitMargin), rec.ProfitMargin)
	assert.Equal(t, at, rec.GeneratedAt)
	assert.Len(t, rec.Alternatives, 3)
	assert.Equal(t, 0, rec.CriticalAlerts)
}

func TestBuildRegenerationIsANewRecord(t *testing.T) {
	t.Parallel()
	clock := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	b := NewBuilderAt(func() time.Time { return clock })
	req, res := pricedRequest(t)

	first := b.Build("sess-1", req, res)
	req.WeightKg = 2000
	req.ProfitMargin = 20
	second := b.Build("sess-1", req, res)

	assert.NotEqual(t, first.QuoteID, second.QuoteID)
	assert.Equal(t, 1500.0, first.Cargo.WeightKg)
	assert.Equal(t, 20.0, second.ProfitMargin)
}

func TestBuildCountsCriticalAlerts(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	req := pricing.Request{
		Origin:      "Madrid",
		Destination: "Berlín",
		WeightKg:    5000,
		PickupDate:  "2025-11-09",
	}
	res, err := pricing.NewEngine().Quote(context.Background(), req)
	require.NoError(t, err)

	rec := b.Build("sess-2", req, res)
	assert.GreaterOrEqual(t, rec.CriticalAlerts, 1)
	assert.Equal(t, model.CountCritical(rec.Restrictions), rec.CriticalAlerts)
}

func TestBuildCarriesHolidays(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	req, res := pricedRequest(t)
	res.Holidays = []string{"2026-07-14", "2026-08-15"}

	rec := b.Build("sess-4", req, res)
	assert.Equal(t, res.Holidays, rec.Holidays)
}

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()
	b := NewBuilderAt(func() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC) })
	req, res := pricedRequest(t)
	rec := b.Build("sess-3", req, res)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var back model.QuoteRecord
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, *rec, back)
}
