// Package monitoring collects quoting health metrics and raises webhook
// alerts when conversation failure or restriction rates drift out of band.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/stock-logistic/quoting-cli/internal/model"
	"github.com/stock-logistic/quoting-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of quoting health.
type MetricsSnapshot struct {
	// Session metrics (within lookback window).
	SessionsTotal     int     `json:"sessions_total"`
	SessionsCompleted int     `json:"sessions_completed"`
	SessionsErrored   int     `json:"sessions_errored"`
	SessionsActive    int     `json:"sessions_active"`
	SessionErrorRate  float64 `json:"session_error_rate"`

	// Sessions still collecting fields whose last activity predates the
	// window. These carry dropped conversations worth following up on.
	AbandonedSessions int `json:"abandoned_sessions"`

	// Quote metrics (within lookback window).
	QuotesGenerated  int     `json:"quotes_generated"`
	QuoteTotalEUR    float64 `json:"quote_total_eur"`
	QuoteAvgEUR      float64 `json:"quote_avg_eur"`
	RestrictedQuotes int     `json:"restricted_quotes"`
	RestrictedRate   float64 `json:"restricted_rate"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the session and quote store.
type Collector struct {
	store store.Store
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot of quoting metrics over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	sessions, err := c.store.ListSessions(ctx, 10000, 0)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list sessions")
	}

	for _, s := range sessions {
		if s.UpdatedAt.Before(cutoff) {
			if s.Status == model.StatusCollecting {
				snap.AbandonedSessions++
			}
			continue
		}
		snap.SessionsTotal++
		switch s.Status {
		case model.StatusCompleted:
			snap.SessionsCompleted++
		case model.StatusError:
			snap.SessionsErrored++
		case model.StatusCollecting, model.StatusQuoting:
			snap.SessionsActive++
		}
	}

	finished := snap.SessionsCompleted + snap.SessionsErrored
	if finished > 0 {
		snap.SessionErrorRate = float64(snap.SessionsErrored) / float64(finished)
	}

	quotes, err := c.store.ListQuotes(ctx, store.QuoteFilter{Limit: 10000})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list quotes")
	}

	for _, q := range quotes {
		if q.GeneratedAt.Before(cutoff) {
			continue
		}
		snap.QuotesGenerated++
		snap.QuoteTotalEUR += q.Costs.Total
		if q.CriticalAlerts > 0 {
			snap.RestrictedQuotes++
		}
	}

	if snap.QuotesGenerated > 0 {
		snap.QuoteAvgEUR = snap.QuoteTotalEUR / float64(snap.QuotesGenerated)
		snap.RestrictedRate = float64(snap.RestrictedQuotes) / float64(snap.QuotesGenerated)
	}

	return snap, nil
}
