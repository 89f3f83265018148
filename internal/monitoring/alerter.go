package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stock-logistic/quoting-cli/internal/config"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertSessionErrorRate  AlertType = "session_error_rate"
	AlertAbandonedSessions AlertType = "abandoned_sessions"
	AlertRestrictedQuotes  AlertType = "restricted_quote_rate"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a MetricsSnapshot against configured thresholds
// and sends alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap *MetricsSnapshot) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	// Conversations erroring out instead of reaching a quote.
	finished := snap.SessionsCompleted + snap.SessionsErrored
	if finished >= 5 && snap.SessionErrorRate > a.cfg.ErrorRateThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertSessionErrorRate,
			Severity: "high",
			Message: fmt.Sprintf(
				"Session error rate %.1f%% exceeds threshold %.1f%% (%d errored / %d finished in last %dh)",
				snap.SessionErrorRate*100, a.cfg.ErrorRateThreshold*100,
				snap.SessionsErrored, finished, snap.LookbackHours,
			),
			Details: map[string]any{
				"error_rate": snap.SessionErrorRate,
				"threshold":  a.cfg.ErrorRateThreshold,
				"errored":    snap.SessionsErrored,
				"finished":   finished,
			},
			Timestamp: now,
		})
	}

	// Conversations that stalled mid-collection and went quiet.
	if a.cfg.AbandonedSessionLimit > 0 && snap.AbandonedSessions > a.cfg.AbandonedSessionLimit {
		alerts = append(alerts, Alert{
			Type:     AlertAbandonedSessions,
			Severity: "medium",
			Message: fmt.Sprintf(
				"%d session(s) abandoned mid-collection, above limit %d",
				snap.AbandonedSessions, a.cfg.AbandonedSessionLimit,
			),
			Details: map[string]any{
				"abandoned": snap.AbandonedSessions,
				"limit":     a.cfg.AbandonedSessionLimit,
			},
			Timestamp: now,
		})
	}

	// An unusual share of quotes carrying critical road restrictions.
	if a.cfg.RestrictedRateMax > 0 && snap.QuotesGenerated >= 5 && snap.RestrictedRate > a.cfg.RestrictedRateMax {
		alerts = append(alerts, Alert{
			Type:     AlertRestrictedQuotes,
			Severity: "medium",
			Message: fmt.Sprintf(
				"%.1f%% of quotes carry critical restrictions, above %.1f%% (%d of %d in last %dh)",
				snap.RestrictedRate*100, a.cfg.RestrictedRateMax*100,
				snap.RestrictedQuotes, snap.QuotesGenerated, snap.LookbackHours,
			),
			Details: map[string]any{
				"restricted_rate": snap.RestrictedRate,
				"threshold":       a.cfg.RestrictedRateMax,
				"restricted":      snap.RestrictedQuotes,
				"generated":       snap.QuotesGenerated,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
