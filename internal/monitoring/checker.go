package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stock-logistic/quoting-cli/internal/config"
)

const defaultCheckInterval = 5 * time.Minute

// Checker runs periodic alert checks in the background.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	interval  time.Duration
	lookback  int
}

// NewChecker creates a background alert checker.
func NewChecker(collector *Collector, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	interval := time.Duration(cfg.CheckIntervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	return &Checker{
		collector: collector,
		alerter:   alerter,
		interval:  interval,
		lookback:  cfg.LookbackWindowHours,
	}
}

// Run starts the periodic check loop. It blocks until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting alert checker",
		zap.Duration("interval", c.interval),
		zap.Int("lookback_hours", c.lookback),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("alert checker stopped")
			return
		case <-ticker.C:
			triggered, sent, err := c.CheckNow(ctx)
			if err != nil {
				log.Error("monitoring: failed to collect metrics", zap.Error(err))
				continue
			}
			if triggered == 0 {
				log.Debug("monitoring: no alerts triggered")
				continue
			}
			log.Info("monitoring: alert check complete",
				zap.Int("alerts_triggered", triggered),
				zap.Int("alerts_sent", sent),
			)
		}
	}
}

// CheckNow runs a single collect-evaluate-send cycle and reports how many
// alerts were triggered and delivered.
func (c *Checker) CheckNow(ctx context.Context) (triggered, sent int, err error) {
	snap, err := c.collector.Collect(ctx, c.lookback)
	if err != nil {
		return 0, 0, err
	}
	alerts := c.alerter.Evaluate(snap)
	if len(alerts) == 0 {
		return 0, 0, nil
	}
	return len(alerts), c.alerter.SendAlerts(ctx, alerts), nil
}
