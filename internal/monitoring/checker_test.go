package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stock-logistic/quoting-cli/internal/config"
	"github.com/stock-logistic/quoting-cli/internal/model"
)

func TestChecker_RunStopsOnCancel(t *testing.T) {
	collector := NewCollector(&mockStore{})
	alerter := NewAlerter(config.MonitoringConfig{
		ErrorRateThreshold: 0.25,
	})
	checker := NewChecker(collector, alerter, config.MonitoringConfig{
		CheckIntervalSecs:   1,
		LookbackWindowHours: 24,
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		checker.Run(ctx)
		close(done)
	}()

	// Let it tick once then cancel.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
		// Run returned.
	case <-time.After(5 * time.Second):
		t.Fatal("Checker.Run did not stop after context cancellation")
	}
}

func TestChecker_DefaultInterval(t *testing.T) {
	collector := NewCollector(&mockStore{})
	alerter := NewAlerter(config.MonitoringConfig{})

	// Zero interval should default to 5 minutes.
	checker := NewChecker(collector, alerter, config.MonitoringConfig{
		CheckIntervalSecs: 0,
	})
	assert.NotNil(t, checker)

	// Start and immediately cancel to verify clean shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	checker.Run(ctx)
}

func TestChecker_CheckNow(t *testing.T) {
	now := time.Now().UTC()
	st := &mockStore{
		sessions: []model.Session{
			sessionAt(model.StatusCompleted, now.Add(-1*time.Hour)),
			sessionAt(model.StatusError, now.Add(-2*time.Hour)),
		},
	}
	collector := NewCollector(st)

	// Thresholds high enough that nothing fires.
	checker := NewChecker(collector, NewAlerter(config.MonitoringConfig{
		ErrorRateThreshold: 0.99,
	}), config.MonitoringConfig{LookbackWindowHours: 24})

	triggered, sent, err := checker.CheckNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, triggered)
	assert.Equal(t, 0, sent)
}
