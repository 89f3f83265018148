package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stock-logistic/quoting-cli/internal/model"
	"github.com/stock-logistic/quoting-cli/internal/store"
)

// mockStore implements store.Store for testing.
type mockStore struct {
	sessions  []model.Session
	quotes    []model.QuoteRecord
	listErr   error
	quotesErr error
}

func (m *mockStore) ListSessions(_ context.Context, _, _ int) ([]model.Session, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sessions, nil
}

func (m *mockStore) ListQuotes(_ context.Context, _ store.QuoteFilter) ([]model.QuoteRecord, error) {
	if m.quotesErr != nil {
		return nil, m.quotesErr
	}
	return m.quotes, nil
}

// Unused store methods to satisfy the interface.
func (m *mockStore) CreateSession(context.Context, string) (*model.Session, error) { return nil, nil }
func (m *mockStore) GetSession(context.Context, string) (*model.Session, error)    { return nil, nil }
func (m *mockStore) SaveSession(context.Context, *model.Session) error             { return nil }
func (m *mockStore) DeleteSession(context.Context, string) error                   { return nil }
func (m *mockStore) DeleteExpiredSessions(context.Context, time.Duration) (int, error) {
	return 0, nil
}
func (m *mockStore) SaveQuote(context.Context, *model.QuoteRecord) error { return nil }
func (m *mockStore) GetQuote(context.Context, string) (*model.QuoteRecord, error) {
	return nil, nil
}
func (m *mockStore) Migrate(context.Context) error { return nil }
func (m *mockStore) Close() error                  { return nil }

func sessionAt(status model.SessionStatus, updated time.Time) model.Session {
	return model.Session{ID: "s-" + string(status), Status: status, UpdatedAt: updated}
}

func TestCollector_EmptyStore(t *testing.T) {
	t.Parallel()

	c := NewCollector(&mockStore{})

	snap, err := c.Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 0, snap.SessionsTotal)
	assert.Equal(t, 0.0, snap.SessionErrorRate)
	assert.Equal(t, 0, snap.QuotesGenerated)
	assert.Equal(t, 24, snap.LookbackHours)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestCollector_SessionMetrics(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	st := &mockStore{
		sessions: []model.Session{
			sessionAt(model.StatusCompleted, now.Add(-1*time.Hour)),
			sessionAt(model.StatusCompleted, now.Add(-2*time.Hour)),
			sessionAt(model.StatusError, now.Add(-3*time.Hour)),
			sessionAt(model.StatusCollecting, now.Add(-30*time.Minute)),
			// Outside lookback window and still collecting: abandoned.
			sessionAt(model.StatusCollecting, now.Add(-48*time.Hour)),
			// Outside window but finished: simply out of scope.
			sessionAt(model.StatusCompleted, now.Add(-72*time.Hour)),
		},
	}

	c := NewCollector(st)
	snap, err := c.Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 4, snap.SessionsTotal)
	assert.Equal(t, 2, snap.SessionsCompleted)
	assert.Equal(t, 1, snap.SessionsErrored)
	assert.Equal(t, 1, snap.SessionsActive)
	assert.Equal(t, 1, snap.AbandonedSessions)
	assert.InDelta(t, 1.0/3.0, snap.SessionErrorRate, 0.001)
}

func TestCollector_QuoteMetrics(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	st := &mockStore{
		quotes: []model.QuoteRecord{
			{QuoteID: "SL-1", GeneratedAt: now.Add(-1 * time.Hour), Costs: model.CostBreakdown{Total: 2145.10}},
			{QuoteID: "SL-2", GeneratedAt: now.Add(-2 * time.Hour), Costs: model.CostBreakdown{Total: 854.90}, CriticalAlerts: 1},
			// Outside window.
			{QuoteID: "SL-3", GeneratedAt: now.Add(-48 * time.Hour), Costs: model.CostBreakdown{Total: 999.00}},
		},
	}

	c := NewCollector(st)
	snap, err := c.Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.QuotesGenerated)
	assert.InDelta(t, 3000.00, snap.QuoteTotalEUR, 0.001)
	assert.InDelta(t, 1500.00, snap.QuoteAvgEUR, 0.001)
	assert.Equal(t, 1, snap.RestrictedQuotes)
	assert.InDelta(t, 0.5, snap.RestrictedRate, 0.001)
}

func TestCollector_ErrorRateZeroFinished(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	st := &mockStore{
		sessions: []model.Session{
			sessionAt(model.StatusCollecting, now.Add(-1*time.Hour)),
			sessionAt(model.StatusQuoting, now.Add(-2*time.Hour)),
		},
	}

	c := NewCollector(st)
	snap, err := c.Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 0.0, snap.SessionErrorRate)
	assert.Equal(t, 2, snap.SessionsActive)
}

func TestCollector_StoreErrors(t *testing.T) {
	t.Parallel()

	c := NewCollector(&mockStore{listErr: eris.New("boom")})
	_, err := c.Collect(context.Background(), 24)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list sessions")

	c = NewCollector(&mockStore{quotesErr: eris.New("boom")})
	_, err = c.Collect(context.Background(), 24)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list quotes")
}
