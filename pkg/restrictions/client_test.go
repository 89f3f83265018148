package restrictions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stock-logistic/quoting-cli/internal/model"
	"github.com/stock-logistic/quoting-cli/internal/resilience"
)

func TestLookup_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/restrictions", r.URL.Path)
		assert.Equal(t, "DE,AT", r.URL.Query().Get("countries"))
		assert.Equal(t, "2025-11-09", r.URL.Query().Get("date"))
		assert.Equal(t, "trailer", r.URL.Query().Get("vehicle"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Write([]byte(`{
			"alerts":[{"severity":"critical","country":"DE","message":"Sunday HGV ban"}],
			"holidays":["2025-11-09"]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	date := time.Date(2025, 11, 9, 0, 0, 0, 0, time.UTC)
	got, err := client.Lookup(context.Background(), []string{"DE", "AT"}, date, "trailer")

	require.NoError(t, err)
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, model.SeverityCritical, got.Alerts[0].Severity)
	assert.Equal(t, []string{"2025-11-09"}, got.Holidays)
}

func TestLookup_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "",
		WithRetry(resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond}))
	_, err := client.Lookup(context.Background(), []string{"DE"}, time.Now(), "van")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

type stubCalendar struct{ res *Result }

func (s stubCalendar) Lookup(context.Context, []string, time.Time, string) (*Result, error) {
	return s.res, nil
}

func TestAdapter(t *testing.T) {
	t.Parallel()

	alerts := []model.Alert{{Severity: model.SeverityWarning, Country: "FR", Message: "obras"}}
	holidays := []string{"2026-07-14"}
	a := NewAdapter(stubCalendar{res: &Result{Alerts: alerts, Holidays: holidays}})

	got, gotHolidays, err := a.Alerts(context.Background(), []string{"FR"}, time.Now(), model.VehicleSpec{Type: "van"})
	require.NoError(t, err)
	assert.Equal(t, alerts, got)
	assert.Equal(t, holidays, gotHolidays)
}
