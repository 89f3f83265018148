// Package restrictions provides a client for the freight driving
// restriction and holiday calendar service.
package restrictions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/stock-logistic/quoting-cli/internal/model"
	"github.com/stock-logistic/quoting-cli/internal/pricing"
	"github.com/stock-logistic/quoting-cli/internal/resilience"
)

// Result is the calendar lookup response.
type Result struct {
	Alerts   []model.Alert `json:"alerts"`
	Holidays []string      `json:"holidays"`
}

// Client defines the restriction-calendar operations.
type Client interface {
	// Lookup returns driving alerts and public holidays for the given
	// countries on a date.
	Lookup(ctx context.Context, countries []string, date time.Time, vehicleType string) (*Result, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRetry overrides the default retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) { c.retry = cfg }
}

type httpClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a restriction-calendar client against baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		retry:   resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("restrictions", "lookup")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Lookup(ctx context.Context, countries []string, date time.Time, vehicleType string) (*Result, error) {
	q := url.Values{}
	q.Set("countries", strings.Join(countries, ","))
	q.Set("date", date.Format("2006-01-02"))
	q.Set("vehicle", vehicleType)
	reqURL := fmt.Sprintf("%s/v1/restrictions?%s", c.baseURL, q.Encode())

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "restrictions: create request")
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "restrictions: read response body")
		}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(
				eris.Errorf("restrictions: status %d: %s", resp.StatusCode, string(body)),
				resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("restrictions: unexpected status %d: %s", resp.StatusCode, string(body))
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "restrictions: unmarshal response")
	}
	return &result, nil
}

// Adapter exposes the client as the pricing engine's restriction
// collaborator.
type Adapter struct {
	client Client
}

// NewAdapter wraps a client for the pricing engine.
func NewAdapter(client Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Alerts(ctx context.Context, countries []string, date time.Time, vehicle model.VehicleSpec) ([]model.Alert, []string, error) {
	res, err := a.client.Lookup(ctx, countries, date, vehicle.Type)
	if err != nil {
		return nil, nil, err
	}
	return res.Alerts, res.Holidays, nil
}

var _ pricing.RestrictionService = (*Adapter)(nil)
