// Package tollguru provides a client for the TollGuru toll-calculation
// API.
package tollguru

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/stock-logistic/quoting-cli/internal/model"
	"github.com/stock-logistic/quoting-cli/internal/pricing"
	"github.com/stock-logistic/quoting-cli/internal/resilience"
)

// Client defines the TollGuru operations used by the quoter.
type Client interface {
	// Calculate prices the tolls along an encoded polyline for a vehicle
	// class.
	Calculate(ctx context.Context, polyline, vehicleType string) (float64, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithRetry overrides the default retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) { c.retry = cfg }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a TollGuru client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://apis.tollguru.com",
		http: &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(1), 2),
		retry:   resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("tollguru", "calc")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type calcRequest struct {
	Source      string `json:"source"`
	Polyline    string `json:"polyline"`
	VehicleType string `json:"vehicleType"`
	Currency    string `json:"currency"`
}

type calcResponse struct {
	Route struct {
		Costs struct {
			Tag  *float64 `json:"tag"`
			Cash *float64 `json:"cash"`
		} `json:"costs"`
	} `json:"route"`
}

func (c *httpClient) Calculate(ctx context.Context, polyline, vehicleType string) (float64, error) {
	payload, err := json.Marshal(calcRequest{
		Source:      "here",
		Polyline:    polyline,
		VehicleType: vehicleType,
		Currency:    "EUR",
	})
	if err != nil {
		return 0, eris.Wrap(err, "tollguru: marshal request")
	}

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/toll/v2/complete-polyline-from-mapping-service", bytes.NewReader(payload))
		if err != nil {
			return nil, eris.Wrap(err, "tollguru: create request")
		}
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "tollguru: read response body")
		}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(
				eris.Errorf("tollguru: status %d: %s", resp.StatusCode, string(body)),
				resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("tollguru: unexpected status %d: %s", resp.StatusCode, string(body))
		}
		return body, nil
	})
	if err != nil {
		return 0, err
	}

	var result calcResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, eris.Wrap(err, "tollguru: unmarshal response")
	}

	// Tag pricing when available, cash otherwise.
	switch {
	case result.Route.Costs.Tag != nil:
		return *result.Route.Costs.Tag, nil
	case result.Route.Costs.Cash != nil:
		return *result.Route.Costs.Cash, nil
	}
	return 0, eris.New("tollguru: response carries no toll cost")
}

// vehicleTypes maps vehicle classes to TollGuru vehicle type identifiers.
var vehicleTypes = map[string]string{
	"van":     "2AxlesTruck",
	"rigid":   "3AxlesTruck",
	"trailer": "5AxlesTruck",
}

// Adapter exposes the client as the pricing engine's toll collaborator.
type Adapter struct {
	client Client
}

// NewAdapter wraps a client for the pricing engine.
func NewAdapter(client Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Tolls(ctx context.Context, geometry string, vehicle model.VehicleSpec) (float64, error) {
	vt, ok := vehicleTypes[vehicle.Type]
	if !ok {
		vt = vehicleTypes["trailer"]
	}
	return a.client.Calculate(ctx, geometry, vt)
}

var _ pricing.TollService = (*Adapter)(nil)
