// Package openroute provides a client for the OpenRouteService geocoding
// and directions API.
package openroute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/stock-logistic/quoting-cli/internal/resilience"
)

// Coordinate is a WGS84 longitude/latitude pair, in ORS order.
type Coordinate [2]float64

// Route is a resolved driving route.
type Route struct {
	DistanceKm float64
	DurationH  float64
	// Geometry is an encoded polyline (precision 5).
	Geometry string
}

// Client defines the OpenRouteService operations used by the quoter.
type Client interface {
	// Geocode resolves a city name to coordinates.
	Geocode(ctx context.Context, place string) (Coordinate, error)
	// Directions computes a heavy-goods driving route between two points.
	Directions(ctx context.Context, from, to Coordinate) (*Route, error)
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

// NewClient creates an OpenRouteService client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		http: &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(2), 4),
		retry:   resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("openroute", "request")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates Coordinate `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func (c *httpClient) Geocode(ctx context.Context, place string) (Coordinate, error) {
	reqURL := fmt.Sprintf("%s/geocode/search?text=%s&size=1", c.baseURL, url.QueryEscape(place))

	body, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Coordinate{}, eris.Wrapf(err, "openroute: geocode %s", place)
	}

	var result geocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return Coordinate{}, eris.Wrap(err, "openroute: unmarshal geocode response")
	}
	if len(result.Features) == 0 {
		return Coordinate{}, eris.Errorf("openroute: no geocode result for %q", place)
	}
	return result.Features[0].Geometry.Coordinates, nil
}

type directionsRequest struct {
	Coordinates []Coordinate `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"` // meters
			Duration float64 `json:"duration"` // seconds
		} `json:"summary"`
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

func (c *httpClient) Directions(ctx context.Context, from, to Coordinate) (*Route, error) {
	payload, err := json.Marshal(directionsRequest{Coordinates: []Coordinate{from, to}})
	if err != nil {
		return nil, eris.Wrap(err, "openroute: marshal directions request")
	}

	reqURL := c.baseURL + "/v2/directions/driving-hgv"
	body, err := c.do(ctx, http.MethodPost, reqURL, payload)
	if err != nil {
		return nil, eris.Wrap(err, "openroute: directions")
	}

	var result directionsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "openroute: unmarshal directions response")
	}
	if len(result.Routes) == 0 {
		return nil, eris.New("openroute: no route found")
	}

	r := result.Routes[0]
	return &Route{
		DistanceKm: r.Summary.Distance / 1000,
		DurationH:  r.Summary.Duration / 3600,
		Geometry:   r.Geometry,
	}, nil
}

func (c *httpClient) do(ctx context.Context, method, reqURL string, payload []byte) ([]byte, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, eris.Wrap(err, "openroute: create request")
		}
		req.Header.Set("Authorization", c.apiKey)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "openroute: read response body")
		}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(
				eris.Errorf("openroute: status %d: %s", resp.StatusCode, string(body)),
				resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("openroute: unexpected status %d: %s", resp.StatusCode, string(body))
		}
		return body, nil
	})
}
