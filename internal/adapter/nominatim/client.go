// Package nominatim implements domain.Geocoder against the OpenStreetMap
// Nominatim reverse-geocoding API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/creekwatch/water-quality-service/internal/observability"
)

// Client queries the Nominatim /reverse endpoint for a coordinate's postal
// code. One best-effort attempt per call: no retries and no caching, the
// caller falls back to the local known-location table on failure.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim reverse-geocoding client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// ReverseGeocode converts coordinates to a postal code. Returns an empty
// string with a nil error when the service has no postal code for the
// location.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{
		"format":         {"json"},
		"lat":            {fmt.Sprintf("%.6f", lat)},
		"lon":            {fmt.Sprintf("%.6f", lon)},
		"zoom":           {"10"},
		"addressdetails": {"1"},
	}
	fullURL := c.baseURL + "/reverse?" + params.Encode()

	start := time.Now()
	postcode, err := c.doRequest(ctx, fullURL)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	case postcode == "":
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return postcode, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	// Nominatim usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "water-quality-service/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var nomResp response
	if err := json.NewDecoder(resp.Body).Decode(&nomResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return nomResp.Address.Postcode, nil
}

// Nominatim API response types. Only the postal code is consumed.

type response struct {
	Address address `json:"address"`
}

type address struct {
	Postcode string `json:"postcode"`
}
