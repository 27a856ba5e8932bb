// Package geocode resolves postal addresses to coordinates through the
// api-adresse.data.gouv.fr search API.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/diewo77/go-chantiers/internal/config"
	"github.com/diewo77/go-chantiers/internal/logging"
	"github.com/diewo77/go-chantiers/internal/metrics"
)

// ErrNoResult is returned when the API knows no match for the address.
var ErrNoResult = errors.New("geocode: no result")

// Point is a WGS84 position.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves an address.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Point, error)
}

// Client calls the address search API. The response is GeoJSON; the first feature
// carries [longitude, latitude].
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client from configuration.
func New(cfg config.GeocodingConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &Client{baseURL: cfg.URL, http: &http.Client{Timeout: timeout}}
}

func (c *Client) Geocode(ctx context.Context, address string) (*Point, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoResult
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("geocode: base url: %w", err)
	}
	q := u.Query()
	q.Set("q", address)
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("geocode: read body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("geocode: invalid json")
	}
	coords := gjson.GetBytes(body, "features.0.geometry.coordinates").Array()
	if len(coords) < 2 || coords[0].Type != gjson.Number || coords[1].Type != gjson.Number {
		return nil, ErrNoResult
	}
	return &Point{Longitude: coords[0].Float(), Latitude: coords[1].Float()}, nil
}

// Lookup is the best-effort form used by the site workflows: any failure is
// logged and yields nil so the caller stores null coordinates.
func Lookup(ctx context.Context, g Geocoder, address string) *Point {
	if g == nil || strings.TrimSpace(address) == "" {
		return nil
	}
	p, err := g.Geocode(ctx, address)
	switch {
	case err == nil:
		metrics.Geocode("ok")
		return p
	case errors.Is(err, ErrNoResult):
		metrics.Geocode("empty")
	default:
		metrics.Geocode("error")
		logging.FromContext(ctx).WithError(err).WithField("address", address).Warn("geocoding failed")
	}
	return nil
}
