package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-chantiers/internal/config"
)

const parisFeature = `{"type":"FeatureCollection","features":[{"type":"Feature",
"geometry":{"type":"Point","coordinates":[2.347,48.859]},"properties":{"label":"8 Boulevard du Palais 75001 Paris"}}]}`

func server(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.GeocodingConfig{URL: srv.URL + "/search/", Timeout: 200 * time.Millisecond})
}

func TestGeocode(t *testing.T) {
	var gotQuery, gotLimit string
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(parisFeature))
	})

	p, err := c.Geocode(context.Background(), "8 bd du Palais, Paris")
	require.NoError(t, err)
	assert.Equal(t, "8 bd du Palais, Paris", gotQuery)
	assert.Equal(t, "1", gotLimit)
	assert.InDelta(t, 48.859, p.Latitude, 1e-9)
	assert.InDelta(t, 2.347, p.Longitude, 1e-9)
}

func TestGeocodeFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		noMatch bool
	}{
		{"empty collection", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
		}, true},
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}, false},
		{"not json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>maintenance</html>`))
		}, false},
		{"timeout", func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(500 * time.Millisecond)
			_, _ = w.Write([]byte(parisFeature))
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server(t, tt.handler)
			p, err := c.Geocode(context.Background(), "nulle part")
			assert.Nil(t, p)
			require.Error(t, err)
			if tt.noMatch {
				assert.ErrorIs(t, err, ErrNoResult)
			}
			assert.Nil(t, Lookup(context.Background(), c, "nulle part"))
		})
	}
}

func TestLookupSkipsBlankAddress(t *testing.T) {
	var calls atomic.Int32
	c := server(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(parisFeature))
	})
	assert.Nil(t, Lookup(context.Background(), c, "   "))
	assert.Nil(t, Lookup(context.Background(), nil, "Paris"))
	assert.Equal(t, int32(0), calls.Load())

	p := Lookup(context.Background(), c, "Paris")
	require.NotNil(t, p)
	assert.Equal(t, int32(1), calls.Load())
}
