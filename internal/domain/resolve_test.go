package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubGeocoder struct {
	postcode string
	err      error
	calls    int
}

func (g *stubGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (string, error) {
	g.calls++
	return g.postcode, g.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveZip_GeocoderSuccess(t *testing.T) {
	geo := &stubGeocoder{postcode: "95112"}

	zip, source := ResolveZip(context.Background(), 37.3535, -121.8865, geo, discardLogger())

	assert.Equal(t, "95112", zip)
	assert.Equal(t, ZipSourceGeocoder, source)
	assert.Equal(t, 1, geo.calls)
}

func TestResolveZip_FallbackPaths(t *testing.T) {
	tests := []struct {
		name string
		geo  Geocoder
	}{
		{"nil geocoder", nil},
		{"geocoder error", &stubGeocoder{err: errors.New("connection refused")}},
		{"empty postcode", &stubGeocoder{postcode: ""}},
		{"malformed postcode", &stubGeocoder{postcode: "SW1A 1AA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Near the 95110 centroid; fallback must pick it.
			zip, source := ResolveZip(context.Background(), 37.3422, -121.8996, tt.geo, discardLogger())
			assert.Equal(t, "95110", zip)
			assert.Equal(t, ZipSourceNearest, source)
		})
	}
}

func TestNearestKnown(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     string
	}{
		{"exact 95110 centroid", 37.3422, -121.8996, "95110"},
		{"exact 95120 centroid", 37.2060, -121.8133, "95120"},
		{"near 95118", 37.2500, -121.8900, "95118"},
		{"far away still resolves", 40.7128, -74.0060, "95116"},
		{"southern hemisphere still resolves", -33.8688, 151.2093, "95117"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NearestKnown(tt.lat, tt.lon))
		})
	}
}

func TestNearestKnown_Deterministic(t *testing.T) {
	// Far from every known location, twice.
	first := NearestKnown(0, 0)
	second := NearestKnown(0, 0)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestHaversineKm(t *testing.T) {
	// San Jose to Los Angeles is roughly 492 km great-circle.
	d := haversineKm(37.3382, -121.8863, 34.0522, -118.2437)
	assert.InDelta(t, 492, d, 10)

	assert.Equal(t, 0.0, haversineKm(37.3382, -121.8863, 37.3382, -121.8863))
}
