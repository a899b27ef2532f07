package domain

import (
	"context"
	"log/slog"
	"math"
)

// Geocoder resolves a coordinate to a postal code via an external service.
type Geocoder interface {
	// ReverseGeocode converts coordinates to a postal code string.
	// An empty string with a nil error means the service had no postal
	// code for the location.
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// Zip resolution sources, reported alongside the resolved code.
const (
	ZipSourceGeocoder = "geocoder"
	ZipSourceNearest  = "nearest"
)

// ResolveZip turns a coordinate into a zip code. It makes a single
// best-effort call to the geocoder and falls back to NearestKnown on any
// failure, empty result, or malformed postal code, so it never returns an
// empty zip. A nil geocoder skips straight to the fallback.
func ResolveZip(ctx context.Context, lat, lon float64, geocoder Geocoder, logger *slog.Logger) (zip, source string) {
	if geocoder != nil {
		postcode, err := geocoder.ReverseGeocode(ctx, lat, lon)
		if err != nil {
			logger.Warn("reverse geocoding failed, using nearest known location",
				"lat", lat,
				"lon", lon,
				"error", err,
			)
		} else if ValidZipcode(postcode) {
			return postcode, ZipSourceGeocoder
		}
	}
	return NearestKnown(lat, lon), ZipSourceNearest
}

// NearestKnown returns the zip code of the known location closest to the
// coordinate by great-circle distance. Ties break to the earlier table entry,
// so the result is deterministic. The table is non-empty, so this never
// returns an empty string.
func NearestKnown(lat, lon float64) string {
	best := KnownLocations[0].Zipcode
	bestDist := math.Inf(1)
	for _, loc := range KnownLocations {
		d := haversineKm(lat, lon, loc.Lat, loc.Lon)
		if d < bestDist {
			bestDist = d
			best = loc.Zipcode
		}
	}
	return best
}

const earthRadiusKm = 6371.0

// haversineKm computes the great-circle distance between two WGS-84
// coordinates in kilometers. Spherical-earth approximation; at metro scale
// the error against a true geodesic is far below inter-zip spacing.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
