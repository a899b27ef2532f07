package domain

import (
	"math"
	"regexp"
	"time"
)

// DateLayout is the wire and storage format for measurement dates.
const DateLayout = "2006-01-02"

// Parameter names, used as map keys, metric labels, and in warning texts.
const (
	ParamPH              = "pH"
	ParamTurbidity       = "Turbidity"
	ParamDissolvedOxygen = "Dissolved Oxygen"
	ParamNitrate         = "Nitrate"
)

// Parameters lists the four measured parameters in canonical order.
var Parameters = []string{ParamPH, ParamTurbidity, ParamDissolvedOxygen, ParamNitrate}

// Reading is one submitted water-quality measurement. Fields that could not
// be parsed from the backing store are NaN, never zero, so that a corrupted
// cell is distinguishable from a measured zero.
type Reading struct {
	Zipcode         string
	Date            time.Time
	PH              float64
	Turbidity       float64
	DissolvedOxygen float64
	Nitrate         float64
}

// Value returns the reading's value for the named parameter.
// Unknown parameter names return NaN.
func (r Reading) Value(param string) float64 {
	switch param {
	case ParamPH:
		return r.PH
	case ParamTurbidity:
		return r.Turbidity
	case ParamDissolvedOxygen:
		return r.DissolvedOxygen
	case ParamNitrate:
		return r.Nitrate
	default:
		return math.NaN()
	}
}

// SafeRange is the inclusive [Low, High] interval considered healthy for a
// parameter, plus the unit used in warning texts.
type SafeRange struct {
	Parameter string
	Low       float64
	High      float64
	Unit      string
}

// Contains reports whether v lies inside the range, bounds inclusive.
// NaN is never inside any range.
func (sr SafeRange) Contains(v float64) bool {
	return v >= sr.Low && v <= sr.High
}

// SafeRanges is the fixed safe-range table in canonical parameter order.
// Read-only after process start.
var SafeRanges = []SafeRange{
	{Parameter: ParamPH, Low: 6.5, High: 8.5},
	{Parameter: ParamTurbidity, Low: 0, High: 5, Unit: "NTU"},
	{Parameter: ParamDissolvedOxygen, Low: 5, High: 14, Unit: "mg/L"},
	{Parameter: ParamNitrate, Low: 0, High: 10, Unit: "mg/L"},
}

// RangeFor returns the safe range for the named parameter.
func RangeFor(param string) (SafeRange, bool) {
	for _, sr := range SafeRanges {
		if sr.Parameter == param {
			return sr, true
		}
	}
	return SafeRange{}, false
}

// KnownLocation is a zip-code centroid used as the geocoding fallback and as
// a map marker anchor.
type KnownLocation struct {
	Zipcode string
	Lat     float64
	Lon     float64
}

// KnownLocations is the fixed fallback table of San Jose zip-code centroids.
// Iteration order matters: nearest-neighbor ties break to the earlier entry.
var KnownLocations = []KnownLocation{
	{Zipcode: "95110", Lat: 37.3422, Lon: -121.8996},
	{Zipcode: "95112", Lat: 37.3535, Lon: -121.8865},
	{Zipcode: "95113", Lat: 37.3333, Lon: -121.8907},
	{Zipcode: "95116", Lat: 37.3496, Lon: -121.8569},
	{Zipcode: "95117", Lat: 37.3126, Lon: -121.9502},
	{Zipcode: "95118", Lat: 37.2505, Lon: -121.8891},
	{Zipcode: "95120", Lat: 37.2060, Lon: -121.8133},
}

var zipcodeRe = regexp.MustCompile(`^\d{5}$`)

// ValidZipcode reports whether s is a well-formed five-digit zip code.
// Real-world existence is not checked beyond the known-location table.
func ValidZipcode(s string) bool {
	return zipcodeRe.MatchString(s)
}
