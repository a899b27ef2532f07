package domain

import (
	"math"
	"sort"
)

// Verdict classifies a mean value against its safe range.
type Verdict string

const (
	VerdictSafe  Verdict = "Safe"
	VerdictAlert Verdict = "Alert"
)

// ZipSummary is the derived per-zip mean of each parameter across all of the
// zip's readings. Means are NaN when no reading in the group carried a
// parseable value for that parameter; Samples records how many did.
type ZipSummary struct {
	Zipcode             string
	MeanPH              float64
	MeanTurbidity       float64
	MeanDissolvedOxygen float64
	MeanNitrate         float64
	Readings            int
	Samples             map[string]int
}

// Mean returns the summary's mean for the named parameter.
func (s ZipSummary) Mean(param string) float64 {
	switch param {
	case ParamPH:
		return s.MeanPH
	case ParamTurbidity:
		return s.MeanTurbidity
	case ParamDissolvedOxygen:
		return s.MeanDissolvedOxygen
	case ParamNitrate:
		return s.MeanNitrate
	default:
		return math.NaN()
	}
}

// OverallSafe reports whether every parameter's mean classifies as Safe.
func (s ZipSummary) OverallSafe() bool {
	for _, verdict := range Classify(s) {
		if verdict != VerdictSafe {
			return false
		}
	}
	return true
}

// Summarize groups readings by zip code and computes per-parameter arithmetic
// means, one summary per distinct zip in ascending zip order. NaN values are
// excluded from their field's mean without affecting the other fields. An
// empty or nil input yields an empty slice.
func Summarize(readings []Reading) []ZipSummary {
	type acc struct {
		sum   map[string]float64
		count map[string]int
		rows  int
	}

	groups := map[string]*acc{}
	for _, r := range readings {
		a, ok := groups[r.Zipcode]
		if !ok {
			a = &acc{sum: map[string]float64{}, count: map[string]int{}}
			groups[r.Zipcode] = a
		}
		a.rows++
		for _, param := range Parameters {
			v := r.Value(param)
			if math.IsNaN(v) {
				continue
			}
			a.sum[param] += v
			a.count[param]++
		}
	}

	zips := make([]string, 0, len(groups))
	for zip := range groups {
		zips = append(zips, zip)
	}
	sort.Strings(zips)

	summaries := make([]ZipSummary, 0, len(zips))
	for _, zip := range zips {
		a := groups[zip]
		s := ZipSummary{
			Zipcode:             zip,
			MeanPH:              meanOf(a.sum, a.count, ParamPH),
			MeanTurbidity:       meanOf(a.sum, a.count, ParamTurbidity),
			MeanDissolvedOxygen: meanOf(a.sum, a.count, ParamDissolvedOxygen),
			MeanNitrate:         meanOf(a.sum, a.count, ParamNitrate),
			Readings:            a.rows,
			Samples:             a.count,
		}
		summaries = append(summaries, s)
	}
	return summaries
}

func meanOf(sum map[string]float64, count map[string]int, param string) float64 {
	n := count[param]
	if n == 0 {
		return math.NaN()
	}
	return sum[param] / float64(n)
}

// Classify maps each parameter of a summary to a Safe/Alert verdict using the
// same inclusive safe ranges as Validate. A NaN mean classifies as Alert
// because it cannot be shown to be in range.
func Classify(s ZipSummary) map[string]Verdict {
	verdicts := make(map[string]Verdict, len(Parameters))
	for _, sr := range SafeRanges {
		if sr.Contains(s.Mean(sr.Parameter)) {
			verdicts[sr.Parameter] = VerdictSafe
		} else {
			verdicts[sr.Parameter] = VerdictAlert
		}
	}
	return verdicts
}

// Exceedance is one reading whose value for a parameter falls outside the
// safe range, as listed on the alerts page.
type Exceedance struct {
	Reading Reading
	Value   float64
}

// Exceedances returns, per parameter in canonical order, the readings whose
// value for that parameter lies outside its safe range. NaN values are
// skipped: an unparseable cell is missing data, not a measured violation.
func Exceedances(readings []Reading) map[string][]Exceedance {
	out := make(map[string][]Exceedance, len(Parameters))
	for _, sr := range SafeRanges {
		var hits []Exceedance
		for _, r := range readings {
			v := r.Value(sr.Parameter)
			if math.IsNaN(v) || sr.Contains(v) {
				continue
			}
			hits = append(hits, Exceedance{Reading: r, Value: v})
		}
		out[sr.Parameter] = hits
	}
	return out
}
