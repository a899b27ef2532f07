package domain

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReading(zip string, ph, turb, do2, nitrate float64) Reading {
	return Reading{
		Zipcode:         zip,
		Date:            time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC),
		PH:              ph,
		Turbidity:       turb,
		DissolvedOxygen: do2,
		Nitrate:         nitrate,
	}
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
	assert.Empty(t, Summarize([]Reading{}))
}

func TestSummarize_SingleZipMean(t *testing.T) {
	readings := []Reading{
		testReading("95110", 7.0, 1.0, 8.0, 1.0),
		testReading("95110", 8.0, 3.0, 10.0, 2.0),
	}

	summaries := Summarize(readings)
	require.Len(t, summaries, 1)

	got := summaries[0]
	want := ZipSummary{
		Zipcode:             "95110",
		MeanPH:              7.5,
		MeanTurbidity:       2.0,
		MeanDissolvedOxygen: 9.0,
		MeanNitrate:         1.5,
		Readings:            2,
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(ZipSummary{}, "Samples")); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, got.Samples[ParamPH])
}

func TestSummarize_GroupsSortedByZip(t *testing.T) {
	readings := []Reading{
		testReading("95120", 7.0, 1.0, 8.0, 1.0),
		testReading("95110", 7.0, 1.0, 8.0, 1.0),
		testReading("95113", 7.0, 1.0, 8.0, 1.0),
		testReading("95110", 7.0, 1.0, 8.0, 1.0),
	}

	summaries := Summarize(readings)
	require.Len(t, summaries, 3)
	assert.Equal(t, "95110", summaries[0].Zipcode)
	assert.Equal(t, "95113", summaries[1].Zipcode)
	assert.Equal(t, "95120", summaries[2].Zipcode)
	assert.Equal(t, 2, summaries[0].Readings)
}

func TestSummarize_NaNFieldExcludedFromMean(t *testing.T) {
	corrupted := testReading("95110", math.NaN(), 2.0, 8.0, 1.0)
	readings := []Reading{
		testReading("95110", 7.0, 4.0, 8.0, 1.0),
		corrupted,
	}

	summaries := Summarize(readings)
	require.Len(t, summaries, 1)

	// pH mean uses only the one parseable value; turbidity uses both.
	assert.Equal(t, 7.0, summaries[0].MeanPH)
	assert.Equal(t, 3.0, summaries[0].MeanTurbidity)
	assert.Equal(t, 1, summaries[0].Samples[ParamPH])
	assert.Equal(t, 2, summaries[0].Samples[ParamTurbidity])
}

func TestSummarize_AllNaNFieldYieldsNaNMean(t *testing.T) {
	readings := []Reading{
		testReading("95110", math.NaN(), 1.0, 8.0, 1.0),
	}

	summaries := Summarize(readings)
	require.Len(t, summaries, 1)
	assert.True(t, math.IsNaN(summaries[0].MeanPH))
	assert.Equal(t, 0, summaries[0].Samples[ParamPH])
}

func TestClassify(t *testing.T) {
	t.Run("turbidity over range is Alert and overall unsafe", func(t *testing.T) {
		s := ZipSummary{
			Zipcode:             "95110",
			MeanPH:              7.0,
			MeanTurbidity:       6.0,
			MeanDissolvedOxygen: 8.0,
			MeanNitrate:         1.0,
		}

		verdicts := Classify(s)
		assert.Equal(t, VerdictAlert, verdicts[ParamTurbidity])
		assert.Equal(t, VerdictSafe, verdicts[ParamPH])
		assert.Equal(t, VerdictSafe, verdicts[ParamDissolvedOxygen])
		assert.Equal(t, VerdictSafe, verdicts[ParamNitrate])
		assert.False(t, s.OverallSafe())
	})

	t.Run("all means in range is overall safe", func(t *testing.T) {
		s := ZipSummary{MeanPH: 7.5, MeanTurbidity: 2.5, MeanDissolvedOxygen: 9.5, MeanNitrate: 5.0}
		for param, verdict := range Classify(s) {
			assert.Equal(t, VerdictSafe, verdict, param)
		}
		assert.True(t, s.OverallSafe())
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		s := ZipSummary{MeanPH: 6.5, MeanTurbidity: 5.0, MeanDissolvedOxygen: 14.0, MeanNitrate: 0.0}
		assert.True(t, s.OverallSafe())
	})

	t.Run("NaN mean is Alert", func(t *testing.T) {
		s := ZipSummary{MeanPH: math.NaN(), MeanTurbidity: 2.5, MeanDissolvedOxygen: 9.5, MeanNitrate: 5.0}
		assert.Equal(t, VerdictAlert, Classify(s)[ParamPH])
		assert.False(t, s.OverallSafe())
	})
}

func TestExceedances(t *testing.T) {
	readings := []Reading{
		testReading("95110", 7.0, 1.0, 8.0, 1.0),
		testReading("95112", 9.2, 7.5, 8.0, 1.0),
		testReading("95113", 7.0, math.NaN(), 8.0, 12.0),
	}

	out := Exceedances(readings)

	require.Len(t, out[ParamPH], 1)
	assert.Equal(t, "95112", out[ParamPH][0].Reading.Zipcode)
	assert.Equal(t, 9.2, out[ParamPH][0].Value)

	// NaN turbidity is missing data, not a violation.
	require.Len(t, out[ParamTurbidity], 1)
	assert.Equal(t, "95112", out[ParamTurbidity][0].Reading.Zipcode)

	assert.Empty(t, out[ParamDissolvedOxygen])

	require.Len(t, out[ParamNitrate], 1)
	assert.Equal(t, "95113", out[ParamNitrate][0].Reading.Zipcode)
}
