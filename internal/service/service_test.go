package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creekwatch/water-quality-service/internal/domain"
	"github.com/creekwatch/water-quality-service/internal/observability"
	"github.com/creekwatch/water-quality-service/internal/service"
	"github.com/creekwatch/water-quality-service/internal/store"
)

type stubGeocoder struct {
	postcode string
	err      error
}

func (g *stubGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (string, error) {
	return g.postcode, g.err
}

type failingStore struct {
	store.Store
}

func (f *failingStore) Append(_ context.Context, _ domain.Reading) error {
	return errors.New("disk full")
}

func (f *failingStore) LoadAll(_ context.Context) ([]domain.Reading, error) {
	return nil, errors.New("permission denied")
}

func newService(t *testing.T, geocoder domain.Geocoder, strict bool) (*service.Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.New(st, geocoder, strict, logger, observability.NewMetricsForTesting()), st
}

func inRangeSubmission(zip string) service.Submission {
	return service.Submission{
		Zipcode:         zip,
		Date:            time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC),
		PH:              7.0,
		Turbidity:       1.0,
		DissolvedOxygen: 8.0,
		Nitrate:         1.0,
	}
}

func TestSubmit_StoresReading(t *testing.T) {
	svc, st := newService(t, nil, false)

	result, err := svc.Submit(context.Background(), inRangeSubmission("95110"))
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "submitted", result.ZipSource)
	assert.Equal(t, "95110", result.Reading.Zipcode)

	readings, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, result.Reading, readings[0])
}

func TestSubmit_OutOfRangeStoredWithWarnings(t *testing.T) {
	svc, st := newService(t, nil, false)

	sub := inRangeSubmission("95110")
	sub.Turbidity = 9.0

	result, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Turbidity")

	readings, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, readings, 1)
}

func TestSubmit_StrictModeBlocksWarnings(t *testing.T) {
	svc, st := newService(t, nil, true)

	sub := inRangeSubmission("95110")
	sub.PH = 9.5

	_, err := svc.Submit(context.Background(), sub)
	require.Error(t, err)

	var blocked *service.ErrBlockedByWarnings
	require.True(t, errors.As(err, &blocked))
	assert.Len(t, blocked.Warnings, 1)

	readings, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestSubmit_InvalidZipRejected(t *testing.T) {
	svc, st := newService(t, nil, false)

	for _, zip := range []string{"", "9511", "95a10"} {
		_, err := svc.Submit(context.Background(), inRangeSubmission(zip))
		require.Error(t, err, "zip %q", zip)
		assert.True(t, errors.Is(err, service.ErrInvalidZipcode))
	}

	readings, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestSubmit_ResolvesZipFromCoordinates(t *testing.T) {
	svc, _ := newService(t, &stubGeocoder{postcode: "95112"}, false)

	lat, lon := 37.3535, -121.8865
	sub := inRangeSubmission("")
	sub.Lat, sub.Lon = &lat, &lon

	result, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "95112", result.Reading.Zipcode)
	assert.Equal(t, domain.ZipSourceGeocoder, result.ZipSource)
}

func TestSubmit_GeocoderFailureFallsBack(t *testing.T) {
	svc, _ := newService(t, &stubGeocoder{err: errors.New("timeout")}, false)

	lat, lon := 37.3422, -121.8996
	sub := inRangeSubmission("")
	sub.Lat, sub.Lon = &lat, &lon

	result, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "95110", result.Reading.Zipcode)
	assert.Equal(t, domain.ZipSourceNearest, result.ZipSource)
}

func TestSubmit_DefaultsDateToToday(t *testing.T) {
	fixed := time.Date(2024, 11, 10, 15, 30, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	defer domain.SetClock(nil)

	svc, _ := newService(t, nil, false)
	sub := inRangeSubmission("95110")
	sub.Date = time.Time{}

	result, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC), result.Reading.Date)
}

func TestSubmit_StoreFailureIsTerminal(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(&failingStore{}, nil, false, logger, observability.NewMetricsForTesting())

	_, err := svc.Submit(context.Background(), inRangeSubmission("95110"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestReadings_Limit(t *testing.T) {
	svc, _ := newService(t, nil, false)
	ctx := context.Background()

	for _, zip := range []string{"95110", "95112", "95113"} {
		_, err := svc.Submit(ctx, inRangeSubmission(zip))
		require.NoError(t, err)
	}

	all, err := svc.Readings(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	last2, err := svc.Readings(ctx, 2)
	require.NoError(t, err)
	require.Len(t, last2, 2)
	assert.Equal(t, "95112", last2[0].Zipcode)
	assert.Equal(t, "95113", last2[1].Zipcode)
}

func TestDelete_OutOfRange(t *testing.T) {
	svc, _ := newService(t, nil, false)
	err := svc.Delete(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrIndexOutOfRange))
}

func TestSummaries(t *testing.T) {
	svc, _ := newService(t, nil, false)
	ctx := context.Background()

	sub := inRangeSubmission("95110")
	sub.PH = 7.0
	_, err := svc.Submit(ctx, sub)
	require.NoError(t, err)

	sub.PH = 8.0
	_, err = svc.Submit(ctx, sub)
	require.NoError(t, err)

	unsafe := inRangeSubmission("95120")
	unsafe.Turbidity = 8.0
	_, err = svc.Submit(ctx, unsafe)
	require.NoError(t, err)

	summaries, err := svc.Summaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "95110", summaries[0].Zipcode)
	assert.Equal(t, 7.5, summaries[0].MeanPH)
	assert.True(t, summaries[0].AllSafe)

	assert.Equal(t, "95120", summaries[1].Zipcode)
	assert.Equal(t, domain.VerdictAlert, summaries[1].Verdicts[domain.ParamTurbidity])
	assert.False(t, summaries[1].AllSafe)
}

func TestSummaries_EmptyStore(t *testing.T) {
	svc, _ := newService(t, nil, false)
	summaries, err := svc.Summaries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestMarkers(t *testing.T) {
	svc, _ := newService(t, nil, false)
	ctx := context.Background()

	unsafe := inRangeSubmission("95120")
	unsafe.Turbidity = 8.0
	_, err := svc.Submit(ctx, unsafe)
	require.NoError(t, err)

	markers, err := svc.Markers(ctx)
	require.NoError(t, err)
	require.Len(t, markers, len(domain.KnownLocations))

	byZip := map[string]service.Marker{}
	for _, m := range markers {
		byZip[m.Zipcode] = m
	}

	// Zip with turbid readings goes red; zips without data stay green.
	assert.False(t, byZip["95120"].Safe)
	require.NotNil(t, byZip["95120"].Summary)
	assert.True(t, byZip["95110"].Safe)
	assert.Nil(t, byZip["95110"].Summary)
}

func TestCheckReadiness(t *testing.T) {
	svc, _ := newService(t, nil, false)
	assert.NoError(t, svc.CheckReadiness(context.Background()))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bad := service.New(&failingStore{}, nil, false, logger, observability.NewMetricsForTesting())
	require.Error(t, bad.CheckReadiness(context.Background()))
}
