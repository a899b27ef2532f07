// Package service orchestrates the reading pipeline: coordinate resolution,
// safe-range validation, persistence, and on-demand aggregation. Handlers
// call in with parsed primitives and get plain data structures back; all
// rendering stays out of this package.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/creekwatch/water-quality-service/internal/domain"
	"github.com/creekwatch/water-quality-service/internal/observability"
	"github.com/creekwatch/water-quality-service/internal/store"
)

// ErrInvalidZipcode reports a submission whose zip code is missing or not a
// five-digit string. Such readings are never stored.
var ErrInvalidZipcode = errors.New("invalid zip code")

// ErrBlockedByWarnings reports a submission rejected under strict validation.
type ErrBlockedByWarnings struct {
	Warnings []string
}

func (e *ErrBlockedByWarnings) Error() string {
	return fmt.Sprintf("submission blocked by %d validation warning(s)", len(e.Warnings))
}

// Submission carries the parsed inputs for one reading. Either Zipcode or
// the coordinate pair must be provided; a zero Date defaults to today.
type Submission struct {
	Zipcode  string
	Lat, Lon *float64
	Date     time.Time

	PH              float64
	Turbidity       float64
	DissolvedOxygen float64
	Nitrate         float64
}

// SubmitResult is the stored reading plus any advisory warnings.
type SubmitResult struct {
	Reading   domain.Reading
	Warnings  []string
	ZipSource string
}

// Summary pairs a ZipSummary with its verdicts for display.
type Summary struct {
	domain.ZipSummary
	Verdicts map[string]domain.Verdict
	AllSafe  bool
}

// Marker is one map pin: a known location with its zip's summary. Safe is
// the marker color condition, green when mean turbidity is within range.
type Marker struct {
	domain.KnownLocation
	Summary *Summary
	Safe    bool
}

// Service wires the pipeline stages together.
type Service struct {
	store    store.Store
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
	strict   bool
	ready    atomic.Bool
}

// New creates a Service. geocoder may be nil, in which case every resolution
// uses the nearest-known-location fallback.
func New(st store.Store, geocoder domain.Geocoder, strict bool, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:    st,
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
		strict:   strict,
	}
}

// CheckReadiness returns nil once the store has been successfully read.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}
	if _, err := s.store.LoadAll(ctx); err != nil {
		return fmt.Errorf("store not readable: %w", err)
	}
	s.ready.Store(true)
	return nil
}

// ResolveZip maps a coordinate to a zip code, reporting which source
// produced it. It never fails: the known-location fallback always yields a zip.
func (s *Service) ResolveZip(ctx context.Context, lat, lon float64) (zip, source string) {
	zip, source = domain.ResolveZip(ctx, lat, lon, s.geocoder, s.logger)
	s.metrics.ZipResolutions.WithLabelValues(source).Inc()
	return zip, source
}

// Submit validates and stores one reading. The zip comes from the submission
// directly or is resolved from its coordinates. Out-of-range values produce
// advisory warnings; under strict validation they block storage instead.
func (s *Service) Submit(ctx context.Context, sub Submission) (SubmitResult, error) {
	zip := sub.Zipcode
	zipSource := "submitted"
	if zip == "" && sub.Lat != nil && sub.Lon != nil {
		zip, zipSource = s.ResolveZip(ctx, *sub.Lat, *sub.Lon)
	}
	if !domain.ValidZipcode(zip) {
		s.metrics.ReadingsRejected.Inc()
		return SubmitResult{}, fmt.Errorf("%w: %q", ErrInvalidZipcode, zip)
	}

	warnings := domain.Validate(sub.PH, sub.Turbidity, sub.DissolvedOxygen, sub.Nitrate)
	s.countWarnings(sub)

	if s.strict && len(warnings) > 0 {
		s.metrics.ReadingsRejected.Inc()
		return SubmitResult{Warnings: warnings}, &ErrBlockedByWarnings{Warnings: warnings}
	}

	date := sub.Date
	if date.IsZero() {
		date = domain.Today()
	}

	reading := domain.Reading{
		Zipcode:         zip,
		Date:            date,
		PH:              sub.PH,
		Turbidity:       sub.Turbidity,
		DissolvedOxygen: sub.DissolvedOxygen,
		Nitrate:         sub.Nitrate,
	}
	if err := s.store.Append(ctx, reading); err != nil {
		return SubmitResult{}, fmt.Errorf("store reading: %w", err)
	}

	s.metrics.ReadingsSubmitted.Inc()
	s.logger.Info("reading stored",
		"zipcode", zip,
		"zip_source", zipSource,
		"date", date.Format(domain.DateLayout),
		"warnings", len(warnings),
	)
	return SubmitResult{Reading: reading, Warnings: warnings, ZipSource: zipSource}, nil
}

// Readings returns stored rows in insertion order. limit > 0 keeps only the
// most recent limit rows, preserving order among them.
func (s *Service) Readings(ctx context.Context, limit int) ([]domain.Reading, error) {
	readings, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load readings: %w", err)
	}
	s.metrics.StoredRows.Set(float64(len(readings)))
	if limit > 0 && len(readings) > limit {
		readings = readings[len(readings)-limit:]
	}
	return readings, nil
}

// Delete removes the reading at the given zero-based position.
func (s *Service) Delete(ctx context.Context, index int) error {
	if err := s.store.DeleteAt(ctx, index); err != nil {
		return err
	}
	s.metrics.ReadingsDeleted.Inc()
	s.logger.Info("reading deleted", "index", index)
	return nil
}

// Summaries recomputes per-zip summaries and verdicts from the full store.
func (s *Service) Summaries(ctx context.Context) ([]Summary, error) {
	readings, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load readings: %w", err)
	}

	start := time.Now()
	zipSummaries := domain.Summarize(readings)
	s.metrics.SummarizeDuration.Observe(time.Since(start).Seconds())

	summaries := make([]Summary, 0, len(zipSummaries))
	for _, zs := range zipSummaries {
		summaries = append(summaries, Summary{
			ZipSummary: zs,
			Verdicts:   domain.Classify(zs),
			AllSafe:    zs.OverallSafe(),
		})
	}
	return summaries, nil
}

// Alerts lists, per parameter, the stored readings outside the safe range.
func (s *Service) Alerts(ctx context.Context) (map[string][]domain.Exceedance, error) {
	readings, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load readings: %w", err)
	}
	return domain.Exceedances(readings), nil
}

// Markers builds one map pin per known location, attaching that zip's
// summary when it has readings. Safe follows the original marker coloring:
// green iff mean turbidity is within its safe range.
func (s *Service) Markers(ctx context.Context) ([]Marker, error) {
	summaries, err := s.Summaries(ctx)
	if err != nil {
		return nil, err
	}
	byZip := make(map[string]*Summary, len(summaries))
	for i := range summaries {
		byZip[summaries[i].Zipcode] = &summaries[i]
	}

	markers := make([]Marker, 0, len(domain.KnownLocations))
	for _, loc := range domain.KnownLocations {
		m := Marker{KnownLocation: loc, Safe: true}
		if sum, ok := byZip[loc.Zipcode]; ok {
			m.Summary = sum
			m.Safe = sum.Verdicts[domain.ParamTurbidity] == domain.VerdictSafe
		}
		markers = append(markers, m)
	}
	return markers, nil
}

func (s *Service) countWarnings(sub Submission) {
	for _, sr := range domain.SafeRanges {
		var v float64
		switch sr.Parameter {
		case domain.ParamPH:
			v = sub.PH
		case domain.ParamTurbidity:
			v = sub.Turbidity
		case domain.ParamDissolvedOxygen:
			v = sub.DissolvedOxygen
		case domain.ParamNitrate:
			v = sub.Nitrate
		}
		if !sr.Contains(v) {
			s.metrics.ValidationWarnings.WithLabelValues(sr.Parameter).Inc()
		}
	}
}
