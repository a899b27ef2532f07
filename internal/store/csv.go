package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/creekwatch/water-quality-service/internal/domain"
)

// csvHeader matches the original dashboard data file column names.
var csvHeader = []string{"Zipcode", "Date", "pH", "Turbidity", "Dissolved Oxygen", "Nitrate"}

// CSVStore persists readings to a single flat CSV file. Appends write one row
// to the end; deletes rewrite the whole file through a temp file and atomic
// rename. A process-local mutex serializes all access; multi-process writers
// are not supported.
type CSVStore struct {
	mu   sync.Mutex
	path string
}

// NewCSVStore opens a CSV-backed store at path. The file is created with the
// header row on first append; a missing file reads as empty.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Append(_ context.Context, r domain.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat data file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(encodeRow(r)); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush data file: %w", err)
	}
	return nil
}

func (s *CSVStore) LoadAll(_ context.Context) ([]domain.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *CSVStore) DeleteAt(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	readings, err := s.loadLocked()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(readings) {
		return indexError(index, len(readings))
	}
	remaining := append(readings[:index:index], readings[index+1:]...)
	return s.rewriteLocked(remaining)
}

func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) loadLocked() ([]domain.Reading, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Reading{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	if len(rows) <= 1 {
		return []domain.Reading{}, nil
	}

	readings := make([]domain.Reading, 0, len(rows)-1)
	for _, row := range rows[1:] {
		readings = append(readings, decodeRow(row))
	}
	return readings, nil
}

// rewriteLocked replaces the whole file via temp file + rename so a crash
// mid-write never leaves a truncated data file behind.
func (s *CSVStore) rewriteLocked(readings []domain.Reading) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range readings {
		if err := w.Write(encodeRow(r)); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

func encodeRow(r domain.Reading) []string {
	return []string{
		r.Zipcode,
		r.Date.Format(domain.DateLayout),
		formatValue(r.PH),
		formatValue(r.Turbidity),
		formatValue(r.DissolvedOxygen),
		formatValue(r.Nitrate),
	}
}

// decodeRow parses one data row. Malformed numeric cells decode as NaN and a
// malformed date as the zero time; a corrupted cell must not fail the load,
// the aggregator excludes it from that field's mean.
func decodeRow(row []string) domain.Reading {
	r := domain.Reading{
		PH:              math.NaN(),
		Turbidity:       math.NaN(),
		DissolvedOxygen: math.NaN(),
		Nitrate:         math.NaN(),
	}
	if len(row) > 0 {
		r.Zipcode = row[0]
	}
	if len(row) > 1 {
		if d, err := time.Parse(domain.DateLayout, row[1]); err == nil {
			r.Date = d
		}
	}
	if len(row) > 2 {
		r.PH = parseValue(row[2])
	}
	if len(row) > 3 {
		r.Turbidity = parseValue(row[3])
	}
	if len(row) > 4 {
		r.DissolvedOxygen = parseValue(row[4])
	}
	if len(row) > 5 {
		r.Nitrate = parseValue(row[5])
	}
	return r
}

func parseValue(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
