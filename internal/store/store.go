// Package store persists readings behind a swappable Store interface so the
// pipeline logic is independent of the backing mechanism: a flat CSV file for
// parity with the original dashboard data, SQLite when transactional deletes
// matter, and an in-memory slice for tests.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/creekwatch/water-quality-service/internal/domain"
)

// ErrIndexOutOfRange is returned by DeleteAt for an index with no existing row.
var ErrIndexOutOfRange = errors.New("row index out of range")

// Store is an append-only table of readings with positional deletion.
// Implementations serialize mutations internally; callers get last-write-wins
// semantics without external locking.
type Store interface {
	// Append adds one row. It never rejects a row for business-rule
	// reasons; validation is the caller's responsibility. Fails only on
	// storage I/O errors, which are terminal.
	Append(ctx context.Context, r domain.Reading) error

	// LoadAll returns all rows in insertion order, oldest first. A store
	// that has never been written to yields an empty slice, not an error.
	LoadAll(ctx context.Context) ([]domain.Reading, error)

	// DeleteAt removes the row at the given zero-based position in
	// LoadAll order. An invalid index returns ErrIndexOutOfRange and
	// leaves the store unchanged.
	DeleteAt(ctx context.Context, index int) error

	// Close releases any underlying resources.
	Close() error
}

func indexError(index, rows int) error {
	return fmt.Errorf("delete row %d of %d: %w", index, rows, ErrIndexOutOfRange)
}
