package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/creekwatch/water-quality-service/internal/domain"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS readings (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	zipcode           TEXT NOT NULL,
	date              TEXT NOT NULL,
	ph                REAL,
	turbidity         REAL,
	dissolved_oxygen  REAL,
	nitrate           REAL
);`

// SQLiteStore persists readings in an embedded SQLite database. Deletions are
// transactional, so a crash mid-delete cannot corrupt the data the way a
// partially rewritten flat file can. NULL cells load as NaN, mirroring the
// CSV backend's treatment of unparseable values.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) a SQLite database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite handles one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create readings table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, r domain.Reading) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO readings (zipcode, date, ph, turbidity, dissolved_oxygen, nitrate)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Zipcode,
		r.Date.Format(domain.DateLayout),
		nullable(r.PH),
		nullable(r.Turbidity),
		nullable(r.DissolvedOxygen),
		nullable(r.Nitrate),
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadAll(ctx context.Context) ([]domain.Reading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT zipcode, date, ph, turbidity, dissolved_oxygen, nitrate
		 FROM readings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	readings := []domain.Reading{}
	for rows.Next() {
		var (
			r        domain.Reading
			date     string
			ph, turb sql.NullFloat64
			do, ni   sql.NullFloat64
		)
		if err := rows.Scan(&r.Zipcode, &date, &ph, &turb, &do, &ni); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		if d, err := time.Parse(domain.DateLayout, date); err == nil {
			r.Date = d
		}
		r.PH = floatOrNaN(ph)
		r.Turbidity = floatOrNaN(turb)
		r.DissolvedOxygen = floatOrNaN(do)
		r.Nitrate = floatOrNaN(ni)
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return readings, nil
}

func (s *SQLiteStore) DeleteAt(ctx context.Context, index int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM readings`).Scan(&count); err != nil {
		return fmt.Errorf("count readings: %w", err)
	}
	if index < 0 || index >= count {
		return indexError(index, count)
	}

	// Position maps to insertion order, which is id order.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM readings WHERE id = (SELECT id FROM readings ORDER BY id LIMIT 1 OFFSET ?)`,
		index,
	)
	if err != nil {
		return fmt.Errorf("delete reading: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
