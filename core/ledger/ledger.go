// Package ledger records rewrite runs in a SQLite database.
//
// Build modes:
//   - Default (CGO_ENABLED=0): uses pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): uses mattn/go-sqlite3
//
// A ledger is optional; the rewrite itself never depends on one.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/wildswap/core/errors"
	"github.com/FocuswithJustin/wildswap/core/selector"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	started_at    TEXT NOT NULL,
	finished_at   TEXT NOT NULL,
	input_path    TEXT NOT NULL,
	output_path   TEXT NOT NULL,
	input_blake3  TEXT NOT NULL,
	output_blake3 TEXT NOT NULL,
	seed          INTEGER,
	soft_cap      INTEGER NOT NULL,
	replaced      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS usage (
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	identifier TEXT NOT NULL,
	count      INTEGER NOT NULL,
	PRIMARY KEY (run_id, identifier)
);
`

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded rewrite.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	InputPath    string
	OutputPath   string
	InputBLAKE3  string
	OutputBLAKE3 string
	// Seed is nil when the run used an unseeded random source.
	Seed     *int64
	SoftCap  int
	Replaced int
	Usage    []selector.Usage
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// Ledger is an open run database.
type Ledger struct {
	db   *sql.DB
	path string
}

// DriverName returns the SQL driver name in use.
func DriverName() string {
	return driverName
}

// DriverType returns "cgo" for mattn/go-sqlite3, "purego" for modernc.org/sqlite.
func DriverType() string {
	return driverType
}

// DriverPackage returns the import path of the SQLite driver.
func DriverPackage() string {
	return driverPackage
}

// Open opens or creates the ledger at path and ensures its schema exists.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.NewIO("open ledger", path, err)
	}
	// SQLite pragmas are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.NewIO("open ledger", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.NewIO("initialize ledger", path, err)
	}
	return &Ledger{db: db, path: path}, nil
}

// Path returns the database path the ledger was opened with.
func (l *Ledger) Path() string {
	return l.path
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores run and its usage rows in one transaction.
func (l *Ledger) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.NewValidation("run id", "must not be empty")
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewIO("begin ledger transaction", l.path, err)
	}
	defer tx.Rollback()

	var seed sql.NullInt64
	if run.Seed != nil {
		seed = sql.NullInt64{Int64: *run.Seed, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, started_at, finished_at, input_path, output_path, input_blake3, output_blake3, seed, soft_cap, replaced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.InputPath,
		run.OutputPath,
		run.InputBLAKE3,
		run.OutputBLAKE3,
		seed,
		run.SoftCap,
		run.Replaced,
	)
	if err != nil {
		return errors.NewIO("record run", l.path, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO usage (run_id, identifier, count) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.NewIO("record usage", l.path, err)
	}
	defer stmt.Close()

	for _, u := range run.Usage {
		if _, err := stmt.ExecContext(ctx, run.ID, u.ID, u.Count); err != nil {
			return errors.NewIO("record usage", l.path, fmt.Errorf("%s: %w", u.ID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewIO("commit run", l.path, err)
	}
	return nil
}

// Runs returns every recorded run, oldest first, without usage rows.
func (l *Ledger) Runs(ctx context.Context) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT
		id, started_at, finished_at, input_path, output_path, input_blake3, output_blake3, seed, soft_cap, replaced
		FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, errors.NewIO("list runs", l.path, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started, finished string
			seed              sql.NullInt64
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.InputPath, &run.OutputPath,
			&run.InputBLAKE3, &run.OutputBLAKE3, &seed, &run.SoftCap, &run.Replaced); err != nil {
			return nil, errors.NewIO("scan run", l.path, err)
		}
		if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, errors.NewParse("timestamp", l.path, err.Error())
		}
		if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, errors.NewParse("timestamp", l.path, err.Error())
		}
		if seed.Valid {
			s := seed.Int64
			run.Seed = &s
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("list runs", l.path, err)
	}
	return runs, nil
}

// Usage returns the usage rows of one run, sorted by identifier.
func (l *Ledger) Usage(ctx context.Context, runID string) ([]selector.Usage, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT identifier, count FROM usage WHERE run_id = ? ORDER BY identifier`, runID)
	if err != nil {
		return nil, errors.NewIO("list usage", l.path, err)
	}
	defer rows.Close()

	var usage []selector.Usage
	for rows.Next() {
		var u selector.Usage
		if err := rows.Scan(&u.ID, &u.Count); err != nil {
			return nil, errors.NewIO("scan usage", l.path, err)
		}
		usage = append(usage, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("list usage", l.path, err)
	}
	return usage, nil
}
