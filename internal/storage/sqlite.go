// Package storage provides persistent storage for extracted pairing records.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"pairing_parser/internal/pairing"
)

// TripRow is a stored pairing record with its extraction metadata.
type TripRow struct {
	ID            int64
	TripNumber    string
	PairingNumber string
	Base          string
	EffectiveYear int
	DaysOfWork    int
	CreditMinutes int
	TAFBMinutes   int
	IsPrelim      bool
	IsRedeye      bool
	IsCommutable  bool
	SourceFile    string
	TripJSON      string
}

// DB wraps a SQLite database used as the local pairing archive.
type DB struct {
	db *sql.DB
}

// Open opens or creates the archive database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS trips (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trip_number TEXT NOT NULL,
		pairing_number TEXT NOT NULL,
		base TEXT,
		effective_year INTEGER,
		days_of_work INTEGER,
		credit_minutes INTEGER,
		tafb_minutes INTEGER,
		is_prelim INTEGER DEFAULT 0,
		is_redeye INTEGER DEFAULT 0,
		is_commutable INTEGER DEFAULT 0,
		source_file TEXT,
		trip_json TEXT NOT NULL,
		created_at TEXT DEFAULT (datetime('now')),
		UNIQUE(trip_number, pairing_number, effective_year)
	);

	CREATE INDEX IF NOT EXISTS idx_trips_base ON trips(base);
	CREATE INDEX IF NOT EXISTS idx_trips_prelim ON trips(is_prelim);
	CREATE INDEX IF NOT EXISTS idx_trips_commutable ON trips(is_commutable);
	`

	_, err := db.Exec(schema)
	return err
}

// Insert stores one trip, replacing any earlier record with the same
// identifiers and effective year (re-importing a final replaces its prelim).
func (d *DB) Insert(trip *pairing.Trip, sourceFile string) (int64, error) {
	tripJSON, err := json.Marshal(trip)
	if err != nil {
		return 0, fmt.Errorf("marshal trip: %w", err)
	}

	result, err := d.db.Exec(`
		INSERT OR REPLACE INTO trips
			(trip_number, pairing_number, base, effective_year, days_of_work,
			 credit_minutes, tafb_minutes, is_prelim, is_redeye, is_commutable,
			 source_file, trip_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trip.TripNumber, trip.PairingNumber, trip.Base, trip.EffectiveYear,
		trip.DaysOfWork, trip.CreditMinutes, trip.TAFBMinutes,
		trip.IsPrelim, trip.IsRedeye, trip.IsCommutable,
		sourceFile, string(tripJSON))
	if err != nil {
		return 0, fmt.Errorf("insert trip: %w", err)
	}
	return result.LastInsertId()
}

// InsertAll stores a batch of trips inside one transaction.
func (d *DB) InsertAll(trips []*pairing.Trip, sourceFile string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO trips
			(trip_number, pairing_number, base, effective_year, days_of_work,
			 credit_minutes, tafb_minutes, is_prelim, is_redeye, is_commutable,
			 source_file, trip_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, trip := range trips {
		tripJSON, err := json.Marshal(trip)
		if err != nil {
			return fmt.Errorf("marshal trip %s/%s: %w", trip.TripNumber, trip.PairingNumber, err)
		}
		if _, err := stmt.Exec(
			trip.TripNumber, trip.PairingNumber, trip.Base, trip.EffectiveYear,
			trip.DaysOfWork, trip.CreditMinutes, trip.TAFBMinutes,
			trip.IsPrelim, trip.IsRedeye, trip.IsCommutable,
			sourceFile, string(tripJSON)); err != nil {
			return fmt.Errorf("insert trip %s/%s: %w", trip.TripNumber, trip.PairingNumber, err)
		}
	}

	return tx.Commit()
}

// QueryOptions filter List results. Zero values mean no filter.
type QueryOptions struct {
	Base           string
	OnlyCommutable bool
	IncludePrelim  bool
	Limit          int
}

// List returns stored trips, newest first.
func (d *DB) List(opts QueryOptions) ([]TripRow, error) {
	query := `
		SELECT id, trip_number, pairing_number, base, effective_year,
		       days_of_work, credit_minutes, tafb_minutes,
		       is_prelim, is_redeye, is_commutable, source_file, trip_json
		FROM trips WHERE 1=1`
	var args []any

	if opts.Base != "" {
		query += " AND base = ?"
		args = append(args, opts.Base)
	}
	if opts.OnlyCommutable {
		query += " AND is_commutable = 1"
	}
	if !opts.IncludePrelim {
		query += " AND is_prelim = 0"
	}
	query += " ORDER BY id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	var trips []TripRow
	for rows.Next() {
		var t TripRow
		var base, source sql.NullString
		if err := rows.Scan(&t.ID, &t.TripNumber, &t.PairingNumber, &base,
			&t.EffectiveYear, &t.DaysOfWork, &t.CreditMinutes, &t.TAFBMinutes,
			&t.IsPrelim, &t.IsRedeye, &t.IsCommutable, &source, &t.TripJSON); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		t.Base = base.String
		t.SourceFile = source.String
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// Get returns one trip by its identifier pair, or nil when absent.
func (d *DB) Get(tripNumber, pairingNumber string) (*TripRow, error) {
	var t TripRow
	var base, source sql.NullString
	err := d.db.QueryRow(`
		SELECT id, trip_number, pairing_number, base, effective_year,
		       days_of_work, credit_minutes, tafb_minutes,
		       is_prelim, is_redeye, is_commutable, source_file, trip_json
		FROM trips
		WHERE trip_number = ? AND pairing_number = ?
		ORDER BY effective_year DESC LIMIT 1`,
		tripNumber, pairingNumber).
		Scan(&t.ID, &t.TripNumber, &t.PairingNumber, &base,
			&t.EffectiveYear, &t.DaysOfWork, &t.CreditMinutes, &t.TAFBMinutes,
			&t.IsPrelim, &t.IsRedeye, &t.IsCommutable, &source, &t.TripJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}
	t.Base = base.String
	t.SourceFile = source.String
	return &t, nil
}

// Count returns the number of stored trips.
func (d *DB) Count() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM trips`).Scan(&n)
	return n, err
}
