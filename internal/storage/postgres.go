package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pairing_parser/internal/pairing"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresDB wraps a PostgreSQL connection pool holding the mutable pairing
// state: one row per (trip, pairing, year), where a final import supersedes
// an earlier prelim.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() {
	d.pool.Close()
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS pairings (
		trip_number     TEXT NOT NULL,
		pairing_number  TEXT NOT NULL,
		effective_year  INTEGER NOT NULL,
		base            TEXT,
		days_of_work    INTEGER,
		credit_minutes  INTEGER,
		tafb_minutes    INTEGER,
		is_prelim       BOOLEAN NOT NULL DEFAULT FALSE,
		is_redeye       BOOLEAN NOT NULL DEFAULT FALSE,
		is_commutable   BOOLEAN NOT NULL DEFAULT FALSE,
		operating_dates JSONB,
		trip_json       JSONB NOT NULL,
		first_seen      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (trip_number, pairing_number, effective_year)
	);

	CREATE INDEX IF NOT EXISTS idx_pairings_base ON pairings(base);
	CREATE INDEX IF NOT EXISTS idx_pairings_last_seen ON pairings(last_seen);
	`

	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	// Partial index for commutable-pairing lookups.
	_, _ = d.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_pairings_commutable ON pairings(is_commutable) WHERE is_commutable = TRUE`)

	return nil
}

// UpsertTrip inserts or refreshes one pairing. A prelim row never overwrites
// a final one; a final always wins.
func (d *PostgresDB) UpsertTrip(ctx context.Context, trip *pairing.Trip) error {
	tripJSON, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("marshal trip: %w", err)
	}
	datesJSON, err := json.Marshal(trip.OperatingDates)
	if err != nil {
		return fmt.Errorf("marshal operating dates: %w", err)
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO pairings (trip_number, pairing_number, effective_year, base,
			days_of_work, credit_minutes, tafb_minutes,
			is_prelim, is_redeye, is_commutable, operating_dates, trip_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (trip_number, pairing_number, effective_year) DO UPDATE SET
			base = EXCLUDED.base,
			days_of_work = EXCLUDED.days_of_work,
			credit_minutes = EXCLUDED.credit_minutes,
			tafb_minutes = EXCLUDED.tafb_minutes,
			is_prelim = pairings.is_prelim AND EXCLUDED.is_prelim,
			is_redeye = EXCLUDED.is_redeye,
			is_commutable = EXCLUDED.is_commutable,
			operating_dates = EXCLUDED.operating_dates,
			trip_json = CASE WHEN EXCLUDED.is_prelim AND NOT pairings.is_prelim
					THEN pairings.trip_json ELSE EXCLUDED.trip_json END,
			last_seen = NOW()
	`, trip.TripNumber, trip.PairingNumber, trip.EffectiveYear, nullIfEmpty(trip.Base),
		trip.DaysOfWork, trip.CreditMinutes, trip.TAFBMinutes,
		trip.IsPrelim, trip.IsRedeye, trip.IsCommutable, datesJSON, tripJSON)
	return err
}

// PairingState is one row of the mutable pairing table.
type PairingState struct {
	TripNumber    string
	PairingNumber string
	EffectiveYear int
	Base          string
	DaysOfWork    int
	IsPrelim      bool
	FirstSeen     time.Time
	LastSeen      time.Time
}

// GetTrip retrieves one pairing row, or nil when absent.
func (d *PostgresDB) GetTrip(ctx context.Context, tripNumber, pairingNumber string, year int) (*PairingState, error) {
	var p PairingState
	var base *string
	err := d.pool.QueryRow(ctx, `
		SELECT trip_number, pairing_number, effective_year, base, days_of_work,
		       is_prelim, first_seen, last_seen
		FROM pairings
		WHERE trip_number = $1 AND pairing_number = $2 AND effective_year = $3
	`, tripNumber, pairingNumber, year).
		Scan(&p.TripNumber, &p.PairingNumber, &p.EffectiveYear, &base,
			&p.DaysOfWork, &p.IsPrelim, &p.FirstSeen, &p.LastSeen)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if base != nil {
		p.Base = *base
	}
	return &p, nil
}

// RecentTrips returns the most recently seen pairings.
func (d *PostgresDB) RecentTrips(ctx context.Context, limit int) ([]PairingState, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT trip_number, pairing_number, effective_year, base, days_of_work,
		       is_prelim, first_seen, last_seen
		FROM pairings ORDER BY last_seen DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PairingState
	for rows.Next() {
		var p PairingState
		var base *string
		if err := rows.Scan(&p.TripNumber, &p.PairingNumber, &p.EffectiveYear, &base,
			&p.DaysOfWork, &p.IsPrelim, &p.FirstSeen, &p.LastSeen); err != nil {
			return nil, err
		}
		if base != nil {
			p.Base = *base
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
