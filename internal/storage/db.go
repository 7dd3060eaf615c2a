package storage

import (
	"context"
	"fmt"
)

// WarehouseConfig holds connection settings for both ClickHouse and PostgreSQL.
type WarehouseConfig struct {
	ClickHouse ClickHouseConfig
	Postgres   PostgresConfig
}

// DefaultWarehouseConfig returns default local development settings.
func DefaultWarehouseConfig() WarehouseConfig {
	return WarehouseConfig{
		ClickHouse: ClickHouseConfig{
			Host:     "localhost",
			Port:     9000,
			Database: "pairings",
			User:     "default",
			Password: "",
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "pairing_state",
			User:     "pairings",
			Password: "pairings",
		},
	}
}

// Warehouse wraps both ClickHouse and PostgreSQL connections: ClickHouse for
// append-only import analytics, PostgreSQL for mutable pairing state.
type Warehouse struct {
	CH *ClickHouseDB
	PG *PostgresDB
}

// OpenWarehouse opens connections to both ClickHouse and PostgreSQL.
func OpenWarehouse(ctx context.Context, cfg WarehouseConfig) (*Warehouse, error) {
	ch, err := OpenClickHouse(ctx, cfg.ClickHouse)
	if err != nil {
		return nil, fmt.Errorf("clickhouse: %w", err)
	}

	pg, err := OpenPostgres(ctx, cfg.Postgres)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &Warehouse{CH: ch, PG: pg}, nil
}

// Close closes both database connections.
func (w *Warehouse) Close() error {
	var errs []error
	if w.CH != nil {
		if err := w.CH.Close(); err != nil {
			errs = append(errs, fmt.Errorf("clickhouse: %w", err))
		}
	}
	if w.PG != nil {
		w.PG.Close()
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// CreateSchemas creates the schemas in both databases.
func (w *Warehouse) CreateSchemas(ctx context.Context) error {
	if err := w.CH.CreateSchema(ctx); err != nil {
		return fmt.Errorf("clickhouse schema: %w", err)
	}
	if err := w.PG.CreateSchema(ctx); err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}
	return nil
}
