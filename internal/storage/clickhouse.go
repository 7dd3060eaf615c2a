package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"pairing_parser/internal/pairing"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseDB wraps a ClickHouse connection used as the append-only
// analytics sink: every import appends one row per trip, so pairing churn
// across bid periods stays queryable.
type ClickHouseDB struct {
	conn driver.Conn
}

// Conn returns the underlying ClickHouse connection for direct queries.
func (d *ClickHouseDB) Conn() driver.Conn {
	return d.conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the ClickHouse tables.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS trip_imports (
		trip_number      LowCardinality(String),
		pairing_number   String,
		base             LowCardinality(String),
		effective_year   UInt16,
		days_of_work     UInt8,
		credit_minutes   UInt32,
		tafb_minutes     UInt32,
		credit_per_day   Float32,
		longest_layover  Float32,
		operating_days   UInt16,
		is_prelim        Bool,
		is_redeye        Bool,
		is_lazy          Bool,
		is_weekday_only  Bool,
		is_commutable    Bool,
		has_deadhead     Bool,
		layover_stations String,
		trip_json        String,
		imported_at      DateTime64(3) DEFAULT now64(3)
	)
	ENGINE = MergeTree()
	PARTITION BY toYYYYMM(imported_at)
	ORDER BY (base, effective_year, trip_number, pairing_number)
	SETTINGS index_granularity = 8192`

	if err := d.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// InsertTrips appends a batch of trips to the analytics table.
func (d *ClickHouseDB) InsertTrips(ctx context.Context, trips []*pairing.Trip) error {
	if len(trips) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO trip_imports (trip_number, pairing_number, base, effective_year,
			days_of_work, credit_minutes, tafb_minutes, credit_per_day, longest_layover,
			operating_days, is_prelim, is_redeye, is_lazy, is_weekday_only,
			is_commutable, has_deadhead, layover_stations, trip_json)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, trip := range trips {
		tripJSON, err := json.Marshal(trip)
		if err != nil {
			return fmt.Errorf("marshal trip %s/%s: %w", trip.TripNumber, trip.PairingNumber, err)
		}

		stations := make([]string, 0, len(trip.Layovers))
		for _, lay := range trip.Layovers {
			stations = append(stations, lay.Location)
		}

		err = batch.Append(trip.TripNumber, trip.PairingNumber, trip.Base,
			uint16(trip.EffectiveYear), uint8(trip.DaysOfWork),
			uint32(trip.CreditMinutes), uint32(trip.TAFBMinutes),
			float32(trip.CreditTimePerDay), float32(trip.LongestLayover),
			uint16(len(trip.OperatingDates)), trip.IsPrelim, trip.IsRedeye,
			trip.IsLazyPairing, trip.IsWeekdayOnly, trip.IsCommutable,
			trip.HasDeadhead, strings.Join(stations, ","), string(tripJSON))
		if err != nil {
			return fmt.Errorf("append trip %s/%s: %w", trip.TripNumber, trip.PairingNumber, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}
