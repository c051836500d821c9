package repository

import (
	"context"
	"fmt"
)

// Tables in dependency order.
var Tables = []string{"sites", "work_orders", "stations", "organic_matter", "ph_redox", "validation_issues"}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sites (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		category INTEGER,
		censored BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS work_orders (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		version INTEGER NOT NULL,
		site_id TEXT NOT NULL REFERENCES sites(id),
		source_file TEXT NOT NULL,
		report_kind TEXT NOT NULL,
		monitoring_type TEXT,
		sampling_date TEXT,
		intake_date TEXT,
		responsible TEXT,
		reported_condition TEXT,
		diagnosis TEXT NOT NULL,
		is_anaerobic BOOLEAN NOT NULL,
		organic_matter_violations INTEGER NOT NULL,
		ph_redox_violations INTEGER NOT NULL,
		violation_threshold INTEGER NOT NULL,
		total_stations INTEGER NOT NULL,
		applied_monitoring_type TEXT NOT NULL,
		organic_matter_max DOUBLE PRECISION NOT NULL,
		ph_min DOUBLE PRECISION NOT NULL,
		eh_min DOUBLE PRECISION NOT NULL,
		needs_review BOOLEAN NOT NULL,
		ocr_fields TEXT,
		created_at TEXT NOT NULL,
		UNIQUE (code, version)
	)`,
	`CREATE TABLE IF NOT EXISTS stations (
		id TEXT PRIMARY KEY,
		work_order_id TEXT NOT NULL REFERENCES work_orders(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		utm_easting INTEGER,
		utm_northing INTEGER,
		depth_m DOUBLE PRECISION,
		organic_matter_avg DOUBLE PRECISION,
		organic_matter_replicas INTEGER NOT NULL DEFAULT 0,
		ph_avg DOUBLE PRECISION,
		eh_avg DOUBLE PRECISION,
		redox_avg DOUBLE PRECISION,
		temperature_avg DOUBLE PRECISION,
		ph_redox_replicas INTEGER NOT NULL DEFAULT 0,
		UNIQUE (work_order_id, code)
	)`,
	`CREATE TABLE IF NOT EXISTS organic_matter (
		id TEXT PRIMARY KEY,
		work_order_id TEXT NOT NULL REFERENCES work_orders(id) ON DELETE CASCADE,
		station_id TEXT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
		sample_code TEXT NOT NULL,
		replica INTEGER NOT NULL,
		weight_g DOUBLE PRECISION NOT NULL,
		percentage DOUBLE PRECISION NOT NULL,
		within_infa BOOLEAN NOT NULL,
		within_post_anaerobic BOOLEAN NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ph_redox (
		id TEXT PRIMARY KEY,
		work_order_id TEXT NOT NULL REFERENCES work_orders(id) ON DELETE CASCADE,
		station_id TEXT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
		sample_code TEXT NOT NULL,
		replica INTEGER NOT NULL,
		ph DOUBLE PRECISION,
		redox_mv INTEGER,
		eh_mv INTEGER,
		temperature_c DOUBLE PRECISION,
		ph_ok BOOLEAN,
		eh_ok BOOLEAN,
		joint_ok BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS validation_issues (
		id TEXT PRIMARY KEY,
		work_order_id TEXT NOT NULL REFERENCES work_orders(id) ON DELETE CASCADE,
		severity TEXT NOT NULL,
		field TEXT NOT NULL,
		subject TEXT,
		message TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_orders_code ON work_orders (code)`,
	`CREATE INDEX IF NOT EXISTS idx_stations_work_order ON stations (work_order_id)`,
}

// Migrate creates missing tables. The DDL is portable between SQLite and Postgres.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if err := db.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			db.logger.Error("migration failed", "error", err)
			return fmt.Errorf("migrate: %w", err)
		}
	}
	db.logger.Info("schema up to date", "tables", len(Tables))
	return nil
}
