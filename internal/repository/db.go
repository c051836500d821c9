package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DB is an ent SQL driver over SQLite or a pgx pool.
type DB struct {
	drv    *entsql.Driver
	pool   *pgxpool.Pool // nil for SQLite
	logger *slog.Logger
}

// IsPostgres reports whether dsn addresses a Postgres server.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to the store selected by cfg.DSN: a postgres URL uses a pgx pool,
// anything else is a SQLite file path.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if IsPostgres(cfg.DSN) {
		return openPostgres(ctx, cfg, logger)
	}
	return openSQLite(cfg, logger)
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "dialect", dialect.Postgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "sediment-tracker"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	// Wrap pool as *sql.DB for Ent
	db := stdlib.OpenDBFromPool(pool)
	drv := entsql.OpenDB(dialect.Postgres, db)

	logger.Info("successfully connected to database")
	return &DB{drv: drv, pool: pool, logger: logger}, nil
}

func openSQLite(cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("opening database", "dialect", dialect.SQLite, "path", cfg.DSN)
	db, err := sql.Open("sqlite", sqliteDSN(cfg.DSN))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, err
	}
	// one writer; transactions queue instead of failing with SQLITE_BUSY
	db.SetMaxOpenConns(1)

	drv := entsql.OpenDB(dialect.SQLite, db)
	logger.Info("successfully opened database")
	return &DB{drv: drv, logger: logger}, nil
}

// sqliteDSN enables foreign keys on every DSN, since the cascade deletes of the
// UPDATE policy depend on them. The remaining pragmas are only defaults.
func sqliteDSN(dsn string) string {
	if !strings.Contains(dsn, "?") {
		return dsn + "?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	}
	if strings.Contains(dsn, "foreign_keys(1)") {
		return dsn
	}
	return dsn + "&_pragma=foreign_keys(1)"
}

func (db *DB) Dialect() string { return db.drv.Dialect() }

// Close closes the database connections gracefully
func (db *DB) Close() {
	db.logger.Info("closing database connections")
	if err := db.drv.Close(); err != nil {
		db.logger.Error("failed to close driver", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
	db.logger.Info("database connections closed")
}

// HealthCheck pings using database/sql to catch DSN issues early.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	db.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.drv.DB().PingContext(ctx); err != nil {
		db.logger.Error("database ping failed", "error", err)
		return err
	}
	db.logger.Debug("database ping successful")
	return nil
}
