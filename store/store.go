package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Tables in dependency order; time series first so cleanup can run top-down.
var tables = []string{
	"robot_telemetry",
	"picker_activity",
	"order_events",
	"cart_movement",
	"orders",
	"carts",
	"pickers",
	"robots",
}

type DB struct {
	*sql.DB
	dialect Dialect
	driver  string
}

// Open connects to the configured driver and applies the schema.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return openSQLite(cfg.SQLite.Path)
	case "postgres":
		return openPostgres(&cfg.Postgres)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func openSQLite(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := &DB{DB: sqlDB, dialect: sqliteDialect{}, driver: "sqlite"}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

func openPostgres(cfg *config.PostgresConfig) (*DB, error) {
	sqlDB, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db := &DB{DB: sqlDB, dialect: postgresDialect{}, driver: "postgres"}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return db, nil
}

func (db *DB) Dialect() Dialect { return db.dialect }
func (db *DB) Driver() string   { return db.driver }

// Q rewrites ? placeholders for PostgreSQL, passes through for SQLite.
func (db *DB) Q(query string) string {
	if db.driver == "postgres" {
		return Rebind(query)
	}
	return query
}

func (db *DB) migrate() error {
	var schema string
	switch db.driver {
	case "sqlite":
		schema = schemaSQLite
	case "postgres":
		schema = schemaPostgres
	default:
		return fmt.Errorf("no schema for driver: %s", db.driver)
	}
	_, err := db.Exec(schema)
	return err
}

// Setup applies the schema. Open already does this; Setup exists for the
// CLI so an operator can re-run it against an existing database.
func (db *DB) Setup(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", db.driver, err)
	}
	if err := db.migrate(); err != nil {
		return fmt.Errorf("migrate %s: %w", db.driver, err)
	}
	return nil
}

// Cleanup deletes every row from every table, leaving the schema in place.
func (db *DB) Cleanup(ctx context.Context) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cleanup begin: %w", err)
	}
	defer tx.Rollback()
	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("cleanup %s: %w", t, err)
		}
	}
	return tx.Commit()
}

// TableCount is the row count of one table.
type TableCount struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// Counts reports the row count of every table, entities first.
func (db *DB) Counts(ctx context.Context) ([]TableCount, error) {
	out := make([]TableCount, 0, len(tables))
	for i := len(tables) - 1; i >= 0; i-- {
		var n int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+tables[i]).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", tables[i], err)
		}
		out = append(out, TableCount{Table: tables[i], Rows: n})
	}
	return out, nil
}
