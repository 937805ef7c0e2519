package database

import (
	"fmt"

	"github.com/queryeval/kernel/internal/dialect"
	"github.com/queryeval/kernel/internal/logger"
)

// NewAdapter builds the Adapter for cfg.Dialect, per the bindings recorded
// in SPEC_FULL.md's Engine Adapter table: sqlite -> mattn/go-sqlite3,
// duckdb -> marcboeker/go-duckdb, postgresql -> lib/pq, mysql ->
// go-sql-driver/mysql, bigquery/snowflake -> clickhouse-go/v2 as a
// documented cloud-analytical stand-in.
func NewAdapter(cfg Config, log *logger.StructuredLogger) (Adapter, error) {
	switch cfg.Dialect {
	case string(dialect.SQLite):
		return newSQLiteAdapter(cfg, log), nil
	case string(dialect.DuckDB):
		return newDuckDBAdapter(cfg, log), nil
	case string(dialect.Postgres):
		return newPostgresAdapter(cfg, log), nil
	case string(dialect.MySQL):
		return newMySQLAdapter(cfg, log), nil
	case string(dialect.BigQuery), string(dialect.Snowflake):
		return newClickHouseAdapter(cfg.Dialect, cfg, log), nil
	default:
		return nil, fmt.Errorf("database: no adapter registered for dialect %q", cfg.Dialect)
	}
}
