package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/queryeval/kernel/internal/logger"
)

// sqlAdapter is the shared database/sql plumbing every dialect-specific
// Adapter embeds: pool setup, generic row scanning, and stats reporting.
// Introspect and ExplainQuery remain dialect-specific and are implemented
// by the embedding type.
type sqlAdapter struct {
	driverName string
	dialect    string
	cfg        Config
	db         *sql.DB
	log        *logger.StructuredLogger
}

func newSQLAdapter(driverName, dialectName string, cfg Config, log *logger.StructuredLogger) *sqlAdapter {
	return &sqlAdapter{driverName: driverName, dialect: dialectName, cfg: cfg, log: log}
}

func (a *sqlAdapter) Dialect() string { return a.dialect }

// Connect opens the pool and sizes it per cfg. Pool sizing follows the
// teacher's connection-pool pattern: explicit max-open/idle counts and
// lifetime bounds, then a timed ping to fail fast on a bad DSN rather than
// waiting for the first real query to surface the problem.
func (a *sqlAdapter) Connect(ctx context.Context) error {
	db, err := sql.Open(a.driverName, a.cfg.DSN)
	if err != nil {
		if a.log != nil {
			a.log.LogAdapterEvent(ctx, a.dialect, "connect", err)
		}
		return fmt.Errorf("open %s connection: %w", a.dialect, err)
	}

	if a.cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(a.cfg.MaxOpenConns)
	}
	if a.cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(a.cfg.MaxIdleConns)
	}
	if a.cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(a.cfg.ConnMaxIdleTime)
	}
	if a.cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(a.cfg.ConnMaxLifetime)
	}

	timeout := a.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		if a.log != nil {
			a.log.LogAdapterEvent(ctx, a.dialect, "ping", err)
		}
		return fmt.Errorf("ping %s connection: %w", a.dialect, err)
	}

	a.db = db
	if a.log != nil {
		a.log.LogAdapterEvent(ctx, a.dialect, "connect", nil)
	}
	return nil
}

func (a *sqlAdapter) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	if a.log != nil {
		a.log.LogAdapterEvent(context.Background(), a.dialect, "close", err)
	}
	return err
}

func (a *sqlAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *sqlAdapter) Stats() PoolStats {
	if a.db == nil {
		return PoolStats{}
	}
	s := a.db.Stats()
	return PoolStats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
		WaitCount:       s.WaitCount,
		WaitDuration:    s.WaitDuration,
	}
}

// execute runs sql and scans every row generically into []any, truncating
// at rowLimit when rowLimit > 0. It is shared by every dialect since
// database/sql's row-scanning API is driver-agnostic.
func (a *sqlAdapter) execute(ctx context.Context, sqlText string, rowLimit int) (*ExecutionResult, error) {
	start := time.Now()
	rows, err := a.db.QueryContext(ctx, sqlText)
	if err != nil {
		if a.log != nil {
			a.log.LogExecution(ctx, a.dialect, sqlText, time.Since(start), 0, err)
		}
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &ExecutionResult{Columns: columns}
	for rows.Next() {
		if rowLimit > 0 && int(result.RowCount) >= rowLimit {
			result.Truncated = true
			break
		}
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, values)
		result.RowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	if a.log != nil {
		a.log.LogExecution(ctx, a.dialect, sqlText, result.Duration, result.RowCount, nil)
	}
	return result, nil
}
