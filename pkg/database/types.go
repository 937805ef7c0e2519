// Package database is the Engine Adapter: a uniform Execute/Introspect/
// ExplainQuery surface over the six supported SQL dialects, each backed by
// a real database/sql driver (or, for the two cloud-analytical dialects
// this module has no native Go driver for, a documented stand-in — see
// NewAdapter).
package database

import (
	"context"
	"time"

	"github.com/queryeval/kernel/internal/schema"
)

// ExecutionResult is the outcome of one Adapter.Execute call.
type ExecutionResult struct {
	Columns   []string
	Rows      [][]any
	RowCount  int64
	Affected  int64
	Duration  time.Duration
	Truncated bool // true if RowCount was capped by the caller's row limit
}

// PoolStats mirrors database/sql.DBStats, trimmed to the fields the
// Scorer's adaptive-performance analysis and operational logging use.
type PoolStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	WaitCount       int64
	WaitDuration    time.Duration
}

// Adapter is the Engine Adapter contract every dialect-specific connector
// implements: connect once, execute many queries against it, introspect its
// schema, explain a query's plan, and report pool health.
type Adapter interface {
	Dialect() string
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	Execute(ctx context.Context, sql string, rowLimit int) (*ExecutionResult, error)
	ExplainQuery(ctx context.Context, sql string) (string, error)
	Introspect(ctx context.Context) (*schema.Snapshot, error)

	Stats() PoolStats
}

// Config holds everything an Adapter needs to open and size a connection
// pool. DSN is the fully-formed driver connection string; the kernel's
// internal/config package is responsible for assembling it per dialect.
type Config struct {
	Dialect            string
	Database           string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxIdleTime    time.Duration
	ConnMaxLifetime    time.Duration
	ConnectTimeout     time.Duration
}
