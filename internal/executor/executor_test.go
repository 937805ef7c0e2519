package executor_test

import (
	"context"
	"strings"
	"testing"

	"github.com/queryeval/kernel/internal/dialect"
	"github.com/queryeval/kernel/internal/executor"
	"github.com/queryeval/kernel/internal/hallucination"
	"github.com/queryeval/kernel/internal/schema"
	"github.com/queryeval/kernel/internal/sqlparser"
	"github.com/queryeval/kernel/pkg/database"
)

func newTestExecutor(t *testing.T) (*executor.Executor, database.Adapter) {
	t.Helper()
	registry := dialect.NewRegistry()
	parser := sqlparser.New(nil)
	detector := hallucination.New(registry, parser, dialect.SQLite.String())

	adapter, err := database.NewAdapter(database.Config{
		Dialect: "sqlite",
		DSN:     "file::memory:?cache=shared&_busy_timeout=5000",
	}, nil)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	if err := adapter.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { adapter.Close() })

	return executor.New(detector, adapter, nil), adapter
}

func buildOrdersSnapshot() *schema.Snapshot {
	snap := schema.NewSnapshot("sqlite", "main")
	snap.AddTable(schema.TableInfo{
		Name: "orders",
		Columns: []schema.ColumnInfo{
			{Name: "id", DataType: "INTEGER", PrimaryKey: true},
			{Name: "customer_id", DataType: "INTEGER"},
			{Name: "total", DataType: "REAL"},
		},
	})
	return snap
}

func TestProcessValidAggregationSucceeds(t *testing.T) {
	exec, adapter := newTestExecutor(t)
	ctx := context.Background()

	if _, err := adapter.Execute(ctx, "CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER, total REAL)", 0); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := adapter.Execute(ctx, "INSERT INTO orders (id, customer_id, total) VALUES (1, 1, 10.0), (2, 1, 20.0)", 0); err != nil {
		t.Fatalf("insert: %v", err)
	}

	snap := buildOrdersSnapshot()
	result := exec.Process(ctx, "SELECT customer_id, SUM(total) FROM orders GROUP BY customer_id", "sqlite", snap, executor.Options{})

	if result.Status != executor.StatusSuccess {
		t.Fatalf("expected success, got status=%v err=%v", result.Status, result.Err)
	}
	if result.Execution == nil || result.Execution.RowCount != 1 {
		t.Fatalf("expected 1 aggregated row, got %+v", result.Execution)
	}
}

func TestProcessPhantomTableRejectedByDefault(t *testing.T) {
	exec, _ := newTestExecutor(t)
	ctx := context.Background()
	snap := buildOrdersSnapshot()

	result := exec.Process(ctx, "SELECT * FROM nonexistent_table", "sqlite", snap, executor.Options{})

	if result.Status != executor.StatusFailed {
		t.Fatalf("expected failed status for phantom table, got %v", result.Status)
	}
	if result.Validation.IsValid {
		t.Fatalf("expected invalid validation result")
	}
}

func TestProcessPhantomColumnRejectedByDefault(t *testing.T) {
	exec, _ := newTestExecutor(t)
	ctx := context.Background()
	snap := buildOrdersSnapshot()

	result := exec.Process(ctx, "SELECT nonexistent_column FROM orders", "sqlite", snap, executor.Options{})

	if result.Status != executor.StatusFailed {
		t.Fatalf("expected failed status for phantom column, got %v", result.Status)
	}
}

func TestProcessWarnOnlyStillExecutesDespitePhantom(t *testing.T) {
	exec, adapter := newTestExecutor(t)
	ctx := context.Background()
	if _, err := adapter.Execute(ctx, "CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER, total REAL, status TEXT)", 0); err != nil {
		t.Fatalf("create table: %v", err)
	}
	snap := buildOrdersSnapshot()

	result := exec.Process(ctx, "SELECT id, status FROM orders", "sqlite", snap, executor.Options{
		ValidationStrictness: executor.StrictnessWarnOnly,
	})

	if result.Validation.IsValid {
		t.Fatalf("expected the snapshot-unknown column status to be flagged")
	}
	if result.Status != executor.StatusSuccess {
		t.Fatalf("expected success under warn_only, got %v err=%v", result.Status, result.Err)
	}
}

func TestProcessNonSelectRejectedWithoutAllowNonSelect(t *testing.T) {
	exec, _ := newTestExecutor(t)
	ctx := context.Background()
	snap := buildOrdersSnapshot()

	result := exec.Process(ctx, "DELETE FROM orders", "sqlite", snap, executor.Options{})

	if result.Status != executor.StatusFailed {
		t.Fatalf("expected non-SELECT to be rejected by default, got %v", result.Status)
	}
}

func TestProcessAppendsRowLimitEnvelope(t *testing.T) {
	exec, adapter := newTestExecutor(t)
	ctx := context.Background()
	if _, err := adapter.Execute(ctx, "CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER, total REAL)", 0); err != nil {
		t.Fatalf("create table: %v", err)
	}
	adapter.Execute(ctx, "INSERT INTO orders (id, customer_id, total) VALUES (10, 1, 1.0), (11, 1, 1.0), (12, 1, 1.0)", 0)

	snap := buildOrdersSnapshot()
	result := exec.Process(ctx, "SELECT id FROM orders", "sqlite", snap, executor.Options{MaxRows: 2})

	if result.Status != executor.StatusSuccess {
		t.Fatalf("expected success, got %v err=%v", result.Status, result.Err)
	}
	if result.Execution.RowCount != 2 {
		t.Fatalf("expected row limit envelope to cap at 2 rows, got %d", result.Execution.RowCount)
	}
	found := false
	for _, insight := range result.Insights {
		if strings.Contains(insight, "truncated") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a truncation insight, got %v", result.Insights)
	}
}

func TestProcessEmptyResultInsight(t *testing.T) {
	exec, adapter := newTestExecutor(t)
	ctx := context.Background()
	if _, err := adapter.Execute(ctx, "CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER, total REAL)", 0); err != nil {
		t.Fatalf("create table: %v", err)
	}
	snap := buildOrdersSnapshot()

	result := exec.Process(ctx, "SELECT id FROM orders", "sqlite", snap, executor.Options{})
	if result.Status != executor.StatusSuccess {
		t.Fatalf("expected success, got %v err=%v", result.Status, result.Err)
	}
	found := false
	for _, insight := range result.Insights {
		if strings.Contains(insight, "empty") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an empty-result insight, got %v", result.Insights)
	}
}
