package database_test

import (
	"context"
	"testing"

	"github.com/queryeval/kernel/pkg/database"
)

func newTestSQLiteAdapter(t *testing.T) database.Adapter {
	t.Helper()
	adapter, err := database.NewAdapter(database.Config{
		Dialect: "sqlite",
		DSN:     "file::memory:?cache=shared",
	}, nil)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	if err := adapter.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func TestSQLiteAdapterExecuteAndIntrospect(t *testing.T) {
	adapter := newTestSQLiteAdapter(t)
	ctx := context.Background()

	if _, err := adapter.Execute(ctx, "CREATE TABLE orders (id INTEGER PRIMARY KEY, total REAL)", 0); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := adapter.Execute(ctx, "INSERT INTO orders (id, total) VALUES (1, 9.99), (2, 4.5)", 0); err != nil {
		t.Fatalf("insert: %v", err)
	}

	result, err := adapter.Execute(ctx, "SELECT id, total FROM orders ORDER BY id", 0)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if result.RowCount != 2 {
		t.Fatalf("expected 2 rows, got %d", result.RowCount)
	}

	snap, err := adapter.Introspect(ctx)
	if err != nil {
		t.Fatalf("introspect: %v", err)
	}
	if !snap.HasTable("orders") {
		t.Fatalf("expected orders table in snapshot, got %v", snap.TableNames())
	}
	if !snap.HasColumn("orders", "total") {
		t.Fatalf("expected orders.total column in snapshot")
	}
}

func TestSQLiteAdapterExecuteRespectsRowLimit(t *testing.T) {
	adapter := newTestSQLiteAdapter(t)
	ctx := context.Background()

	adapter.Execute(ctx, "CREATE TABLE t (n INTEGER)", 0)
	adapter.Execute(ctx, "INSERT INTO t VALUES (1), (2), (3), (4)", 0)

	result, err := adapter.Execute(ctx, "SELECT n FROM t", 2)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if result.RowCount != 2 || !result.Truncated {
		t.Fatalf("expected truncated 2-row result, got rowCount=%d truncated=%v", result.RowCount, result.Truncated)
	}
}

func TestSQLiteAdapterExplainQueryReturnsNonEmptyPlan(t *testing.T) {
	adapter := newTestSQLiteAdapter(t)
	ctx := context.Background()
	adapter.Execute(ctx, "CREATE TABLE t (n INTEGER)", 0)

	plan, err := adapter.ExplainQuery(ctx, "SELECT n FROM t WHERE n = 1")
	if err != nil {
		t.Fatalf("ExplainQuery: %v", err)
	}
	if plan == "" {
		t.Fatalf("expected a non-empty plan")
	}
}
