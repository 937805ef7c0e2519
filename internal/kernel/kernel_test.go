package kernel_test

import (
	"context"
	"testing"
	"time"

	"github.com/queryeval/kernel/internal/comparator"
	"github.com/queryeval/kernel/internal/config"
	"github.com/queryeval/kernel/internal/kernel"
	"github.com/queryeval/kernel/internal/schema"
	"github.com/queryeval/kernel/pkg/database"
)

func newTestKernel(t *testing.T) (*kernel.Kernel, database.Adapter) {
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

	cfg := config.ExecutionConfig{
		MaxRows:              100,
		QueryTimeout:         5 * time.Second,
		ValidationStrictness: "reject_on_error",
		SlowQueryThreshold:   time.Second,
		WeightsPreset:        "default",
	}
	return kernel.New(adapter, "sqlite", cfg), adapter
}

func buildSnapshotWithOrders() *schema.Snapshot {
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

// TestEvaluateValidAggregation exercises scenario S1: a valid aggregation
// query against sqlite should score well across every dimension.
func TestEvaluateValidAggregation(t *testing.T) {
	k, adapter := newTestKernel(t)
	ctx := context.Background()

	adapter.Execute(ctx, "CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER, total REAL)", 0)
	adapter.Execute(ctx, "INSERT INTO orders (id, customer_id, total) VALUES (1, 1, 10.0), (2, 1, 20.0), (3, 2, 5.0)", 0)

	snap := buildSnapshotWithOrders()
	score, err := k.Evaluate(ctx, "SELECT customer_id, SUM(total) AS total FROM orders GROUP BY customer_id", kernel.Task{}, snap, kernel.EvalOptions{
		Dialect: "sqlite",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if score.Overall < 0.7 {
		t.Fatalf("expected a high overall score for a valid query, got %v (dims=%+v)", score.Overall, score.Dimensions)
	}
}

// TestEvaluatePhantomTablePenalizesSafety exercises scenario S2.
func TestEvaluatePhantomTablePenalizesSafety(t *testing.T) {
	k, _ := newTestKernel(t)
	ctx := context.Background()
	snap := buildSnapshotWithOrders()

	score, err := k.Evaluate(ctx, "SELECT * FROM invoices", kernel.Task{}, snap, kernel.EvalOptions{Dialect: "sqlite"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if score.Dimensions["safety"] >= 0.5 {
		t.Fatalf("expected a low safety score for a phantom table reference, got %v", score.Dimensions["safety"])
	}
}

func TestEvaluateWithExpectedResultScoresCorrectness(t *testing.T) {
	k, adapter := newTestKernel(t)
	ctx := context.Background()
	adapter.Execute(ctx, "CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER, total REAL)", 0)
	adapter.Execute(ctx, "INSERT INTO orders (id, customer_id, total) VALUES (1, 1, 10.0)", 0)

	snap := buildSnapshotWithOrders()
	task := kernel.Task{Expected: &comparator.Set{
		Columns: []string{"id", "customer_id", "total"},
		Rows:    []comparator.Row{{"id": int64(1), "customer_id": int64(1), "total": 10.0}},
	}}

	score, err := k.Evaluate(ctx, "SELECT id, customer_id, total FROM orders", task, snap, kernel.EvalOptions{Dialect: "sqlite"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if score.Dimensions["correctness"] != 1.0 {
		t.Fatalf("expected perfect correctness against matching expected rows, got %v", score.Dimensions["correctness"])
	}
}
