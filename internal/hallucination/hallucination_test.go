package hallucination_test

import (
	"context"
	"testing"

	"github.com/queryeval/kernel/internal/dialect"
	"github.com/queryeval/kernel/internal/hallucination"
	"github.com/queryeval/kernel/internal/schema"
	"github.com/queryeval/kernel/internal/sqlparser"
)

func buildSnapshot() *schema.Snapshot {
	s := schema.NewSnapshot("sqlite", "bench")
	s.AddTable(schema.TableInfo{
		Name: "orders",
		Columns: []schema.ColumnInfo{
			{Name: "id", DataType: "INTEGER", PrimaryKey: true},
			{Name: "customer_id", DataType: "INTEGER"},
			{Name: "total", DataType: "REAL"},
		},
	})
	s.AddTable(schema.TableInfo{
		Name: "customers",
		Columns: []schema.ColumnInfo{
			{Name: "id", DataType: "INTEGER", PrimaryKey: true},
			{Name: "name", DataType: "TEXT"},
		},
	})
	return s
}

func newDetector() *hallucination.Detector {
	registry := dialect.NewRegistry()
	parser := sqlparser.New(nil)
	return hallucination.New(registry, parser, "sqlite")
}

func TestDetectCleanQueryHasNoPhantoms(t *testing.T) {
	d := newDetector()
	snap := buildSnapshot()
	report := d.Detect(context.Background(), "SELECT id, total FROM orders WHERE customer_id = 1", snap, "")

	if report.HasHallucinations() {
		t.Fatalf("expected no hallucinations, got %+v", report)
	}
}

func TestDetectPhantomTable(t *testing.T) {
	d := newDetector()
	snap := buildSnapshot()
	report := d.Detect(context.Background(), "SELECT id FROM invoices", snap, "")

	if !containsStr(report.PhantomTables, "invoices") {
		t.Fatalf("expected invoices flagged as phantom, got %+v", report)
	}
	if report.Score <= 0 {
		t.Fatalf("expected a positive hallucination score, got %f", report.Score)
	}
}

func TestDetectPhantomColumn(t *testing.T) {
	d := newDetector()
	snap := buildSnapshot()
	report := d.Detect(context.Background(), "SELECT shipping_address FROM orders", snap, "")

	if !containsStr(report.PhantomColumns, "shipping_address") {
		t.Fatalf("expected shipping_address flagged as phantom, got %+v", report)
	}
}

func TestDetectDoesNotFlagCTEAliasAsPhantomTable(t *testing.T) {
	d := newDetector()
	snap := buildSnapshot()
	sql := "WITH recent AS (SELECT id, total FROM orders) SELECT id FROM recent"
	report := d.Detect(context.Background(), sql, snap, "")

	if containsStr(report.PhantomTables, "recent") {
		t.Fatalf("CTE alias recent should never be flagged as a phantom table, got %+v", report)
	}
}

func TestDetectFunctionAliasAcrossDialectsNotPhantom(t *testing.T) {
	d := newDetector()
	snap := buildSnapshot()
	report := d.Detect(context.Background(), "SELECT LEN(name) FROM customers", snap, "mysql")

	if containsStr(report.PhantomFunctions, "LEN") {
		t.Fatalf("LEN should resolve via alias to LENGTH on mysql, got %+v", report)
	}
}

func TestDetectBigQuerySafeDivideIsRecognized(t *testing.T) {
	d := newDetector()
	snap := buildSnapshot()
	report := d.Detect(context.Background(), "SELECT SAFE_DIVIDE(total, 2) FROM orders", snap, "bigquery")

	if containsStr(report.PhantomFunctions, "SAFE_DIVIDE") {
		t.Fatalf("SAFE_DIVIDE is a real bigquery builtin, should not be phantom, got %+v", report)
	}
}

func TestValidateTranslatesPhantomsToErrorsAndWarnings(t *testing.T) {
	d := newDetector()
	snap := buildSnapshot()
	result := d.Validate(context.Background(), "SELECT bogus_fn(id) FROM invoices", snap, "")

	if result.IsValid {
		t.Fatalf("expected invalid result due to phantom table")
	}
	if len(result.Errors) == 0 {
		t.Fatalf("expected at least one error for the phantom table")
	}
	if len(result.Warnings) == 0 {
		t.Fatalf("expected at least one warning for the phantom function")
	}
}

func TestUnparseableSQLYieldsWorstCaseScore(t *testing.T) {
	d := newDetector()
	snap := buildSnapshot()
	report := d.Detect(context.Background(), "SELECT (((", snap, "")
	if report.Score != 1.0 {
		t.Fatalf("expected worst-case score 1.0 for unparseable SQL, got %v", report.Score)
	}
}

func containsStr(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
