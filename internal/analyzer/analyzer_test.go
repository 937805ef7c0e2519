package analyzer_test

import (
	"context"
	"testing"
	"time"

	"github.com/queryeval/kernel/internal/analyzer"
	"github.com/queryeval/kernel/internal/dialect"
	"github.com/queryeval/kernel/internal/sqlparser"
)

func newAnalyzer() *analyzer.Analyzer {
	return analyzer.New(sqlparser.New(nil), dialect.NewRegistry())
}

func identifiersOf(t *testing.T, a *analyzer.Analyzer, sql string) *sqlparser.IdentifierSet {
	t.Helper()
	p := sqlparser.New(nil)
	parsed := p.Parse(context.Background(), sql, dialect.SQLite.String())
	return parsed.Identifiers
}

func TestComplexitySimpleQueryIsSimple(t *testing.T) {
	a := newAnalyzer()
	ids := identifiersOf(t, a, "SELECT id FROM orders")
	report := a.Complexity("SELECT id FROM orders", ids)
	if report.Level != analyzer.ComplexitySimple {
		t.Fatalf("expected simple, got %v (score %v)", report.Level, report.Score)
	}
}

func TestComplexityManyJoinsIsMoreComplex(t *testing.T) {
	a := newAnalyzer()
	sql := `SELECT o.id FROM orders o
		JOIN customers c ON o.customer_id = c.id
		JOIN shipments s ON o.id = s.order_id
		JOIN warehouses w ON s.warehouse_id = w.id
		WHERE o.total > 10 GROUP BY o.id ORDER BY o.id`
	ids := identifiersOf(t, a, sql)
	report := a.Complexity(sql, ids)
	if report.Level == analyzer.ComplexitySimple {
		t.Fatalf("expected higher than simple complexity, got %v (score %v)", report.Level, report.Score)
	}
}

func TestPerformanceScoreExcellentBelowThreshold(t *testing.T) {
	a := newAnalyzer()
	report := a.Performance("sqlite", analyzer.ComplexitySimple, 10, 2*time.Millisecond)
	if report.Score != 1.0 {
		t.Fatalf("expected excellent score of 1.0, got %v (thresholds %+v)", report.Score, report.Thresholds)
	}
}

func TestPerformanceScoreDecaysWithSlowQuery(t *testing.T) {
	a := newAnalyzer()
	report := a.Performance("sqlite", analyzer.ComplexitySimple, 10, 5*time.Second)
	if report.Score >= 0.5 {
		t.Fatalf("expected a low score for a very slow simple query, got %v", report.Score)
	}
}

func TestPlanDetectsFullTableScan(t *testing.T) {
	a := newAnalyzer()
	report := a.Plan("Seq Scan on orders (cost=0.00..35.50 rows=2550 width=16)")
	if report.ScanType != analyzer.ScanFullTable {
		t.Fatalf("expected full_table_scan, got %v", report.ScanType)
	}
	if report.Score >= 1.0 {
		t.Fatalf("expected penalty for full table scan, got score %v", report.Score)
	}
}

func TestPlanEmptyTextIsNeutral(t *testing.T) {
	a := newAnalyzer()
	report := a.Plan("")
	if report.Score != 1.0 {
		t.Fatalf("expected neutral score for empty plan text, got %v", report.Score)
	}
}

func TestClassifyErrorTableNotFound(t *testing.T) {
	a := newAnalyzer()
	c := a.ClassifyError("no such table: orders")
	if c.Category != analyzer.ErrTableNotFound {
		t.Fatalf("expected table_not_found, got %v", c.Category)
	}
}

func TestClassifyErrorUnknownFallback(t *testing.T) {
	a := newAnalyzer()
	c := a.ClassifyError("something completely unrecognizable happened")
	if c.Category != analyzer.ErrUnknown {
		t.Fatalf("expected unknown, got %v", c.Category)
	}
}

func TestBestPracticesFlagsSelectStarAndCommaJoin(t *testing.T) {
	a := newAnalyzer()
	sql := "SELECT * FROM orders, customers WHERE orders.customer_id = customers.id"
	ids := identifiersOf(t, a, sql)
	report := a.BestPractices(sql, ids)

	foundStar, foundComma := false, false
	for _, f := range report.Findings {
		if f.Rule == "select_star" {
			foundStar = true
		}
		if f.Rule == "implicit_comma_join" {
			foundComma = true
		}
	}
	if !foundStar || !foundComma {
		t.Fatalf("expected select_star and implicit_comma_join findings, got %+v", report.Findings)
	}
}

func TestBestPracticesCleanQueryScoresHigh(t *testing.T) {
	a := newAnalyzer()
	sql := "SELECT o.id, o.total FROM orders o JOIN customers c ON o.customer_id = c.id WHERE o.total > 10"
	ids := identifiersOf(t, a, sql)
	report := a.BestPractices(sql, ids)
	if report.Score != 1.0 {
		t.Fatalf("expected a clean query to score 1.0, got %v findings=%+v", report.Score, report.Findings)
	}
}

func TestSemanticAccuracyIdenticalResultsScoreHigh(t *testing.T) {
	a := newAnalyzer()
	cols := []string{"total"}
	actual := [][]any{{10.0}, {20.0}}
	expected := [][]any{{10.0}, {20.0}}
	report := a.SemanticAccuracy(cols, actual, cols, expected)
	if report.Score < 0.9 {
		t.Fatalf("expected near-perfect semantic accuracy, got %v", report.Score)
	}
}

func TestSemanticAccuracyNoCommonColumnsIsZero(t *testing.T) {
	a := newAnalyzer()
	report := a.SemanticAccuracy([]string{"a"}, [][]any{{1}}, []string{"b"}, [][]any{{1}})
	if report.Score != 0 {
		t.Fatalf("expected zero score with no common columns, got %v", report.Score)
	}
}

func TestExplainSelectDescribesQuery(t *testing.T) {
	a := newAnalyzer()
	explanation, err := a.Explain(context.Background(), "SELECT id, total FROM orders WHERE total > 10", dialect.SQLite.String())
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if explanation == "" {
		t.Fatalf("expected a non-empty explanation")
	}
}
