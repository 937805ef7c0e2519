package dialect_test

import (
	"errors"
	"testing"

	"github.com/queryeval/kernel/internal/dialect"
)

func TestGetIsCaseInsensitive(t *testing.T) {
	r := dialect.NewRegistry()

	d, err := r.Get("SQLite")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if d.Name != dialect.SQLite {
		t.Fatalf("expected sqlite, got %s", d.Name)
	}
}

func TestGetUnknownDialect(t *testing.T) {
	r := dialect.NewRegistry()

	_, err := r.Get("oracle")
	if err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
	var unknown *dialect.UnknownDialectError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownDialectError, got %T", err)
	}
}

func TestAllReturnsSixDialects(t *testing.T) {
	r := dialect.NewRegistry()
	if got := len(r.All()); got != 6 {
		t.Fatalf("expected 6 dialects, got %d", got)
	}
}

func TestBuiltinFunctionLookupIsCaseInsensitive(t *testing.T) {
	r := dialect.NewRegistry()
	sqlite, err := r.Get("sqlite")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if !sqlite.HasFunction("count") {
		t.Fatalf("expected sqlite to recognize count (lowercase)")
	}
	if sqlite.HasFunction("SAFE_DIVIDE") {
		t.Fatalf("sqlite should not recognize SAFE_DIVIDE")
	}
}

func TestBigQueryRecognizesSafeDivide(t *testing.T) {
	r := dialect.NewRegistry()
	bq, err := r.Get("bigquery")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !bq.HasFunction("SAFE_DIVIDE") {
		t.Fatalf("expected bigquery to recognize SAFE_DIVIDE")
	}
}

func TestResolvesToFollowsCrossDialectAlias(t *testing.T) {
	r := dialect.NewRegistry()
	mysql, err := r.Get("mysql")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	// LEN is not a direct mysql builtin but aliases to LENGTH, which is.
	if !r.ResolvesTo(mysql, "LEN") {
		t.Fatalf("expected LEN to resolve via alias to LENGTH")
	}
}
