package sqlparser_test

import (
	"context"
	"testing"

	"github.com/queryeval/kernel/internal/dialect"
	"github.com/queryeval/kernel/internal/sqlparser"
)

func TestParseSimpleSelectExtractsTableAndColumns(t *testing.T) {
	p := sqlparser.New(nil)
	parsed := p.Parse(context.Background(), "SELECT id, total FROM orders WHERE customer = 'acme'", dialect.SQLite.String())

	if !parsed.IsValid {
		t.Fatalf("expected valid parse, got error: %s", parsed.ParseError)
	}
	ids := parsed.Identifiers
	if !hasString(ids.Tables, "orders") {
		t.Fatalf("expected orders in tables, got %v", ids.Tables)
	}
	if !hasString(ids.Columns, "id") || !hasString(ids.Columns, "total") {
		t.Fatalf("expected id and total in columns, got %v", ids.Columns)
	}
}

func TestParseJoinRecordsBothTablesAndAlias(t *testing.T) {
	p := sqlparser.New(nil)
	sql := "SELECT o.id, c.name FROM orders o JOIN customers c ON o.customer = c.id"
	parsed := p.Parse(context.Background(), sql, dialect.SQLite.String())

	ids := parsed.Identifiers
	if !hasString(ids.Tables, "orders") || !hasString(ids.Tables, "customers") {
		t.Fatalf("expected both orders and customers, got %v", ids.Tables)
	}
	if ids.Aliases["o"] != "orders" || ids.Aliases["c"] != "customers" {
		t.Fatalf("expected alias map to resolve o->orders, c->customers, got %v", ids.Aliases)
	}
}

func TestParseCTEAliasIsMarked(t *testing.T) {
	p := sqlparser.New(nil)
	sql := "WITH recent AS (SELECT id FROM orders) SELECT id FROM recent"
	parsed := p.Parse(context.Background(), sql, dialect.SQLite.String())

	if parsed.Identifiers.Aliases["recent"] != sqlparser.AliasCTE {
		t.Fatalf("expected recent to be marked as a CTE alias, got %v", parsed.Identifiers.Aliases)
	}
}

func TestParseUnparseableFallsBackWithoutError(t *testing.T) {
	p := sqlparser.New(nil)
	parsed := p.Parse(context.Background(), "SELECT FROM WHERE !!garbage!!", "unspecified")
	if parsed.Identifiers == nil {
		t.Fatalf("expected a non-nil IdentifierSet even on fallback")
	}
}

func hasString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
