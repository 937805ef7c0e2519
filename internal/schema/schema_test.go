package schema_test

import (
	"testing"

	"github.com/queryeval/kernel/internal/schema"
)

func buildOrdersSnapshot() *schema.Snapshot {
	s := schema.NewSnapshot("sqlite", "bench")
	s.AddTable(schema.TableInfo{
		Name: "orders",
		Columns: []schema.ColumnInfo{
			{Name: "id", DataType: "INTEGER", PrimaryKey: true},
			{Name: "customer", DataType: "TEXT"},
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

func TestHasTableCaseInsensitive(t *testing.T) {
	s := buildOrdersSnapshot()
	if !s.HasTable("ORDERS") {
		t.Fatalf("expected case-insensitive table lookup to succeed")
	}
	if s.HasTable("invoices") {
		t.Fatalf("did not expect invoices to exist")
	}
}

func TestHasColumnImpliesHasTable(t *testing.T) {
	s := buildOrdersSnapshot()
	if !s.HasColumn("orders", "CUSTOMER") {
		t.Fatalf("expected case-insensitive column lookup to succeed")
	}
	if s.HasColumn("missing_table", "id") {
		t.Fatalf("HasColumn should be false when the table does not exist")
	}
}

func TestGetColumnAnywhere(t *testing.T) {
	s := buildOrdersSnapshot()
	tables := s.GetColumnAnywhere("id")
	if len(tables) != 2 {
		t.Fatalf("expected id to be found in 2 tables, got %d: %v", len(tables), tables)
	}

	none := s.GetColumnAnywhere("nonexistent_column")
	if len(none) != 0 {
		t.Fatalf("expected no tables for nonexistent_column, got %v", none)
	}
}

func TestTableInfoPrimaryKeys(t *testing.T) {
	s := buildOrdersSnapshot()
	orders, ok := s.GetTable("orders")
	if !ok {
		t.Fatalf("expected orders table to exist")
	}
	pks := orders.PrimaryKeys()
	if len(pks) != 1 || pks[0] != "id" {
		t.Fatalf("expected primary key [id], got %v", pks)
	}
}
