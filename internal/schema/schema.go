// Package schema is the dialect-agnostic representation of a database's
// structure: tables, columns, keys, and the foreign-key graph between them.
// A SchemaSnapshot is immutable once captured; an Engine Adapter produces a
// fresh one on introspect/refresh_schema.
package schema

import (
	"strings"
	"time"
)

// ColumnInfo describes one column of one table. Name comparisons performed
// by SchemaSnapshot/TableInfo are case-insensitive; the Name field itself
// retains its original casing for display.
type ColumnInfo struct {
	Name         string
	DataType     string
	Nullable     bool
	PrimaryKey   bool
	ForeignKey   string // "table.column", empty if none
	DefaultValue string
}

// TableInfo describes one table: its (optional) schema qualifier, its
// ordered columns, and an optional approximate row count.
type TableInfo struct {
	Name     string
	Schema   string
	Columns  []ColumnInfo
	RowCount *int64
}

// GetColumn returns the column named name (case-insensitive), or false if
// the table has no such column.
func (t TableInfo) GetColumn(name string) (ColumnInfo, bool) {
	lower := strings.ToLower(name)
	for _, c := range t.Columns {
		if strings.ToLower(c.Name) == lower {
			return c, true
		}
	}
	return ColumnInfo{}, false
}

// HasColumn reports whether the table has a column named name.
func (t TableInfo) HasColumn(name string) bool {
	_, ok := t.GetColumn(name)
	return ok
}

// ColumnNames returns the table's column names in declaration order.
func (t TableInfo) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// PrimaryKeys returns the names of every primary-key column, in declaration
// order.
func (t TableInfo) PrimaryKeys() []string {
	var out []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			out = append(out, c.Name)
		}
	}
	return out
}

// ForeignKey describes one FK constraint: a column in the owning table
// referencing a column in another table.
type ForeignKey struct {
	Column           string
	ReferencedTable  string
	ReferencedColumn string
	ConstraintName   string
}

// Snapshot is an immutable capture of a database's structure at a point in
// time, tagged with the dialect and database identifier it was captured
// from. It is the ground truth the Hallucination Detector judges identifier
// references against.
//
// Invariant: for every ForeignKey fk in ForeignKeys[t], Tables must contain
// fk.ReferencedTable and that table must have a column named
// fk.ReferencedColumn.
type Snapshot struct {
	Dialect      string
	Database     string
	Tables       map[string]TableInfo
	ForeignKeys  map[string][]ForeignKey
	CapturedAt   time.Time
}

// NewSnapshot builds an empty, ready-to-populate snapshot.
func NewSnapshot(dialectName, database string) *Snapshot {
	return &Snapshot{
		Dialect:     dialectName,
		Database:    database,
		Tables:      make(map[string]TableInfo),
		ForeignKeys: make(map[string][]ForeignKey),
		CapturedAt:  time.Now(),
	}
}

// AddTable registers a table in the snapshot, keyed case-insensitively.
func (s *Snapshot) AddTable(t TableInfo) {
	s.Tables[strings.ToLower(t.Name)] = t
}

// HasTable reports whether the snapshot has a table named name
// (case-insensitive).
func (s *Snapshot) HasTable(name string) bool {
	_, ok := s.Tables[strings.ToLower(name)]
	return ok
}

// GetTable returns the table named name (case-insensitive), or false.
func (s *Snapshot) GetTable(name string) (TableInfo, bool) {
	t, ok := s.Tables[strings.ToLower(name)]
	return t, ok
}

// HasColumn reports whether table has a column named column
// (case-insensitive on both).
func (s *Snapshot) HasColumn(table, column string) bool {
	t, ok := s.GetTable(table)
	if !ok {
		return false
	}
	return t.HasColumn(column)
}

// GetColumnAnywhere returns the names of every table (case as declared)
// that has a column named column, used to resolve bare/unqualified column
// references during hallucination detection.
func (s *Snapshot) GetColumnAnywhere(column string) []string {
	var out []string
	for _, t := range s.Tables {
		if t.HasColumn(column) {
			out = append(out, t.Name)
		}
	}
	return out
}

// TableNames returns every table name in the snapshot, original casing.
func (s *Snapshot) TableNames() []string {
	out := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		out = append(out, t.Name)
	}
	return out
}
