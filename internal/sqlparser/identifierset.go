// Package sqlparser parses SQL text into an AST for a named dialect and
// extracts the identifier references (tables, columns, functions, aliases)
// that the Hallucination Detector judges against a SchemaSnapshot.
package sqlparser

import "strings"

// Sentinel alias targets: an alias maps to one of these instead of a real
// table name when it names a CTE or a derived subquery.
const (
	AliasCTE      = "(cte)"
	AliasSubquery = "(subquery)"
)

// IdentifierSet holds every identifier reference extracted from one parsed
// query: the tables and columns it touches, the functions it calls, its
// alias map, its SELECT-list output aliases, and the column sets produced
// by its CTEs/subqueries.
type IdentifierSet struct {
	Tables    []string
	Columns   []string
	Functions []string

	// Aliases maps an alias name to the underlying table name it stands
	// for, or to AliasCTE/AliasSubquery when the alias names a CTE or a
	// derived subquery rather than a real table.
	Aliases map[string]string

	// SelectAliases holds the lowercased output-column aliases declared in
	// any SELECT list (top-level or nested), used to suppress false-
	// positive phantom-column findings on computed output columns.
	SelectAliases map[string]struct{}

	// CTEColumns maps a lowercased CTE/subquery alias to the set of column
	// names it produces.
	CTEColumns map[string]map[string]struct{}
}

// NewIdentifierSet returns an IdentifierSet with every map initialized.
func NewIdentifierSet() *IdentifierSet {
	return &IdentifierSet{
		Aliases:       make(map[string]string),
		SelectAliases: make(map[string]struct{}),
		CTEColumns:    make(map[string]map[string]struct{}),
	}
}

// AddTable appends table to Tables if not already present (case-sensitive,
// since qualified forms may legitimately differ only in case of the
// original text; deduplication of semantically-equal-but-differently-cased
// names is the Hallucination Detector's concern, not the parser's).
func (s *IdentifierSet) AddTable(table string) {
	if table == "" {
		return
	}
	if !contains(s.Tables, table) {
		s.Tables = append(s.Tables, table)
	}
}

// AddColumn appends column to Columns if not already present.
func (s *IdentifierSet) AddColumn(column string) {
	if column == "" {
		return
	}
	if !contains(s.Columns, column) {
		s.Columns = append(s.Columns, column)
	}
}

// AddFunction appends the uppercased canonical name of fn to Functions if
// not already present.
func (s *IdentifierSet) AddFunction(fn string) {
	upper := strings.ToUpper(fn)
	if upper == "" {
		return
	}
	if !contains(s.Functions, upper) {
		s.Functions = append(s.Functions, upper)
	}
}

// SetAlias records alias -> target, where target is either an underlying
// table name or one of AliasCTE/AliasSubquery.
func (s *IdentifierSet) SetAlias(alias, target string) {
	if alias == "" {
		return
	}
	s.Aliases[alias] = target
}

// AddSelectAlias records a lowercased SELECT-list output alias.
func (s *IdentifierSet) AddSelectAlias(alias string) {
	if alias == "" {
		return
	}
	s.SelectAliases[strings.ToLower(alias)] = struct{}{}
}

// AddCTEColumn records that cteName (lowercased by the caller) produces a
// column named column.
func (s *IdentifierSet) AddCTEColumn(cteName, column string) {
	if cteName == "" || column == "" {
		return
	}
	set, ok := s.CTEColumns[cteName]
	if !ok {
		set = make(map[string]struct{})
		s.CTEColumns[cteName] = set
	}
	set[strings.ToLower(column)] = struct{}{}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// ParsedSQL is the total result of one parse attempt: it always has a
// value, even on failure (IsValid=false, ParseError set).
type ParsedSQL struct {
	Dialect     string
	RawSQL      string
	Identifiers *IdentifierSet
	IsValid     bool
	ParseError  string

	// ast holds the opaque parse tree, when one is available. Downstream
	// components depend only on Identifiers, never on this field's shape,
	// so the parser implementation can be swapped freely.
	ast any
}

// QueryType returns a best-effort uppercase statement kind (SELECT, INSERT,
// UPDATE, DELETE, WITH, UNKNOWN), derived lexically from the raw text since
// the AST is intentionally opaque to callers.
func (p *ParsedSQL) QueryType() string {
	trimmed := strings.TrimSpace(p.RawSQL)
	upper := strings.ToUpper(trimmed)
	for _, kw := range []string{"SELECT", "INSERT", "UPDATE", "DELETE", "WITH", "CREATE", "ALTER", "DROP"} {
		if strings.HasPrefix(upper, kw) {
			return kw
		}
	}
	return "UNKNOWN"
}

// IsSelect reports whether the parsed statement is (or begins with a CTE
// feeding) a row-returning SELECT.
func (p *ParsedSQL) IsSelect() bool {
	qt := p.QueryType()
	return qt == "SELECT" || qt == "WITH"
}
