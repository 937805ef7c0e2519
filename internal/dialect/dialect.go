// Package dialect holds the process-wide registry of supported SQL
// dialects: their parser name, feature flags, and built-in function sets.
// The registry is built once at init and is read-only thereafter.
package dialect

import (
	"fmt"
	"strings"
)

// Name is a tagged value drawn from the closed dialect set.
type Name string

// String implements fmt.Stringer.
func (n Name) String() string {
	return string(n)
}

const (
	SQLite     Name = "sqlite"
	DuckDB     Name = "duckdb"
	Postgres   Name = "postgresql"
	BigQuery   Name = "bigquery"
	Snowflake  Name = "snowflake"
	MySQL      Name = "mysql"
)

// Dialect describes one member of the closed dialect set: its parser name,
// default schema, feature flags, and built-in function vocabulary.
type Dialect struct {
	Name                   Name
	ParserName             string
	DefaultSchema          string
	SupportsSchemas        bool
	SupportsCTE            bool
	SupportsWindowFuncs    bool
	SupportsJSON           bool
	SupportsArrays         bool
	PerformanceFactor      float64
	BuiltinFunctions       map[string]struct{}
	Description            string
}

// HasFunction reports whether name (any case) is a declared built-in of d.
func (d Dialect) HasFunction(name string) bool {
	_, ok := d.BuiltinFunctions[strings.ToUpper(name)]
	return ok
}

// UnknownDialectError is returned by Get when name does not match any
// registered dialect.
type UnknownDialectError struct {
	Name string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("unknown dialect: %q", e.Name)
}

// Registry is a case-insensitive, read-only lookup of the closed dialect
// set plus the cross-dialect function alias table used by the hallucination
// detector to avoid flagging valid-but-aliased functions as phantom.
type Registry struct {
	byName       map[string]Dialect
	functionAlias map[string][]string
}

// NewRegistry builds the standard registry of all six dialects. Called once
// at process startup; the result should be treated as immutable.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]Dialect),
		functionAlias: map[string][]string{
			// canonical -> aliases recognized as equivalent across dialects.
			"LENGTH":            {"LEN"},
			"SUBSTRING":         {"SUBSTR"},
			"POSITION":          {"CHARINDEX"},
			"INSTR":             {"CHARINDEX"},
			"COALESCE":          {"ISNULL", "NVL", "IFNULL"},
			"IFNULL":            {"ISNULL", "NVL"},
			"NOW":               {"GETDATE"},
			"CURRENT_TIMESTAMP": {"GETDATE"},
			"EXTRACT":           {"DATEPART"},
			"DATE_PART":         {"DATEPART"},
			"DATE_DIFF":         {"DATEDIFF"},
			"TIMESTAMPDIFF":     {"DATEDIFF"},
			"DATE_ADD":          {"DATEADD"},
			"TIMESTAMPADD":      {"DATEADD"},
			"INTEGER":           {"INT"},
			"CAST":              {"INT"},
			"TEXT":              {"VARCHAR"},
			"STRING":            {"VARCHAR"},
		},
	}

	for _, d := range []Dialect{
		{
			Name: SQLite, ParserName: "sqlite", DefaultSchema: "",
			SupportsSchemas: false, SupportsCTE: true, SupportsWindowFuncs: true,
			SupportsJSON: true, SupportsArrays: false, PerformanceFactor: 0.5,
			Description:      "Embedded, single-file, dynamically typed",
			BuiltinFunctions: builtinSet(sqliteFunctions),
		},
		{
			Name: DuckDB, ParserName: "duckdb", DefaultSchema: "main",
			SupportsSchemas: true, SupportsCTE: true, SupportsWindowFuncs: true,
			SupportsJSON: true, SupportsArrays: true, PerformanceFactor: 1.0,
			Description:      "Embedded, columnar, analytical",
			BuiltinFunctions: builtinSet(duckdbFunctions),
		},
		{
			Name: Postgres, ParserName: "postgres", DefaultSchema: "public",
			SupportsSchemas: true, SupportsCTE: true, SupportsWindowFuncs: true,
			SupportsJSON: true, SupportsArrays: true, PerformanceFactor: 1.5,
			Description:      "Server-based, general purpose",
			BuiltinFunctions: builtinSet(postgresFunctions),
		},
		{
			Name: BigQuery, ParserName: "bigquery", DefaultSchema: "",
			SupportsSchemas: true, SupportsCTE: true, SupportsWindowFuncs: true,
			SupportsJSON: true, SupportsArrays: true, PerformanceFactor: 10.0,
			Description:      "Cloud-analytical, serverless",
			BuiltinFunctions: builtinSet(bigqueryFunctions),
		},
		{
			Name: Snowflake, ParserName: "snowflake", DefaultSchema: "public",
			SupportsSchemas: true, SupportsCTE: true, SupportsWindowFuncs: true,
			SupportsJSON: true, SupportsArrays: true, PerformanceFactor: 10.0,
			Description:      "Cloud-analytical, server-based",
			BuiltinFunctions: builtinSet(snowflakeFunctions),
		},
		{
			Name: MySQL, ParserName: "mysql", DefaultSchema: "",
			SupportsSchemas: true, SupportsCTE: true, SupportsWindowFuncs: true,
			SupportsJSON: true, SupportsArrays: false, PerformanceFactor: 1.2,
			Description:      "Server-based, general purpose",
			BuiltinFunctions: builtinSet(mysqlFunctions),
		},
	} {
		r.byName[strings.ToLower(string(d.Name))] = d
	}

	return r
}

// Get looks up a dialect by name, case-insensitively.
func (r *Registry) Get(name string) (Dialect, error) {
	d, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return Dialect{}, &UnknownDialectError{Name: name}
	}
	return d, nil
}

// All returns every registered dialect, in registration order is not
// guaranteed (map iteration); callers needing stable order should sort.
func (r *Registry) All() []Dialect {
	out := make([]Dialect, 0, len(r.byName))
	for _, d := range r.byName {
		out = append(out, d)
	}
	return out
}

// IsFunctionAlias reports whether candidate is a known cross-dialect alias
// of canonical (case-insensitive on both sides).
func (r *Registry) IsFunctionAlias(candidate, canonical string) bool {
	aliases, ok := r.functionAlias[strings.ToUpper(canonical)]
	if !ok {
		return false
	}
	candidate = strings.ToUpper(candidate)
	for _, a := range aliases {
		if a == candidate {
			return true
		}
	}
	return false
}

// FunctionAliasTable returns the full canonical-to-aliases map. Callers
// should treat the result as read-only.
func (r *Registry) FunctionAliasTable() map[string][]string {
	return r.functionAlias
}

// AliasesOf returns every alias recognized for the canonical function name,
// for callers (like the detector) that need to probe in the other
// direction: given a phantom function name, is it an alias of something the
// dialect does support.
func (r *Registry) AliasesOf(canonical string) []string {
	return r.functionAlias[strings.ToUpper(canonical)]
}

// ResolvesTo reports whether name (as written in a query) is either the
// canonical spelling of fn in d's builtin set, or a recognized alias of it.
func (r *Registry) ResolvesTo(d Dialect, name string) bool {
	upper := strings.ToUpper(name)
	if d.HasFunction(upper) {
		return true
	}
	for canonical := range d.BuiltinFunctions {
		if r.IsFunctionAlias(upper, canonical) {
			return true
		}
	}
	return false
}

func builtinSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToUpper(n)] = struct{}{}
	}
	return set
}
