// Package hallucination detects phantom identifiers in parsed SQL: tables,
// columns, and functions referenced by a query that do not exist against a
// given schema.Snapshot or dialect.Dialect. It is the LLM-output safety net
// the rest of the kernel treats as a correctness signal, not an afterthought.
package hallucination

import (
	"context"
	"fmt"
	"strings"

	"github.com/queryeval/kernel/internal/dialect"
	"github.com/queryeval/kernel/internal/schema"
	"github.com/queryeval/kernel/internal/sqlparser"
)

// skipFunctionNames are AST artifacts the extractor sometimes surfaces as a
// "function" that is really a parse-tree node, not a callable identifier.
var skipFunctionNames = map[string]struct{}{
	"ANONYMOUS": {}, "PAREN": {}, "BRACKET": {}, "SUBQUERY": {},
	"PLACEHOLDER": {}, "LITERAL": {}, "STAR": {},
}

// Report is the result of Detect: every phantom identifier found, grouped
// by kind, plus a single hallucination_score in [0, 1] where 0 means no
// phantom identifiers were found and 1 means every identifier referenced is
// phantom (or the query could not be parsed at all).
type Report struct {
	PhantomTables    []string
	PhantomColumns   []string
	PhantomFunctions []string
	Dialect          string
	Score            float64
	// WeightedScore applies per-kind severity weights (table 1.0, column
	// 0.8, function 0.6) to the phantom count and runs the result through a
	// diminishing-returns curve, so that one phantom table hurts more than
	// one phantom function and a second hallucination of any kind hurts
	// much less than the first. It feeds the Scorer's safety dimension; the
	// plain Score above feeds everything else.
	WeightedScore float64
}

const (
	weightPhantomTable    = 1.0
	weightPhantomColumn   = 0.8
	weightPhantomFunction = 0.6
)

// severityDiminishingReturns applies the same "first hit hurts most"
// curve the error-taxonomy aggregate score uses: score = 1 - 0.6p for
// p<1; 0.4 - 0.3(p-1) for 1<=p<2; else max(0, 0.1 - 0.05(p-2)).
func severityDiminishingReturns(p float64) float64 {
	switch {
	case p < 1:
		return 1 - 0.6*p
	case p < 2:
		return 0.4 - 0.3*(p-1)
	default:
		v := 0.1 - 0.05*(p-2)
		if v < 0 {
			return 0
		}
		return v
	}
}

// TotalHallucinations is the combined count of every phantom identifier.
func (r Report) TotalHallucinations() int {
	return len(r.PhantomTables) + len(r.PhantomColumns) + len(r.PhantomFunctions)
}

// HasHallucinations reports whether any phantom identifier was found.
func (r Report) HasHallucinations() bool {
	return r.TotalHallucinations() > 0
}

// ValidationResult wraps a Report as pass/fail validation output: phantom
// tables and columns become errors (the query cannot be correct), phantom
// functions become warnings only, since an unrecognized function may be a
// legitimate user-defined function the dialect registry simply doesn't know
// about.
type ValidationResult struct {
	IsValid bool
	Errors  []string
	Warnings []string
	Report  Report
}

// Detector finds phantom identifiers for one default dialect, overridable
// per call.
type Detector struct {
	registry       *dialect.Registry
	parser         *sqlparser.Parser
	defaultDialect string
}

// New builds a Detector backed by registry and parser, defaulting to
// defaultDialect when a call does not specify one.
func New(registry *dialect.Registry, parser *sqlparser.Parser, defaultDialect string) *Detector {
	return &Detector{registry: registry, parser: parser, defaultDialect: defaultDialect}
}

// Detect parses sql and compares its identifier references against schema
// and dialectName (falling back to the Detector's default when empty).
// A SQL text the parser cannot make any sense of yields a Report with
// Score=1.0 under the same "can't validate, assume worst case" policy the
// reference detector uses: an uninterpretable query cannot be trusted.
func (d *Detector) Detect(ctx context.Context, sql string, snap *schema.Snapshot, dialectName string) Report {
	if dialectName == "" {
		dialectName = d.defaultDialect
	}

	parsed := d.parser.Parse(ctx, sql, dialectName)
	if !parsed.IsValid {
		return Report{Dialect: dialectName, Score: 1.0, WeightedScore: 0}
	}

	ids := parsed.Identifiers
	phantomTables := d.detectPhantomTables(ids.Tables, ids.Aliases, snap)
	phantomColumns := d.detectPhantomColumns(ids, snap)
	phantomFunctions := d.detectPhantomFunctions(ids.Functions, dialectName)

	totalIdentifiers := len(ids.Tables) + len(ids.Columns) + len(ids.Functions)
	totalPhantoms := len(phantomTables) + len(phantomColumns) + len(phantomFunctions)

	score := 0.0
	if totalIdentifiers > 0 {
		score = float64(totalPhantoms) / float64(totalIdentifiers)
	} else if totalPhantoms > 0 {
		score = 1.0
	}

	weightedSeverity := float64(len(phantomTables))*weightPhantomTable +
		float64(len(phantomColumns))*weightPhantomColumn +
		float64(len(phantomFunctions))*weightPhantomFunction

	return Report{
		PhantomTables:    phantomTables,
		PhantomColumns:   phantomColumns,
		PhantomFunctions: phantomFunctions,
		Dialect:          dialectName,
		Score:            round4(score),
		WeightedScore:    round4(severityDiminishingReturns(weightedSeverity)),
	}
}

// Validate runs Detect and translates its Report into pass/fail errors and
// warnings.
func (d *Detector) Validate(ctx context.Context, sql string, snap *schema.Snapshot, dialectName string) ValidationResult {
	if dialectName == "" {
		dialectName = d.defaultDialect
	}
	report := d.Detect(ctx, sql, snap, dialectName)

	var errors, warnings []string
	for _, t := range report.PhantomTables {
		errors = append(errors, fmt.Sprintf("table %q does not exist in schema", t))
	}
	for _, c := range report.PhantomColumns {
		errors = append(errors, fmt.Sprintf("column %q does not exist", c))
	}
	for _, fn := range report.PhantomFunctions {
		warnings = append(warnings, fmt.Sprintf("function %q may not be valid for %s", fn, dialectName))
	}

	return ValidationResult{
		IsValid:  len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
		Report:   report,
	}
}

func (d *Detector) detectPhantomTables(tables []string, aliases map[string]string, snap *schema.Snapshot) []string {
	cteAliases := make(map[string]struct{})
	for alias, target := range aliases {
		if target == sqlparser.AliasCTE || target == sqlparser.AliasSubquery {
			cteAliases[alias] = struct{}{}
		}
	}

	var phantom []string
	for _, table := range tables {
		if _, ok := cteAliases[table]; ok {
			continue
		}
		parts := strings.Split(table, ".")
		bare := parts[len(parts)-1]
		if !snap.HasTable(bare) && !snap.HasTable(table) {
			phantom = append(phantom, table)
		}
	}
	return phantom
}

func (d *Detector) detectPhantomColumns(ids *sqlparser.IdentifierSet, snap *schema.Snapshot) []string {
	validColumns := make(map[string]struct{})
	validQualified := make(map[string]struct{})

	for alias := range ids.SelectAliases {
		validColumns[alias] = struct{}{}
	}

	for cteName, cols := range ids.CTEColumns {
		for col := range cols {
			validColumns[col] = struct{}{}
			validQualified[cteName+"."+col] = struct{}{}
		}
	}

	for _, table := range ids.Tables {
		parts := strings.Split(table, ".")
		bare := parts[len(parts)-1]
		tableInfo, ok := snap.GetTable(bare)
		if !ok {
			tableInfo, ok = snap.GetTable(table)
		}
		if !ok {
			continue
		}
		for _, col := range tableInfo.Columns {
			colLower := strings.ToLower(col.Name)
			validColumns[colLower] = struct{}{}
			validQualified[strings.ToLower(bare)+"."+colLower] = struct{}{}
			for alias, target := range ids.Aliases {
				if target == bare || target == table {
					validQualified[strings.ToLower(alias)+"."+colLower] = struct{}{}
				}
			}
		}
	}

	for alias, actual := range ids.Aliases {
		aliasLower := strings.ToLower(alias)
		if actual == sqlparser.AliasCTE || actual == sqlparser.AliasSubquery {
			if cols, ok := ids.CTEColumns[aliasLower]; ok {
				for col := range cols {
					validQualified[aliasLower+"."+col] = struct{}{}
				}
			}
			continue
		}
		tableInfo, ok := snap.GetTable(actual)
		if !ok {
			continue
		}
		for _, col := range tableInfo.Columns {
			colLower := strings.ToLower(col.Name)
			validColumns[colLower] = struct{}{}
			validQualified[aliasLower+"."+colLower] = struct{}{}
		}
	}

	var phantom []string
	for _, col := range ids.Columns {
		colLower := strings.ToLower(col)

		if _, ok := ids.SelectAliases[colLower]; ok {
			continue
		}
		if _, ok := validQualified[colLower]; ok {
			continue
		}
		if !strings.Contains(col, ".") {
			if _, ok := validColumns[colLower]; ok {
				continue
			}
			if !d.existsAnywhere(snap, colLower) {
				phantom = append(phantom, col)
			}
			continue
		}

		parts := strings.Split(col, ".")
		tablePart := strings.ToLower(parts[0])
		colPart := strings.ToLower(parts[len(parts)-1])

		if cols, ok := ids.CTEColumns[tablePart]; ok {
			if _, found := cols[colPart]; found {
				continue
			}
		}

		if actual, isAlias := lookupAliasCaseInsensitive(ids.Aliases, tablePart); isAlias {
			if actual == sqlparser.AliasCTE || actual == sqlparser.AliasSubquery {
				if cols, known := ids.CTEColumns[tablePart]; known && cols != nil {
					if _, found := cols[colPart]; found {
						continue
					}
				} else {
					// Unknown CTE/subquery column set: prefer a false
					// negative over a false positive.
					continue
				}
			}
		}

		if _, ok := validColumns[colPart]; ok {
			continue
		}
		if d.existsAnywhere(snap, colPart) {
			continue
		}
		phantom = append(phantom, col)
	}

	return phantom
}

func lookupAliasCaseInsensitive(aliases map[string]string, lowerAlias string) (string, bool) {
	for a, t := range aliases {
		if strings.ToLower(a) == lowerAlias {
			return t, true
		}
	}
	return "", false
}

func (d *Detector) existsAnywhere(snap *schema.Snapshot, columnLower string) bool {
	for _, t := range snap.Tables {
		if t.HasColumn(columnLower) {
			return true
		}
	}
	return false
}

func (d *Detector) detectPhantomFunctions(functions []string, dialectName string) []string {
	dia, err := d.registry.Get(dialectName)
	if err != nil {
		return nil
	}

	var phantom []string
	for _, fn := range functions {
		upper := strings.ToUpper(fn)
		if _, skip := skipFunctionNames[upper]; skip {
			continue
		}
		if dia.HasFunction(upper) {
			continue
		}
		if d.registry.ResolvesTo(dia, upper) {
			continue
		}
		phantom = append(phantom, fn)
	}
	return phantom
}

func round4(f float64) float64 {
	return float64(int(f*10000+0.5)) / 10000
}
