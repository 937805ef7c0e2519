// Package comparator implements the Result Comparator: it judges how
// closely an executed query's actual rows match a task's expected rows,
// selecting among exact, set-based, fuzzy, and schema-only strategies
// depending on how closely the two row sets' shapes agree.
package comparator

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const numericTolerance = 1e-6

// Strategy names the comparison approach Compare selected.
type Strategy string

const (
	StrategyExact      Strategy = "exact"
	StrategySetBased   Strategy = "set_based"
	StrategyFuzzy      Strategy = "fuzzy"
	StrategySchemaOnly Strategy = "schema_only"
)

// Result is the outcome of one Compare call.
type Result struct {
	Match      bool
	MatchScore float64
	Strategy   Strategy
	Details    string
}

// Row is one result row, keyed by column name.
type Row map[string]any

// Set is a full result set: an ordered column list and its ordered rows.
type Set struct {
	Columns []string
	Rows    []Row
}

// Compare judges actual against expected. expected may be nil, meaning no
// gold result was supplied for this task.
func Compare(actual *Set, expected *Set) Result {
	if expected == nil {
		return Result{Match: true, MatchScore: 1.0, Strategy: StrategySchemaOnly, Details: "no expected result"}
	}

	actualEmpty := actual == nil || len(actual.Rows) == 0
	expectedEmpty := len(expected.Rows) == 0
	if actualEmpty != expectedEmpty {
		return Result{Match: false, MatchScore: 0, Strategy: StrategyExact, Details: "one result set is empty and the other is not"}
	}
	if actualEmpty && expectedEmpty {
		return Result{Match: true, MatchScore: 1.0, Strategy: StrategyExact, Details: "both result sets are empty"}
	}

	if sameColumnOrder(actual.Columns, expected.Columns) {
		exact := compareExact(actual, expected)
		if exact.Match {
			return exact
		}
		if setResult := compareSetBased(actual, expected); setResult.MatchScore > exact.MatchScore {
			return setResult
		}
		return exact
	}
	if sameColumnSet(actual.Columns, expected.Columns) {
		return compareSetBased(actual, expected)
	}
	if len(actual.Columns) == len(expected.Columns) {
		return compareFuzzy(actual, expected)
	}

	return Result{Match: false, MatchScore: 0, Strategy: StrategyFuzzy, Details: "column arities differ; cannot align"}
}

func sameColumnOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

func sameColumnSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	setA := make(map[string]struct{}, len(a))
	for _, c := range a {
		setA[strings.ToLower(c)] = struct{}{}
	}
	for _, c := range b {
		if _, ok := setA[strings.ToLower(c)]; !ok {
			return false
		}
	}
	return true
}

// compareExact treats actual and expected as the same shape, same column
// order, same row order, and scores the fraction of row-position-identical
// cells.
func compareExact(actual, expected *Set) Result {
	rowCount := len(actual.Rows)
	if len(expected.Rows) > rowCount {
		rowCount = len(expected.Rows)
	}
	if rowCount == 0 {
		return Result{Match: true, MatchScore: 1.0, Strategy: StrategyExact}
	}

	matchingRows := 0
	for i := 0; i < len(actual.Rows) && i < len(expected.Rows); i++ {
		if rowsEqual(actual.Columns, actual.Rows[i], expected.Rows[i]) {
			matchingRows++
		}
	}

	score := float64(matchingRows) / float64(rowCount)
	return Result{
		Match:      score == 1.0,
		MatchScore: score,
		Strategy:   StrategyExact,
		Details:    fmt.Sprintf("%d/%d rows identical by position", matchingRows, rowCount),
	}
}

// compareSetBased treats the two row sets as unordered multisets of
// row-maps, scoring by Jaccard similarity.
func compareSetBased(actual, expected *Set) Result {
	actualKeys := rowKeys(actual.Columns, actual.Rows)
	expectedKeys := rowKeys(expected.Columns, expected.Rows)

	union := make(map[string]int)
	intersectionCount := 0

	counts := make(map[string]int)
	for _, k := range actualKeys {
		counts[k]++
		union[k] = 1
	}
	expectedCounts := make(map[string]int)
	for _, k := range expectedKeys {
		expectedCounts[k]++
		union[k] = 1
	}
	for k, c := range counts {
		ec := expectedCounts[k]
		if ec < c {
			intersectionCount += ec
		} else {
			intersectionCount += c
		}
	}

	unionSize := len(actualKeys) + len(expectedKeys) - intersectionCount
	score := 1.0
	if unionSize > 0 {
		score = float64(intersectionCount) / float64(unionSize)
	}

	return Result{
		Match:      score == 1.0,
		MatchScore: score,
		Strategy:   StrategySetBased,
		Details:    fmt.Sprintf("%d rows in common out of %d unique rows", intersectionCount, unionSize),
	}
}

// compareFuzzy handles mismatched column names with matching arity: it
// greedily aligns actual columns to expected columns by value-distribution
// similarity, then scores like compareSetBased under that alignment,
// penalizing misalignment by up to 0.3.
func compareFuzzy(actual, expected *Set) Result {
	alignment, misalignmentPenalty := alignColumns(actual, expected)

	remapped := &Set{Columns: expected.Columns, Rows: make([]Row, len(actual.Rows))}
	for i, row := range actual.Rows {
		newRow := make(Row, len(row))
		for actualCol, expectedCol := range alignment {
			newRow[expectedCol] = row[actualCol]
		}
		remapped.Rows[i] = newRow
	}

	setResult := compareSetBased(remapped, expected)
	score := setResult.MatchScore * (1 - misalignmentPenalty)

	return Result{
		Match:      false,
		MatchScore: score,
		Strategy:   StrategyFuzzy,
		Details:    fmt.Sprintf("aligned %d columns by value distribution, penalty %.2f", len(alignment), misalignmentPenalty),
	}
}

// alignColumns greedily pairs each actual column with the expected column
// whose value distribution (as a sorted sample of stringified values) is
// most similar, returning the alignment and a penalty in [0, 0.3]
// proportional to how many columns could not be paired by name at all.
func alignColumns(actual, expected *Set) (map[string]string, float64) {
	alignment := make(map[string]string)
	usedExpected := make(map[string]bool)
	exactByName := 0

	for _, col := range actual.Columns {
		best := ""
		bestScore := -1.0
		for _, ecol := range expected.Columns {
			if usedExpected[ecol] {
				continue
			}
			sim := distributionSimilarity(columnValues(actual, col), columnValues(expected, ecol))
			if strings.EqualFold(col, ecol) {
				exactByName++
				sim += 1.0
			}
			if sim > bestScore {
				bestScore = sim
				best = ecol
			}
		}
		if best != "" {
			alignment[col] = best
			usedExpected[best] = true
		}
	}

	penalty := 0.3 * (1 - float64(exactByName)/float64(max(1, len(actual.Columns))))
	return alignment, penalty
}

func columnValues(s *Set, col string) []string {
	out := make([]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		out = append(out, fmt.Sprintf("%v", row[col]))
	}
	return out
}

// distributionSimilarity compares two value samples as sorted multisets,
// returning the fraction of matched values.
func distributionSimilarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	sa := append([]string{}, a...)
	sb := append([]string{}, b...)
	sort.Strings(sa)
	sort.Strings(sb)

	matches := 0
	i, j := 0, 0
	for i < len(sa) && j < len(sb) {
		switch {
		case sa[i] == sb[j]:
			matches++
			i++
			j++
		case sa[i] < sb[j]:
			i++
		default:
			j++
		}
	}
	denom := max(len(sa), len(sb))
	if denom == 0 {
		return 1.0
	}
	return float64(matches) / float64(denom)
}

func rowKeys(columns []string, rows []Row) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		var parts []string
		for _, c := range columns {
			parts = append(parts, normalizeValue(row[c]))
		}
		out[i] = strings.Join(parts, "\x1f")
	}
	return out
}

func rowsEqual(columns []string, a, b Row) bool {
	for _, c := range columns {
		if !valuesEqual(a[c], b[c]) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return math.Abs(af-bf) <= numericTolerance
	}

	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return strings.EqualFold(as, bs)
	}

	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func normalizeValue(v any) string {
	if v == nil {
		return "\x00null"
	}
	if f, ok := toFloat(v); ok {
		return fmt.Sprintf("%.6f", f)
	}
	if s, ok := v.(string); ok {
		return strings.ToLower(s)
	}
	return fmt.Sprintf("%v", v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
