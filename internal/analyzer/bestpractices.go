package analyzer

import (
	"regexp"
	"strings"

	"github.com/queryeval/kernel/internal/sqlparser"
)

// LintFinding is one best-practices observation: a penalty to the
// best_practices score plus, for some findings, a suggested fix.
type LintFinding struct {
	Rule       string
	Message    string
	Penalty    float64
	Suggestion string
}

// BestPracticesReport is the outcome of Analyzer.BestPractices.
type BestPracticesReport struct {
	Findings []LintFinding
	Score    float64
}

var (
	selectStarPattern = regexp.MustCompile(`(?i)SELECT\s+\*`)
	limitOnePattern   = regexp.MustCompile(`(?i)LIMIT\s+1\b`)
	commaJoinPattern  = regexp.MustCompile(`(?i)FROM\s+\w+(?:\s+\w+)?\s*,\s*\w+`)
	groupByAnchorPat  = regexp.MustCompile(`(?i)\bGROUP\s+BY\b`)
	joinClausePattern = regexp.MustCompile(`(?i)\bJOIN\b`)
)

// BestPractices lints sql for common anti-patterns the teacher's original
// query analyzer also flagged: SELECT *, a scanning query with no WHERE
// clause, implicit comma joins, DISTINCT layered on top of GROUP BY, and
// ambiguous unaliased tables in a multi-join query. Score starts at 1.0 and
// each finding subtracts its penalty, floored at 0.
func (a *Analyzer) BestPractices(sql string, ids *sqlparser.IdentifierSet) BestPracticesReport {
	report := BestPracticesReport{}
	upper := strings.ToUpper(sql)

	if selectStarPattern.MatchString(sql) {
		report.Findings = append(report.Findings, LintFinding{
			Rule:       "select_star",
			Message:    "SELECT * retrieves every column; name only the ones the query needs",
			Penalty:    0.1,
			Suggestion: "replace SELECT * with an explicit column list",
		})
	}

	if !strings.Contains(upper, "WHERE") && !limitOnePattern.MatchString(sql) &&
		!groupByAnchorPat.MatchString(sql) && !aggregatePattern.MatchString(sql) && !isConstantSelect(sql) {
		report.Findings = append(report.Findings, LintFinding{
			Rule:    "missing_where",
			Message: "query scans the table with no WHERE clause to narrow it",
			Penalty: 0.05,
		})
	}

	if commaJoinPattern.MatchString(sql) && !joinClausePattern.MatchString(sql) {
		report.Findings = append(report.Findings, LintFinding{
			Rule:       "implicit_comma_join",
			Message:    "comma-separated tables in FROM form an implicit join; prefer explicit JOIN ... ON",
			Penalty:    0.1,
			Suggestion: "rewrite the comma join as an explicit JOIN with an ON condition",
		})
	}

	if distinctPattern.MatchString(sql) && groupByAnchorPat.MatchString(sql) {
		report.Findings = append(report.Findings, LintFinding{
			Rule:    "distinct_with_group_by",
			Message: "DISTINCT is redundant on a query that already GROUPs BY a key that makes rows unique",
			Penalty: 0.05,
		})
	}

	if joinCount := len(joinClausePattern.FindAllString(sql, -1)); joinCount > 0 && ids != nil {
		if hasUnaliasedJoinedTable(sql, ids) {
			report.Findings = append(report.Findings, LintFinding{
				Rule:       "missing_table_alias",
				Message:    "a multi-table query references tables without short aliases, hurting readability",
				Penalty:    0,
				Suggestion: "alias each joined table (e.g. \"orders o JOIN customers c\")",
			})
		}
	}

	score := 1.0
	for _, f := range report.Findings {
		score -= f.Penalty
	}
	report.Score = clamp01(score)
	return report
}

func isConstantSelect(sql string) bool {
	return regexp.MustCompile(`(?i)SELECT\s+\d`).MatchString(sql) && !strings.Contains(strings.ToUpper(sql), "FROM")
}

func hasUnaliasedJoinedTable(sql string, ids *sqlparser.IdentifierSet) bool {
	if len(ids.Tables) < 2 {
		return false
	}
	aliasedTargets := make(map[string]bool)
	for _, target := range ids.Aliases {
		aliasedTargets[target] = true
	}
	for _, t := range ids.Tables {
		if !aliasedTargets[t] {
			return true
		}
	}
	return false
}
