package analyzer

import (
	"regexp"
	"strings"

	"github.com/queryeval/kernel/internal/sqlparser"
)

// ComplexityLevel buckets a ComplexityReport's score into a human label.
type ComplexityLevel string

const (
	ComplexitySimple      ComplexityLevel = "simple"
	ComplexityModerate    ComplexityLevel = "moderate"
	ComplexityComplex     ComplexityLevel = "complex"
	ComplexityVeryComplex ComplexityLevel = "very_complex"
)

// ComplexityReport is the outcome of Analyzer.Complexity: a lexical +
// identifier-assisted count of every structural feature the query uses,
// plus the weighted score and level those counts map to. It is informational
// only — the Scorer does not fold it into any dimension directly.
type ComplexityReport struct {
	TableCount      int
	JoinCount       int
	SubqueryCount   int
	CTECount        int
	HasAggregation  bool
	HasWindowFunc   bool
	HasDistinct     bool
	HasSetOp        bool
	CaseCount       int
	WhereConditions int
	OrderByArity    int
	GroupByArity    int
	Score           float64
	Level           ComplexityLevel
}

var (
	joinPattern      = regexp.MustCompile(`(?i)\bJOIN\b`)
	subqueryCountPat = regexp.MustCompile(`(?i)\(\s*SELECT\b`)
	aggregatePattern = regexp.MustCompile(`(?i)\b(COUNT|SUM|AVG|MIN|MAX|GROUP_CONCAT|ARRAY_AGG)\s*\(`)
	windowFuncPat    = regexp.MustCompile(`(?i)\bOVER\s*\(`)
	setOpPattern     = regexp.MustCompile(`(?i)\b(UNION|INTERSECT|EXCEPT)\b`)
	casePattern      = regexp.MustCompile(`(?i)\bCASE\b`)
	wherePattern     = regexp.MustCompile(`(?is)\bWHERE\b(.*?)(?:\bGROUP\s+BY\b|\bORDER\s+BY\b|\bLIMIT\b|$)`)
	andOrPattern     = regexp.MustCompile(`(?i)\b(AND|OR)\b`)
	orderByPattern   = regexp.MustCompile(`(?is)\bORDER\s+BY\b(.*?)(?:\bLIMIT\b|$)`)
	groupByPattern   = regexp.MustCompile(`(?is)\bGROUP\s+BY\b(.*?)(?:\bHAVING\b|\bORDER\s+BY\b|\bLIMIT\b|$)`)
	ctePattern2      = regexp.MustCompile(`(?i)\bWITH\b`)
	distinctPattern  = regexp.MustCompile(`(?i)\bDISTINCT\b`)
)

// Complexity scores sql's structural complexity. ids, when available, gives
// a more reliable table count than lexical FROM/JOIN scanning alone.
func (a *Analyzer) Complexity(sql string, ids *sqlparser.IdentifierSet) ComplexityReport {
	report := ComplexityReport{}

	if ids != nil {
		report.TableCount = len(ids.Tables)
	}
	report.JoinCount = len(joinPattern.FindAllString(sql, -1))
	report.SubqueryCount = len(subqueryCountPat.FindAllString(sql, -1))
	if ctePattern2.MatchString(sql) {
		report.CTECount = countTopLevelCTEs(sql)
	}
	report.HasAggregation = aggregatePattern.MatchString(sql)
	report.HasWindowFunc = windowFuncPat.MatchString(sql)
	report.HasDistinct = distinctPattern.MatchString(sql)
	report.HasSetOp = setOpPattern.MatchString(sql)
	report.CaseCount = len(casePattern.FindAllString(sql, -1))

	if m := wherePattern.FindStringSubmatch(sql); len(m) > 1 {
		report.WhereConditions = len(andOrPattern.FindAllString(m[1], -1)) + 1
	}
	if m := orderByPattern.FindStringSubmatch(sql); len(m) > 1 {
		report.OrderByArity = countCommaItems(m[1])
	}
	if m := groupByPattern.FindStringSubmatch(sql); len(m) > 1 {
		report.GroupByArity = countCommaItems(m[1])
	}

	report.Score = complexityScore(report)
	report.Level = complexityLevel(report.Score)
	return report
}

func countTopLevelCTEs(sql string) int {
	// Every "name AS (" after the first WITH is counted as one CTE; the
	// count is not limited to the WITH clause, so a matching pattern later
	// in the query is counted too.
	re := regexp.MustCompile(`(?i)(\w+)\s+AS\s*\(`)
	idx := ctePattern2.FindStringIndex(sql)
	if idx == nil {
		return 0
	}
	return len(re.FindAllString(sql[idx[1]:], -1))
}

func countCommaItems(clause string) int {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return 0
	}
	depth := 0
	count := 1
	for _, r := range clause {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				count++
			}
		}
	}
	return count
}

// complexityScore weights each structural feature and applies a diminishing
// return by capping the counted features before weighting: 5 for
// tables/joins/where-conditions, 3 for CTEs/subqueries/order-by/group-by
// arity, matching the spec's fixed caps.
func complexityScore(r ComplexityReport) float64 {
	cap5 := func(n int) float64 {
		if n > 5 {
			return 5
		}
		return float64(n)
	}
	cap3 := func(n int) float64 {
		if n > 3 {
			return 3
		}
		return float64(n)
	}

	weighted := 0.0
	weighted += cap5(r.TableCount) * 0.08
	weighted += cap5(r.JoinCount) * 0.10
	weighted += cap3(r.SubqueryCount) * 0.12
	weighted += cap3(r.CTECount) * 0.10
	weighted += cap5(r.WhereConditions) * 0.06
	weighted += cap3(r.OrderByArity) * 0.05
	weighted += cap3(r.GroupByArity) * 0.05
	if r.HasAggregation {
		weighted += 0.08
	}
	if r.HasWindowFunc {
		weighted += 0.12
	}
	if r.HasDistinct {
		weighted += 0.05
	}
	if r.HasSetOp {
		weighted += 0.10
	}
	if r.CaseCount > 0 {
		weighted += 0.06
	}

	return clamp01(weighted)
}

func complexityLevel(score float64) ComplexityLevel {
	switch {
	case score < 0.2:
		return ComplexitySimple
	case score < 0.4:
		return ComplexityModerate
	case score < 0.7:
		return ComplexityComplex
	default:
		return ComplexityVeryComplex
	}
}
