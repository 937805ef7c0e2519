package analyzer

import (
	"regexp"
	"strconv"
	"strings"
)

// ScanType classifies the access method a plan node reports.
type ScanType string

const (
	ScanUnknown   ScanType = "unknown"
	ScanFullTable ScanType = "full_table_scan"
	ScanIndex     ScanType = "index_scan"
)

// PlanReport is the outcome of Analyzer.Plan: the access pattern detected in
// an engine's EXPLAIN output, any numeric cost/row estimates it could
// extract, the resulting plan_score, and human-readable suggestions.
type PlanReport struct {
	ScanType    ScanType
	CostEstimate float64
	HasCost      bool
	RowEstimate  int64
	HasRows      bool
	Score        float64
	Suggestions  []string
}

var (
	fullScanPattern  = regexp.MustCompile(`(?i)seq scan|table scan`)
	indexScanPattern = regexp.MustCompile(`(?i)index scan|index seek`)
	costPattern      = regexp.MustCompile(`(?i)cost=[\d.]+\.\.([\d.]+)`)
	rowsPattern      = regexp.MustCompile(`(?i)rows=(\d+)`)
)

// Plan analyzes raw engine plan text. Empty planText yields a neutral
// PlanReport with Score 1.0, since "no plan supplied" must not penalize a
// query that was never asked to produce one.
func (a *Analyzer) Plan(planText string) PlanReport {
	if strings.TrimSpace(planText) == "" {
		return PlanReport{ScanType: ScanUnknown, Score: 1.0}
	}

	report := PlanReport{ScanType: ScanUnknown}
	switch {
	case fullScanPattern.MatchString(planText):
		report.ScanType = ScanFullTable
	case indexScanPattern.MatchString(planText):
		report.ScanType = ScanIndex
	}

	if m := costPattern.FindStringSubmatch(planText); len(m) > 1 {
		if cost, err := strconv.ParseFloat(m[1], 64); err == nil {
			report.CostEstimate = cost
			report.HasCost = true
		}
	}
	if m := rowsPattern.FindStringSubmatch(planText); len(m) > 1 {
		if rows, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			report.RowEstimate = rows
			report.HasRows = true
		}
	}

	score := 1.0
	switch report.ScanType {
	case ScanFullTable:
		score -= 0.3
		report.Suggestions = append(report.Suggestions, "consider adding an index to avoid the full table scan")
	case ScanIndex:
		score += 0.1
	}
	if report.HasCost && report.CostEstimate > 10000 {
		score -= 0.2
		report.Suggestions = append(report.Suggestions, "estimated cost is high; review the query's filters and joins")
	}
	if report.HasRows && report.RowEstimate > 100000 {
		score -= 0.15
		report.Suggestions = append(report.Suggestions, "estimated row count is large; consider narrowing the WHERE clause")
	}

	report.Score = clamp01(score)
	return report
}
