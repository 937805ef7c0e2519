package analyzer

import (
	"fmt"
	"strings"
)

// SemanticReport is the outcome of Analyzer.SemanticAccuracy.
type SemanticReport struct {
	ValueAccuracy             float64
	DistributionSimilarity    float64
	NullHandlingConsistency   float64
	TypeConsistency           float64
	Score                     float64
}

// SemanticAccuracy compares actual and expected result sets over their
// common columns: numeric columns are scored on a 70/30 blend of
// mean-agreement and range-agreement, categorical columns on Jaccard
// similarity of their case-folded value sets. The four component scores
// combine as 0.50 value + 0.20 distribution + 0.15 null-handling + 0.15
// type-consistency.
func (a *Analyzer) SemanticAccuracy(actualCols []string, actual [][]any, expectedCols []string, expected [][]any) SemanticReport {
	common := commonColumns(actualCols, expectedCols)
	if len(common) == 0 {
		return SemanticReport{}
	}

	var valueScores, distScores, nullScores, typeScores []float64

	for _, col := range common {
		aVals := columnValuesOf(actualCols, actual, col)
		eVals := columnValuesOf(expectedCols, expected, col)

		aNums, aIsNumeric := allNumeric(aVals)
		eNums, eIsNumeric := allNumeric(eVals)

		if aIsNumeric && eIsNumeric && len(aNums) > 0 && len(eNums) > 0 {
			meanAgree := meanAgreement(aNums, eNums)
			rangeAgree := rangeAgreement(aNums, eNums)
			valueScores = append(valueScores, 0.7*meanAgree+0.3*rangeAgree)
			distScores = append(distScores, rangeAgree)
			typeScores = append(typeScores, 1.0)
		} else {
			jaccard := jaccardSimilarity(stringSet(aVals), stringSet(eVals))
			valueScores = append(valueScores, jaccard)
			distScores = append(distScores, jaccard)
			if aIsNumeric == eIsNumeric {
				typeScores = append(typeScores, 1.0)
			} else {
				typeScores = append(typeScores, 0.0)
			}
		}

		nullScores = append(nullScores, nullConsistency(aVals, eVals))
	}

	report := SemanticReport{
		ValueAccuracy:           average(valueScores),
		DistributionSimilarity:  average(distScores),
		NullHandlingConsistency: average(nullScores),
		TypeConsistency:         average(typeScores),
	}
	report.Score = clamp01(0.50*report.ValueAccuracy + 0.20*report.DistributionSimilarity +
		0.15*report.NullHandlingConsistency + 0.15*report.TypeConsistency)
	return report
}

func commonColumns(a, b []string) []string {
	bSet := make(map[string]struct{}, len(b))
	for _, c := range b {
		bSet[strings.ToLower(c)] = struct{}{}
	}
	var out []string
	for _, c := range a {
		if _, ok := bSet[strings.ToLower(c)]; ok {
			out = append(out, c)
		}
	}
	return out
}

func columnValuesOf(columns []string, rows [][]any, col string) []any {
	idx := -1
	for i, c := range columns {
		if strings.EqualFold(c, col) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		if idx < len(row) {
			out = append(out, row[idx])
		}
	}
	return out
}

func allNumeric(vals []any) ([]float64, bool) {
	var out []float64
	for _, v := range vals {
		if v == nil {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
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

func meanAgreement(a, b []float64) float64 {
	am, bm := mean(a), mean(b)
	if am == 0 && bm == 0 {
		return 1.0
	}
	denom := maxFloat(absFloat(am), absFloat(bm))
	if denom == 0 {
		return 1.0
	}
	diff := absFloat(am-bm) / denom
	return clamp01(1 - diff)
}

func rangeAgreement(a, b []float64) float64 {
	aMin, aMax := minMax(a)
	bMin, bMax := minMax(b)
	aRange := aMax - aMin
	bRange := bMax - bMin
	if aRange == 0 && bRange == 0 {
		return 1.0
	}
	denom := maxFloat(aRange, bRange)
	if denom == 0 {
		return 1.0
	}
	diff := absFloat(aRange-bRange) / denom
	return clamp01(1 - diff)
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func minMax(v []float64) (float64, float64) {
	if len(v) == 0 {
		return 0, 0
	}
	min, max := v[0], v[0]
	for _, x := range v[1:] {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, max
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func stringSet(vals []any) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[strings.ToLower(fmt.Sprintf("%v", v))] = struct{}{}
	}
	return set
}

func jaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

func nullConsistency(a, b []any) float64 {
	aNulls := countNulls(a)
	bNulls := countNulls(b)
	aFrac := fraction(aNulls, len(a))
	bFrac := fraction(bNulls, len(b))
	return clamp01(1 - absFloat(aFrac-bFrac))
}

func countNulls(vals []any) int {
	n := 0
	for _, v := range vals {
		if v == nil {
			n++
		}
	}
	return n
}

func fraction(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func average(v []float64) float64 {
	if len(v) == 0 {
		return 1.0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
