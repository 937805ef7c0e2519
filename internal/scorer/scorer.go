// Package scorer implements the Scorer: it combines every other component's
// output into one MultiDimensionalScore, a weighted blend of per-dimension
// floats in [0, 1] that is the kernel's final verdict on one evaluated
// query.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/queryeval/kernel/internal/analyzer"
	"github.com/queryeval/kernel/internal/comparator"
	"github.com/queryeval/kernel/internal/executor"
	"github.com/queryeval/kernel/internal/hallucination"
)

// Dimension names every scored axis of a MultiDimensionalScore.
type Dimension string

const (
	DimensionCorrectness        Dimension = "correctness"
	DimensionSafety             Dimension = "safety"
	DimensionEfficiency         Dimension = "efficiency"
	DimensionResultCompleteness Dimension = "result_completeness"
	DimensionSemanticAccuracy   Dimension = "semantic_accuracy"
	DimensionBestPractices      Dimension = "best_practices"
	DimensionPlanQuality        Dimension = "plan_quality"
)

// DefaultWeights is the "default" preset: a balanced blend weighted toward
// correctness and safety, which the spec treats as the two dimensions that
// most directly measure whether a generated query is trustworthy.
var DefaultWeights = map[Dimension]float64{
	DimensionCorrectness:        0.35,
	DimensionSafety:             0.20,
	DimensionEfficiency:         0.15,
	DimensionResultCompleteness: 0.10,
	DimensionSemanticAccuracy:   0.10,
	DimensionBestPractices:      0.05,
	DimensionPlanQuality:        0.05,
}

// StrictWeights puts almost all its weight on correctness and safety, for
// evaluating contexts where a wrong or unsafe answer is disqualifying
// regardless of how fast or well-written it is.
var StrictWeights = map[Dimension]float64{
	DimensionCorrectness:        0.45,
	DimensionSafety:             0.30,
	DimensionEfficiency:         0.10,
	DimensionResultCompleteness: 0.05,
	DimensionSemanticAccuracy:   0.05,
	DimensionBestPractices:      0.025,
	DimensionPlanQuality:        0.025,
}

// PerformanceWeights shifts weight toward efficiency and plan quality, for
// workloads where correctness is assumed and execution speed is what's
// under test.
var PerformanceWeights = map[Dimension]float64{
	DimensionCorrectness:        0.25,
	DimensionSafety:             0.10,
	DimensionEfficiency:         0.35,
	DimensionResultCompleteness: 0.05,
	DimensionSemanticAccuracy:   0.05,
	DimensionBestPractices:      0.05,
	DimensionPlanQuality:        0.15,
}

// QualityWeights shifts weight toward best practices, plan quality and
// semantic accuracy, for workloads judging how well-written the query is
// rather than only whether it ran and returned the right rows.
var QualityWeights = map[Dimension]float64{
	DimensionCorrectness:        0.25,
	DimensionSafety:             0.15,
	DimensionEfficiency:         0.10,
	DimensionResultCompleteness: 0.10,
	DimensionSemanticAccuracy:   0.15,
	DimensionBestPractices:      0.15,
	DimensionPlanQuality:        0.10,
}

var presets = map[string]map[Dimension]float64{
	"default":     DefaultWeights,
	"strict":      StrictWeights,
	"performance": PerformanceWeights,
	"quality":     QualityWeights,
}

// Preset resolves a named weight preset, or an error if name is unknown.
func Preset(name string) (map[Dimension]float64, error) {
	if name == "" {
		name = "default"
	}
	w, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown weights preset %q", name)
	}
	return w, nil
}

// ValidateWeights reports an error if weights does not sum to 1.0 within
// 1e-6, the tolerance the spec's weight-vector invariant allows for
// floating-point-assembled configs.
func ValidateWeights(weights map[Dimension]float64) error {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// MultiDimensionalScore is the Scorer's final output: one float per
// dimension, the supporting sub-scores the dimensions were derived from,
// informational complexity, and the weighted overall score.
type MultiDimensionalScore struct {
	Dimensions map[Dimension]float64
	Overall    float64

	ValidationScore float64
	PerformanceScore float64
	HallucinationScore float64
	ErrorSeverity    float64
	Complexity       analyzer.ComplexityReport
}

// Inputs bundles everything Score needs from the rest of the kernel's
// pipeline for one evaluated query.
type Inputs struct {
	ExecResult  executor.Result
	Comparison  comparator.Result
	Complexity  analyzer.ComplexityReport
	Performance analyzer.PerformanceReport
	Plan        *analyzer.PlanReport // nil if no plan text was supplied
	BestPracticesScore float64
	SemanticAccuracy   *analyzer.SemanticReport         // nil if no expected result was supplied
	ErrorClassification *analyzer.ErrorClassification // nil if execution did not fail with an engine error
}

// Score combines Inputs into a MultiDimensionalScore using weights (already
// validated to sum to 1.0).
func Score(in Inputs, weights map[Dimension]float64) MultiDimensionalScore {
	validationScore := validationScoreOf(in.ExecResult.Validation)
	weightedHallucination := in.ExecResult.Validation.Report.WeightedScore

	safety := 0.4*validationScore + 0.6*weightedHallucination

	correctness := in.Comparison.MatchScore
	efficiency := in.Performance.Score

	resultCompleteness := resultCompletenessOf(in.ExecResult)

	semanticAccuracy := in.Comparison.MatchScore
	if in.SemanticAccuracy != nil {
		semanticAccuracy = in.SemanticAccuracy.Score
	}

	bestPractices := in.BestPracticesScore

	planQuality := 1.0
	if in.Plan != nil {
		planQuality = in.Plan.Score
	}

	dims := map[Dimension]float64{
		DimensionCorrectness:        clamp01(correctness),
		DimensionSafety:             clamp01(safety),
		DimensionEfficiency:         clamp01(efficiency),
		DimensionResultCompleteness: clamp01(resultCompleteness),
		DimensionSemanticAccuracy:   clamp01(semanticAccuracy),
		DimensionBestPractices:      clamp01(bestPractices),
		DimensionPlanQuality:        clamp01(planQuality),
	}

	overall := 0.0
	for dim, value := range dims {
		overall += value * weights[dim]
	}

	errorSeverity := 0.0
	if in.ErrorClassification != nil {
		errorSeverity = in.ErrorClassification.Severity
	}

	return MultiDimensionalScore{
		Dimensions:         dims,
		Overall:            overall,
		ValidationScore:    validationScore,
		PerformanceScore:   efficiency,
		HallucinationScore: in.ExecResult.Validation.Report.Score,
		ErrorSeverity:      errorSeverity,
		Complexity:         in.Complexity,
	}
}

// validationScoreOf implements validation_score = 1.0 if valid, 0.5/0.3/0.1
// for 0/1/many errors — read literally: a valid result scores 1.0
// regardless of error count (there are none), and an invalid result's
// score steps down based on how many errors were found.
func validationScoreOf(v hallucination.ValidationResult) float64 {
	if v.IsValid {
		return 1.0
	}
	switch len(v.Errors) {
	case 0:
		return 0.5
	case 1:
		return 0.3
	default:
		return 0.1
	}
}

// resultCompletenessOf starts at 1.0 and subtracts for each adverse insight
// collected by the executor, with a small bonus for a genuinely populated,
// non-truncated result.
func resultCompletenessOf(result executor.Result) float64 {
	if result.Status != executor.StatusSuccess || result.Execution == nil {
		return 0
	}

	score := 1.0
	empty := result.Execution.RowCount == 0
	truncated := result.Execution.Truncated

	for _, insight := range result.Insights {
		switch {
		case strings.Contains(insight, "empty"):
			score -= 0.2
		case strings.Contains(insight, "truncat"):
			score -= 0.1
		case strings.Contains(insight, "null-heavy"):
			score -= 0.05
		case strings.Contains(insight, "slow"):
			score -= 0.1
		}
	}

	if !empty && !truncated {
		score += 0.1
	}

	return clamp01(score)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
