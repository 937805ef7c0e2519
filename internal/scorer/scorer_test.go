package scorer_test

import (
	"testing"
	"time"

	"github.com/queryeval/kernel/internal/analyzer"
	"github.com/queryeval/kernel/internal/comparator"
	"github.com/queryeval/kernel/internal/executor"
	"github.com/queryeval/kernel/internal/hallucination"
	"github.com/queryeval/kernel/internal/scorer"
	"github.com/queryeval/kernel/pkg/database"
)

func TestPresetsSumToOne(t *testing.T) {
	for _, name := range []string{"default", "strict", "performance", "quality"} {
		w, err := scorer.Preset(name)
		if err != nil {
			t.Fatalf("Preset(%q): %v", name, err)
		}
		if err := scorer.ValidateWeights(w); err != nil {
			t.Fatalf("preset %q does not sum to 1.0: %v", name, err)
		}
	}
}

func TestPresetUnknownNameErrors(t *testing.T) {
	if _, err := scorer.Preset("nonexistent"); err == nil {
		t.Fatalf("expected an error for an unknown preset")
	}
}

func TestScoreValidQuerySuccessfulExecution(t *testing.T) {
	weights, _ := scorer.Preset("default")

	execResult := executor.Result{
		Status: executor.StatusSuccess,
		Validation: hallucination.ValidationResult{
			IsValid: true,
			Report:  hallucination.Report{Score: 0, WeightedScore: 1.0},
		},
		Execution: &database.ExecutionResult{RowCount: 3, Duration: time.Millisecond},
	}
	comparison := comparator.Result{Match: true, MatchScore: 1.0}
	perf := analyzer.PerformanceReport{Score: 1.0}

	result := scorer.Score(scorer.Inputs{
		ExecResult:         execResult,
		Comparison:         comparison,
		Performance:        perf,
		BestPracticesScore: 1.0,
	}, weights)

	if result.Overall < 0.9 {
		t.Fatalf("expected a high overall score for a clean, matching query, got %v (dims=%+v)", result.Overall, result.Dimensions)
	}
}

func TestScoreFailedExecutionScoresZeroCompleteness(t *testing.T) {
	weights, _ := scorer.Preset("default")
	execResult := executor.Result{Status: executor.StatusFailed}
	comparison := comparator.Result{Match: false, MatchScore: 0}

	result := scorer.Score(scorer.Inputs{
		ExecResult: execResult,
		Comparison: comparison,
	}, weights)

	if result.Dimensions[scorer.DimensionResultCompleteness] != 0 {
		t.Fatalf("expected zero result_completeness for a failed execution, got %v", result.Dimensions[scorer.DimensionResultCompleteness])
	}
}

func TestScoreManyErrorsLowersValidationScore(t *testing.T) {
	weights, _ := scorer.Preset("default")
	execResult := executor.Result{
		Status: executor.StatusFailed,
		Validation: hallucination.ValidationResult{
			IsValid: false,
			Errors:  []string{"table not found", "column not found"},
			Report:  hallucination.Report{WeightedScore: 0},
		},
	}

	result := scorer.Score(scorer.Inputs{
		ExecResult: execResult,
		Comparison: comparator.Result{},
	}, weights)

	if result.ValidationScore != 0.1 {
		t.Fatalf("expected validation_score 0.1 for many errors, got %v", result.ValidationScore)
	}
}
