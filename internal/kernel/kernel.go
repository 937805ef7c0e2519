// Package kernel is the evaluation kernel's top-level API: the single
// entry point that wires the Dialect Registry, Schema Model, Engine
// Adapter, SQL Parser, Hallucination Detector, Sandboxed Executor, Result
// Comparator, Advanced Analyzers, and Scorer into the handful of calls a
// caller actually needs — evaluate a generated query end to end, or invoke
// any one stage in isolation.
package kernel

import (
	"context"
	"fmt"
	"time"

	"github.com/queryeval/kernel/internal/analyzer"
	"github.com/queryeval/kernel/internal/comparator"
	"github.com/queryeval/kernel/internal/config"
	"github.com/queryeval/kernel/internal/dialect"
	"github.com/queryeval/kernel/internal/executor"
	"github.com/queryeval/kernel/internal/hallucination"
	"github.com/queryeval/kernel/internal/schema"
	"github.com/queryeval/kernel/internal/scorer"
	"github.com/queryeval/kernel/internal/sqlparser"
	"github.com/queryeval/kernel/pkg/database"
)

// EvalOptions configures one Evaluate (or ProcessQuery) call. Dialect is
// required; MaxRows, Timeout, ValidationStrictness, AllowNonSelect and
// WeightsPreset fall back to the kernel's configured defaults when zero.
type EvalOptions struct {
	Dialect              string
	MaxRows              int
	Timeout              time.Duration
	ValidationStrictness executor.ValidationStrictness
	AllowNonSelect       bool
	PlanText             string
	ExpectedRowEstimate  int64
	WeightsPreset        string
	Weights              map[scorer.Dimension]float64
}

// Task is what a caller is evaluating a query against: the expected result
// (nil for schema-only tasks that only check the query ran safely). Plan
// text for plan-quality scoring is passed in EvalOptions.PlanText.
type Task struct {
	Expected *comparator.Set
}

// Kernel is the evaluation kernel: one instance wraps one Engine Adapter
// and can evaluate any number of candidate queries against that fixed
// engine; the schema snapshot is passed with each call.
type Kernel struct {
	registry *dialect.Registry
	parser   *sqlparser.Parser
	detector *hallucination.Detector
	analyzer *analyzer.Analyzer
	executor *executor.Executor
	adapter  database.Adapter
	cfg      config.ExecutionConfig
}

// New builds a Kernel around an already-connected adapter, for the given
// dialect and execution policy defaults.
func New(adapter database.Adapter, dialectName string, cfg config.ExecutionConfig) *Kernel {
	registry := dialect.NewRegistry()
	parser := sqlparser.New(nil)
	detector := hallucination.New(registry, parser, dialectName)
	return &Kernel{
		registry: registry,
		parser:   parser,
		detector: detector,
		analyzer: analyzer.New(parser, registry),
		executor: executor.New(detector, adapter, nil),
		adapter:  adapter,
		cfg:      cfg,
	}
}

// Parse extracts identifiers from sql under dialectName, which is passed
// to the parser unchanged.
func (k *Kernel) Parse(ctx context.Context, sql, dialectName string) *sqlparser.ParsedSQL {
	return k.parser.Parse(ctx, sql, dialectName)
}

// Validate parses sql and checks its identifiers against snap for phantom
// tables and columns.
func (k *Kernel) Validate(ctx context.Context, sql string, snap *schema.Snapshot, dialectName string) hallucination.ValidationResult {
	return k.detector.Validate(ctx, sql, snap, dialectName)
}

// Detect is Validate's underlying report, exposed directly for callers that
// want the raw phantom-identifier breakdown and scores rather than a
// pass/fail verdict.
func (k *Kernel) Detect(ctx context.Context, sql string, snap *schema.Snapshot, dialectName string) hallucination.Report {
	return k.detector.Detect(ctx, sql, snap, dialectName)
}

// Compare judges an already-executed result set against an expected one.
func (k *Kernel) Compare(actual, expected *comparator.Set) comparator.Result {
	return comparator.Compare(actual, expected)
}

// ProcessQuery runs the Sandboxed Executor's pipeline alone, without
// scoring, the same operation Evaluate performs internally before handing
// its result to the Scorer.
func (k *Kernel) ProcessQuery(ctx context.Context, sql string, snap *schema.Snapshot, opts EvalOptions) executor.Result {
	return k.executor.Process(ctx, sql, opts.Dialect, snap, execOptions(opts, k.cfg))
}

// Evaluate is the kernel's primary operation: it processes sql end to end
// (parse, validate, execute under the safety envelope), compares the
// result against task.Expected, runs the Advanced Analyzers, and combines
// everything into one MultiDimensionalScore.
func (k *Kernel) Evaluate(ctx context.Context, sql string, task Task, snap *schema.Snapshot, opts EvalOptions) (scorer.MultiDimensionalScore, error) {
	dialectName := opts.Dialect

	if opts.WeightsPreset == "" {
		opts.WeightsPreset = k.cfg.WeightsPreset
	}
	weights, err := resolveWeights(opts)
	if err != nil {
		return scorer.MultiDimensionalScore{}, err
	}

	execResult := k.executor.Process(ctx, sql, dialectName, snap, execOptions(opts, k.cfg))

	parsed := k.parser.Parse(ctx, sql, dialectName)
	complexity := k.analyzer.Complexity(sql, parsed.Identifiers)
	performance := k.analyzer.Performance(dialectName, complexity.Level, opts.ExpectedRowEstimate, execDuration(execResult))
	bestPractices := k.analyzer.BestPractices(sql, parsed.Identifiers)

	var planReport *analyzer.PlanReport
	if opts.PlanText != "" {
		p := k.analyzer.Plan(opts.PlanText)
		planReport = &p
	}

	actualSet := toComparatorSet(execResult)
	comparison := comparator.Compare(actualSet, task.Expected)

	var semanticReport *analyzer.SemanticReport
	if task.Expected != nil && actualSet != nil {
		s := k.analyzer.SemanticAccuracy(actualSet.Columns, rowsToSlices(actualSet), task.Expected.Columns, rowsToSlices(task.Expected))
		semanticReport = &s
	}

	var errorClass *analyzer.ErrorClassification
	if execResult.Err != nil {
		c := k.analyzer.ClassifyError(execResult.Err.Error())
		errorClass = &c
	}

	score := scorer.Score(scorer.Inputs{
		ExecResult:          execResult,
		Comparison:          comparison,
		Complexity:          complexity,
		Performance:         performance,
		Plan:                planReport,
		BestPracticesScore:  bestPractices.Score,
		SemanticAccuracy:    semanticReport,
		ErrorClassification: errorClass,
	}, weights)

	return score, nil
}

func execOptions(opts EvalOptions, cfg config.ExecutionConfig) executor.Options {
	strictness := opts.ValidationStrictness
	if strictness == "" {
		strictness = executor.ValidationStrictness(cfg.ValidationStrictness)
	}
	maxRows := opts.MaxRows
	if maxRows == 0 {
		maxRows = cfg.MaxRows
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = cfg.QueryTimeout
	}
	return executor.Options{
		MaxRows:              maxRows,
		Timeout:              timeout,
		ValidationStrictness: strictness,
		AllowNonSelect:       opts.AllowNonSelect || cfg.AllowNonSelect,
		SlowQueryThreshold:   cfg.SlowQueryThreshold,
	}
}

func resolveWeights(opts EvalOptions) (map[scorer.Dimension]float64, error) {
	if opts.Weights != nil {
		if err := scorer.ValidateWeights(opts.Weights); err != nil {
			return nil, fmt.Errorf("invalid weights: %w", err)
		}
		return opts.Weights, nil
	}
	return scorer.Preset(opts.WeightsPreset)
}

func execDuration(result executor.Result) time.Duration {
	if result.Execution == nil {
		return 0
	}
	return result.Execution.Duration
}

func toComparatorSet(result executor.Result) *comparator.Set {
	if result.Execution == nil {
		return nil
	}
	set := &comparator.Set{Columns: result.Execution.Columns}
	for _, row := range result.Execution.Rows {
		r := make(comparator.Row, len(result.Execution.Columns))
		for i, col := range result.Execution.Columns {
			if i < len(row) {
				r[col] = row[i]
			}
		}
		set.Rows = append(set.Rows, r)
	}
	return set
}

func rowsToSlices(set *comparator.Set) [][]any {
	out := make([][]any, len(set.Rows))
	for i, row := range set.Rows {
		r := make([]any, len(set.Columns))
		for j, col := range set.Columns {
			r[j] = row[col]
		}
		out[i] = r
	}
	return out
}
