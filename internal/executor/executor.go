// Package executor implements the Sandboxed Executor: the end-to-end
// dialect-correct processing of one SQL query, orchestrating the SQL
// Parser, the Hallucination Detector, and an Engine Adapter behind a single
// policy-driven Process call.
package executor

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/queryeval/kernel/internal/hallucination"
	"github.com/queryeval/kernel/internal/kernelerr"
	"github.com/queryeval/kernel/internal/logger"
	"github.com/queryeval/kernel/internal/schema"
	"github.com/queryeval/kernel/pkg/database"
)

// ValidationStrictness controls how the executor reacts to a detected
// phantom table/column.
type ValidationStrictness string

const (
	StrictnessRejectOnError ValidationStrictness = "reject_on_error"
	StrictnessWarnOnly      ValidationStrictness = "warn_only"
	StrictnessOff           ValidationStrictness = "off"
)

// Status is the outcome classification of one Process call.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Options configures one Process call; zero values fall back to the
// package defaults (max_rows=100, timeout=30s, reject_on_error,
// allow_non_select=false) which mirror internal/config's own defaults.
type Options struct {
	MaxRows              int
	Timeout              time.Duration
	ValidationStrictness ValidationStrictness
	AllowNonSelect       bool
	SlowQueryThreshold   time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRows == 0 {
		o.MaxRows = 100
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.ValidationStrictness == "" {
		o.ValidationStrictness = StrictnessRejectOnError
	}
	if o.SlowQueryThreshold == 0 {
		o.SlowQueryThreshold = time.Second
	}
	return o
}

// Result bundles everything one Process call produced: the validation
// findings, the execution outcome (if execution was attempted), and a list
// of plain-English insights for downstream scoring and user feedback.
type Result struct {
	Status     Status
	Validation hallucination.ValidationResult
	Execution  *database.ExecutionResult
	Insights   []string
	Err        error
}

var rowLimitPattern = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)

// Executor wires the SQL Parser, Hallucination Detector, and an Engine
// Adapter together per Process's fixed pipeline.
type Executor struct {
	detector *hallucination.Detector
	adapter  database.Adapter
	log      *logger.StructuredLogger
}

// New builds an Executor. adapter must already be connected.
func New(detector *hallucination.Detector, adapter database.Adapter, log *logger.StructuredLogger) *Executor {
	return &Executor{detector: detector, adapter: adapter, log: log}
}

// Process runs the fixed six-step pipeline: parse, validate, rewrite with a
// row-limit envelope, execute under timeout, collect insights, bundle the
// result. It never panics and always returns a Result, even on complete
// failure, per the kernel's "score is always produced" propagation policy.
func (e *Executor) Process(ctx context.Context, sql string, dialectName string, snap *schema.Snapshot, opts Options) Result {
	opts = opts.withDefaults()

	validation := e.detector.Validate(ctx, sql, snap, dialectName)
	if !validation.IsValid {
		if opts.ValidationStrictness == StrictnessRejectOnError {
			return Result{
				Status:     StatusFailed,
				Validation: validation,
				Err:        kernelerr.New(kernelerr.CategoryPhantomTable, "query references identifiers not present in the schema"),
			}
		}
		// warn_only and off both proceed to execution and are handled
		// alike: the validation findings stay in the returned Result and
		// are scored as usual.
	}

	if !opts.AllowNonSelect && !isSelectLike(sql) {
		return Result{
			Status:     StatusFailed,
			Validation: validation,
			Err:        kernelerr.New(kernelerr.CategoryPermissionDenied, "non-SELECT statements are not permitted by policy"),
		}
	}

	envelope := applyRowLimitEnvelope(sql, opts.MaxRows)

	execCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	execResult, err := e.adapter.Execute(execCtx, envelope, opts.MaxRows)
	if err != nil {
		category := classifyExecutionError(err)
		if e.log != nil {
			e.log.LogExecution(ctx, dialectName, envelope, 0, 0, err)
		}
		return Result{
			Status:     StatusFailed,
			Validation: validation,
			Err:        kernelerr.Wrap(category, "query execution failed", err),
		}
	}

	insights := collectInsights(execResult, opts)

	return Result{
		Status:     StatusSuccess,
		Validation: validation,
		Execution:  execResult,
		Insights:   insights,
	}
}

// applyRowLimitEnvelope appends "LIMIT maxRows" to row-returning top-level
// statements that do not already declare an explicit limit. Non-SELECT
// statements and statements with an existing LIMIT are returned unchanged.
func applyRowLimitEnvelope(sql string, maxRows int) string {
	trimmed := strings.TrimSpace(sql)
	if maxRows <= 0 {
		return trimmed
	}
	if !isSelectLike(trimmed) {
		return trimmed
	}
	if rowLimitPattern.MatchString(trimmed) {
		return trimmed
	}
	return fmt.Sprintf("%s LIMIT %d", strings.TrimRight(trimmed, "; \t\n"), maxRows)
}

func isSelectLike(sql string) bool {
	upper := strings.ToUpper(strings.TrimSpace(sql))
	return strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH")
}

// collectInsights inspects the execution result for conditions downstream
// scoring and user feedback care about: emptiness, apparent truncation,
// slowness, and NULL-heavy columns.
func collectInsights(result *database.ExecutionResult, opts Options) []string {
	var insights []string

	if result.RowCount == 0 {
		insights = append(insights, "empty result set")
	}
	if int(result.RowCount) == opts.MaxRows {
		insights = append(insights, "result possibly truncated at max_rows")
	}
	if result.Duration > opts.SlowQueryThreshold {
		insights = append(insights, fmt.Sprintf("slow execution: %s", result.Duration))
	}

	for _, col := range nullHeavyColumns(result) {
		insights = append(insights, fmt.Sprintf("column %q is null-heavy", col))
	}

	return insights
}

// nullHeavyColumns returns the names of every column where more than half
// the scanned values are nil.
func nullHeavyColumns(result *database.ExecutionResult) []string {
	if len(result.Rows) == 0 {
		return nil
	}
	nullCounts := make([]int, len(result.Columns))
	for _, row := range result.Rows {
		for i, v := range row {
			if v == nil {
				nullCounts[i]++
			}
		}
	}

	var heavy []string
	for i, count := range nullCounts {
		if float64(count)/float64(len(result.Rows)) > 0.5 {
			heavy = append(heavy, result.Columns[i])
		}
	}
	return heavy
}

func classifyExecutionError(err error) kernelerr.ErrorCategory {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return kernelerr.CategoryExecutionTimeout
	case strings.Contains(msg, "context canceled"):
		return kernelerr.CategoryCancelled
	case strings.Contains(msg, "connection") || strings.Contains(msg, "dial"):
		return kernelerr.CategoryConnectionError
	case strings.Contains(msg, "no such table") || strings.Contains(msg, "does not exist") && strings.Contains(msg, "relation"):
		return kernelerr.CategoryTableNotFound
	case strings.Contains(msg, "no such column") || strings.Contains(msg, "unknown column"):
		return kernelerr.CategoryColumnNotFound
	case strings.Contains(msg, "permission") || strings.Contains(msg, "denied"):
		return kernelerr.CategoryPermissionDenied
	case strings.Contains(msg, "syntax"):
		return kernelerr.CategoryEngineSyntaxError
	default:
		return kernelerr.CategoryEngineSyntaxError
	}
}
