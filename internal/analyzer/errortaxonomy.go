package analyzer

import (
	"regexp"
	"strings"
)

// ErrorCategory is a member of the closed error-message taxonomy this
// sub-analyzer classifies into. It deliberately mirrors, but is distinct
// from, kernelerr.ErrorCategory: this one classifies a raw engine error
// message by regex probing, where kernelerr tags errors the kernel itself
// raises from known call sites.
type ErrorCategory string

const (
	ErrSyntaxError         ErrorCategory = "syntax_error"
	ErrTableNotFound       ErrorCategory = "table_not_found"
	ErrColumnNotFound      ErrorCategory = "column_not_found"
	ErrTypeMismatch        ErrorCategory = "type_mismatch"
	ErrAmbiguousColumn     ErrorCategory = "ambiguous_column"
	ErrPermissionDenied    ErrorCategory = "permission_denied"
	ErrConstraintViolation ErrorCategory = "constraint_violation"
	ErrTimeout             ErrorCategory = "timeout"
	ErrConnectionError     ErrorCategory = "connection_error"
	ErrResourceLimit       ErrorCategory = "resource_limit"
	ErrUnknown             ErrorCategory = "unknown"
)

// errorSeverity is how damaging each category is to a query's overall
// correctness, used both standalone and summed into the aggregate score.
var errorSeverity = map[ErrorCategory]float64{
	ErrSyntaxError:         0.9,
	ErrTableNotFound:       0.9,
	ErrColumnNotFound:      0.8,
	ErrTypeMismatch:        0.6,
	ErrAmbiguousColumn:     0.4,
	ErrPermissionDenied:    0.7,
	ErrConstraintViolation: 0.7,
	ErrTimeout:             0.5,
	ErrConnectionError:     0.3,
	ErrResourceLimit:       0.5,
	ErrUnknown:             0.5,
}

var errorRecoverable = map[ErrorCategory]bool{
	ErrSyntaxError:         false,
	ErrTableNotFound:       false,
	ErrColumnNotFound:      false,
	ErrTypeMismatch:        false,
	ErrAmbiguousColumn:     true,
	ErrPermissionDenied:    false,
	ErrConstraintViolation: false,
	ErrTimeout:             true,
	ErrConnectionError:     true,
	ErrResourceLimit:       true,
	ErrUnknown:             false,
}

type errorProbe struct {
	category ErrorCategory
	pattern  *regexp.Regexp
}

// errorProbes is tried in order; the first match wins, so more specific
// patterns (e.g. "ambiguous column") come before generic ones ("column").
var errorProbes = []errorProbe{
	{ErrAmbiguousColumn, regexp.MustCompile(`(?i)ambiguous`)},
	{ErrTableNotFound, regexp.MustCompile(`(?i)(no such table|relation .* does not exist|table .* doesn't exist|unknown table)`)},
	{ErrColumnNotFound, regexp.MustCompile(`(?i)(no such column|column .* does not exist|unknown column)`)},
	{ErrTypeMismatch, regexp.MustCompile(`(?i)(type mismatch|incompatible type|invalid input syntax for)`)},
	{ErrConstraintViolation, regexp.MustCompile(`(?i)(constraint|unique violation|foreign key|not null violation)`)},
	{ErrPermissionDenied, regexp.MustCompile(`(?i)(permission denied|access denied|not authorized)`)},
	{ErrTimeout, regexp.MustCompile(`(?i)(timeout|deadline exceeded|canceling statement due to statement timeout)`)},
	{ErrConnectionError, regexp.MustCompile(`(?i)(connection refused|connection reset|no connection|dial tcp)`)},
	{ErrResourceLimit, regexp.MustCompile(`(?i)(out of memory|disk full|too many connections|resource.*limit)`)},
	{ErrSyntaxError, regexp.MustCompile(`(?i)(syntax error|parse error|unexpected token)`)},
}

// ErrorClassification is one classified error with its severity and whether
// the condition is typically retryable.
type ErrorClassification struct {
	Category    ErrorCategory
	Severity    float64
	Recoverable bool
}

// ClassifyError probes msg against the taxonomy's regex patterns in order,
// falling back to ErrUnknown when nothing matches.
func (a *Analyzer) ClassifyError(msg string) ErrorClassification {
	msg = strings.TrimSpace(msg)
	for _, probe := range errorProbes {
		if probe.pattern.MatchString(msg) {
			return ErrorClassification{
				Category:    probe.category,
				Severity:    errorSeverity[probe.category],
				Recoverable: errorRecoverable[probe.category],
			}
		}
	}
	return ErrorClassification{Category: ErrUnknown, Severity: errorSeverity[ErrUnknown], Recoverable: errorRecoverable[ErrUnknown]}
}

// AggregateErrorScore sums the classifications' severities and runs the sum
// through the same diminishing-returns curve the weighted hallucination
// scorer uses, so a single severe error costs much more than a second,
// unrelated one.
func (a *Analyzer) AggregateErrorScore(classifications []ErrorClassification) float64 {
	sum := 0.0
	for _, c := range classifications {
		sum += c.Severity
	}
	return diminishingReturns2(sum)
}

// diminishingReturns2 is the weighted-hallucination curve, duplicated here
// (rather than shared via an exported helper) because the two callers
// operate on conceptually distinct inputs — error severities here,
// phantom-identifier weights in the hallucination package — and the spec
// names them as the same curve, not the same function.
func diminishingReturns2(p float64) float64 {
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
