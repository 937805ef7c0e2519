// Package analyzer implements the Advanced Analyzers: a set of independent
// sub-analyzers that each score one dimension of a query's quality —
// structural complexity, execution performance relative to an
// dialect-and-complexity-adaptive threshold, the shape of an engine's
// EXPLAIN plan, the taxonomy of an execution error, adherence to SQL best
// practices, and semantic agreement with an expected result — plus a
// natural-language query Explainer kept purely for human-facing output.
// None of the sub-analyzers execute anything themselves; they work from the
// raw SQL text, the parsed IdentifierSet, and (where relevant) already
// executed results.
package analyzer

import (
	"github.com/queryeval/kernel/internal/dialect"
	"github.com/queryeval/kernel/internal/sqlparser"
)

// Analyzer bundles every sub-analyzer behind one parser instance, matching
// the earlier QueryAnalyzer's role of being the one entry point callers
// reach for query-quality analysis.
type Analyzer struct {
	parser   *sqlparser.Parser
	registry *dialect.Registry
}

// New builds an Analyzer backed by parser and registry.
func New(parser *sqlparser.Parser, registry *dialect.Registry) *Analyzer {
	return &Analyzer{parser: parser, registry: registry}
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
