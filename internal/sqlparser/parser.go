package sqlparser

import (
	"context"
	"strings"

	"github.com/queryeval/kernel/internal/dialect"
	"github.com/queryeval/kernel/internal/logger"
)

// dialectFallbackOrder lists the fallback dialects. When the AST parser
// fails, Parse logs the first entry that differs from the declared dialect
// as the fallback taken and then uses the regex extractor; no other
// dialect's grammar is tried.
var dialectFallbackOrder = []string{
	string(dialect.SQLite), string(dialect.Postgres), string(dialect.DuckDB), string(dialect.BigQuery), "",
}

// Parser turns raw SQL text into a ParsedSQL, trying the AST parser first
// and falling back to the regex extractor. It never errors: a query the
// AST parser rejects still yields a ParsedSQL built by the regex extractor,
// whose IdentifierSet may be partial, and IsValid is false only when the
// query is a SELECT from which no table could be extracted, since the
// caller (the Hallucination Detector) must still be able to produce a
// report.
type Parser struct {
	log *logger.StructuredLogger
}

// New builds a Parser. log may be nil, in which case dialect-fallback
// events are not logged.
func New(log *logger.StructuredLogger) *Parser {
	return &Parser{log: log}
}

// Parse attempts to extract identifiers from sql, declared as dialectName.
// It first tries the real AST parser; on failure it logs one fallback
// event naming the first dialectFallbackOrder entry other than dialectName,
// and then drops to the regex extractor, which is dialect-tolerant by
// construction. The AST parser is not retried, and the returned ParsedSQL
// keeps dialectName as its Dialect.
func (p *Parser) Parse(ctx context.Context, sql string, dialectName string) *ParsedSQL {
	result := &ParsedSQL{
		Dialect: dialectName,
		RawSQL:  sql,
	}

	if set, err := astParse(sql); err == nil {
		result.Identifiers = set
		result.IsValid = true
		return result
	} else {
		result.ParseError = err.Error()
	}

	for _, fallback := range dialectFallbackOrder {
		if fallback == dialectName {
			continue
		}
		if p.log != nil {
			p.log.LogDialectFallback(ctx, dialectName, fallback, sql)
		}
		break // the AST grammar itself is dialect-invariant; retrying it
		// under a different declared dialect cannot change its outcome, so
		// one log line records the fallback decision before dropping to
		// the regex extractor below.
	}

	result.Identifiers = regexParse(sql)
	result.IsValid = len(result.Identifiers.Tables) > 0 || !result.IsSelect()
	return result
}

// Transpile produces a best-effort rewrite of sql from one dialect to
// another. No general-purpose cross-dialect SQL transpiler exists in this
// module's dependency set, so this implementation applies only the narrow,
// unambiguous textual substitutions the function-alias table already
// records (e.g. DATEADD -> DATE_ADD from snowflake to bigquery), rewriting
// only the first call of each alias, and otherwise returns the input
// unchanged, matching the contract's documented failure path.
func (p *Parser) Transpile(sql string, from, to dialect.Dialect, registry *dialect.Registry) string {
	out := sql
	for canonical, aliases := range registry.FunctionAliasTable() {
		if !to.HasFunction(canonical) {
			continue
		}
		for _, alias := range aliases {
			if from.HasFunction(alias) && !from.HasFunction(canonical) {
				out = replaceFunctionCall(out, alias, canonical)
			}
		}
	}
	return out
}

func replaceFunctionCall(sql, from, to string) string {
	upper := strings.ToUpper(sql)
	target := strings.ToUpper(from) + "("
	idx := strings.Index(upper, target)
	if idx == -1 {
		return sql
	}
	return sql[:idx] + to + "(" + sql[idx+len(target):]
}
