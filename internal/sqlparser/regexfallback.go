package sqlparser

import (
	"regexp"
	"strings"
)

// Regex-based extraction used when the AST parser cannot handle the dialect
// or rejects the text outright. Adapted from a lexically similar
// query-component extractor; generalized here to populate an IdentifierSet
// (tables/columns/functions/aliases/CTE columns) instead of a flat
// query-shape struct.
var (
	ctePattern      = regexp.MustCompile(`(?is)(?:^|,)\s*([a-zA-Z_][a-zA-Z0-9_]*)\s+AS\s*\(`)
	fromTablePattern = regexp.MustCompile(`(?i)FROM\s+([a-zA-Z_][a-zA-Z0-9_.]*)(?:\s+(?:AS\s+)?([a-zA-Z_][a-zA-Z0-9_]*))?`)
	joinTablePattern = regexp.MustCompile(`(?i)JOIN\s+([a-zA-Z_][a-zA-Z0-9_.]*)(?:\s+(?:AS\s+)?([a-zA-Z_][a-zA-Z0-9_]*))?`)
	selectListPattern = regexp.MustCompile(`(?is)SELECT\s+(?:DISTINCT\s+)?(.+?)\s+FROM`)
	wherePattern     = regexp.MustCompile(`(?is)WHERE\s+(.+?)(?:\s+GROUP\s+BY|\s+ORDER\s+BY|\s+LIMIT|$)`)
	onPattern        = regexp.MustCompile(`(?is)ON\s+(.+?)(?:\s+WHERE|\s+GROUP\s+BY|\s+ORDER\s+BY|\s+LIMIT|\s+JOIN|$)`)
	columnRefPattern = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\.([a-zA-Z_][a-zA-Z0-9_]*)|\b([a-zA-Z_][a-zA-Z0-9_]*)\b`)
	funcCallPattern  = regexp.MustCompile(`(?i)\b([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)
	subqueryPattern  = regexp.MustCompile(`(?is)\(\s*SELECT\b`)
	asAliasPattern   = regexp.MustCompile(`(?i)\s+AS\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*$`)
)

var sqlKeywords = map[string]struct{}{
	"AND": {}, "OR": {}, "NOT": {}, "IN": {}, "EXISTS": {}, "BETWEEN": {},
	"LIKE": {}, "IS": {}, "NULL": {}, "TRUE": {}, "FALSE": {}, "ASC": {},
	"DESC": {}, "ALL": {}, "ANY": {}, "SOME": {}, "AS": {}, "ON": {},
	"DISTINCT": {}, "SELECT": {}, "FROM": {}, "WHERE": {}, "GROUP": {},
	"ORDER": {}, "BY": {}, "LIMIT": {}, "HAVING": {}, "JOIN": {}, "INNER": {},
	"LEFT": {}, "RIGHT": {}, "FULL": {}, "OUTER": {}, "CROSS": {}, "UNION": {},
	"WITH": {}, "CASE": {}, "WHEN": {}, "THEN": {}, "ELSE": {}, "END": {},
}

func isKeyword(word string) bool {
	_, ok := sqlKeywords[strings.ToUpper(word)]
	return ok
}

// regexParse runs the dialect-tolerant fallback extraction. It never returns
// an error: the worst case is an IdentifierSet with fewer findings than the
// AST parser would have produced, which is preferable to rejecting a query
// the real engine would accept.
func regexParse(sql string) *IdentifierSet {
	set := NewIdentifierSet()

	extractCTEs(sql, set)
	extractTablesAndAliases(sql, set)
	extractSelectList(sql, set)
	extractClauseColumns(wherePattern, sql, set)
	extractClauseColumns(onPattern, sql, set)
	extractFunctions(sql, set)

	return set
}

func extractCTEs(sql string, set *IdentifierSet) {
	for _, m := range ctePattern.FindAllStringSubmatch(sql, -1) {
		name := strings.ToLower(m[1])
		set.SetAlias(m[1], AliasCTE)
		set.CTEColumns[name] = nil // presence with nil means "unknown columns", resolved defensively downstream
	}
}

func extractTablesAndAliases(sql string, set *IdentifierSet) {
	cteNames := make(map[string]struct{})
	for alias, target := range set.Aliases {
		if target == AliasCTE {
			cteNames[strings.ToLower(alias)] = struct{}{}
		}
	}

	for _, pattern := range []*regexp.Regexp{fromTablePattern, joinTablePattern} {
		for _, m := range pattern.FindAllStringSubmatch(sql, -1) {
			table := m[1]
			if _, isCTE := cteNames[strings.ToLower(table)]; isCTE {
				continue
			}
			if strings.Contains(table, "(") {
				continue
			}
			set.AddTable(table)
			if len(m) > 2 && m[2] != "" && !isKeyword(m[2]) {
				set.SetAlias(m[2], table)
			}
		}
	}

	if subqueryPattern.MatchString(sql) {
		// A derived-table subquery is present; its alias (if any) is not
		// recorded, since locating the exact alias token for an arbitrarily
		// nested subquery is not reliable without a real parser.
	}
}

func extractSelectList(sql string, set *IdentifierSet) {
	m := selectListPattern.FindStringSubmatch(sql)
	if m == nil {
		return
	}
	for _, item := range splitTopLevel(m[1]) {
		item = strings.TrimSpace(item)
		if item == "" || item == "*" || strings.HasSuffix(item, ".*") {
			continue
		}
		if alias := asAliasPattern.FindStringSubmatch(item); alias != nil {
			set.AddSelectAlias(alias[1])
			continue
		}
		fields := strings.Fields(item)
		if len(fields) > 1 && !isKeyword(fields[len(fields)-1]) && !strings.HasSuffix(fields[len(fields)-2], "(") {
			set.AddSelectAlias(fields[len(fields)-1])
		}
	}
}

func extractClauseColumns(pattern *regexp.Regexp, sql string, set *IdentifierSet) {
	m := pattern.FindStringSubmatch(sql)
	if m == nil {
		return
	}
	clause := stripLiterals(m[1])
	for _, match := range columnRefPattern.FindAllStringSubmatch(clause, -1) {
		var candidate string
		switch {
		case match[2] != "":
			candidate = match[2] // qualified column part
		default:
			candidate = match[3]
		}
		if candidate == "" || isKeyword(candidate) {
			continue
		}
		if funcCallPattern.MatchString(candidate + "(") {
			continue
		}
		set.AddColumn(candidate)
	}
}

func extractFunctions(sql string, set *IdentifierSet) {
	for _, m := range funcCallPattern.FindAllStringSubmatch(sql, -1) {
		name := m[1]
		if isKeyword(name) {
			continue
		}
		set.AddFunction(name)
	}
}

func stripLiterals(s string) string {
	s = regexp.MustCompile(`'[^']*'`).ReplaceAllString(s, "")
	s = regexp.MustCompile(`"[^"]*"`).ReplaceAllString(s, "")
	return s
}

// splitTopLevel splits a comma-separated list respecting parenthesis depth,
// so "COUNT(a, b), c" splits into ["COUNT(a, b)", "c"] rather than three
// pieces.
func splitTopLevel(s string) []string {
	var out []string
	var current strings.Builder
	depth := 0
	for _, ch := range s {
		switch ch {
		case '(':
			depth++
			current.WriteRune(ch)
		case ')':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				out = append(out, current.String())
				current.Reset()
				continue
			}
			current.WriteRune(ch)
		default:
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}
