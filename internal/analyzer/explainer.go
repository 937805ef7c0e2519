package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/queryeval/kernel/internal/sqlparser"
)

// Explain generates a plain-English description of what sql does. It is a
// supplemented, purely informational feature: nothing in the Scorer reads
// its output, it exists for surfacing to a human reviewing a task result.
func (a *Analyzer) Explain(ctx context.Context, sql, dialectName string) (string, error) {
	parsed := a.parser.Parse(ctx, sql, dialectName)
	if !parsed.IsValid {
		return "", fmt.Errorf("could not parse query: %s", parsed.ParseError)
	}

	switch {
	case parsed.IsSelect():
		return explainSelect(sql, parsed.Identifiers), nil
	case strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sql)), "INSERT"):
		return explainInsert(sql, parsed.Identifiers), nil
	case strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sql)), "UPDATE"):
		return explainUpdate(sql, parsed.Identifiers), nil
	case strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sql)), "DELETE"):
		return explainDelete(sql, parsed.Identifiers), nil
	default:
		return "This is a SQL statement that performs a database operation.", nil
	}
}

var limitValuePattern = regexp.MustCompile(`(?i)LIMIT\s+(\d+)`)

func explainSelect(sql string, ids *sqlparser.IdentifierSet) string {
	var parts []string

	intro := "This query retrieves "
	if selectStarPattern.MatchString(sql) {
		intro += "all columns"
	} else if len(ids.Columns) > 0 {
		switch {
		case len(ids.Columns) == 1:
			intro += fmt.Sprintf("the '%s' column", ids.Columns[0])
		case len(ids.Columns) <= 3:
			intro += fmt.Sprintf("the columns: %s", joinWithAnd(ids.Columns))
		default:
			intro += fmt.Sprintf("%d columns including %s", len(ids.Columns), joinWithAnd(ids.Columns[:2]))
		}
	} else {
		intro += "data"
	}

	if len(ids.Tables) == 1 {
		intro += fmt.Sprintf(" from the '%s' table", ids.Tables[0])
	} else if len(ids.Tables) > 1 {
		intro += fmt.Sprintf(" from %d tables (%s)", len(ids.Tables), joinWithAnd(ids.Tables))
	}
	parts = append(parts, intro)

	if joinPattern.MatchString(sql) {
		parts = append(parts, "The tables are combined using JOIN conditions")
	}

	if m := wherePattern.FindStringSubmatch(sql); len(m) > 1 && strings.TrimSpace(m[1]) != "" {
		parts = append(parts, "The results are filtered by a WHERE clause")
	}

	if groupByAnchorPat.MatchString(sql) {
		parts = append(parts, "The results are grouped")
	}

	if regexp.MustCompile(`(?i)\bORDER\s+BY\b`).MatchString(sql) {
		parts = append(parts, "The results are sorted")
	}

	if distinctPattern.MatchString(sql) {
		parts = append(parts, "Duplicate rows are removed from the results")
	}

	if m := limitValuePattern.FindStringSubmatch(sql); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			parts = append(parts, fmt.Sprintf("Only the first %d rows are returned", n))
		}
	}

	if subqueryCountPat.MatchString(sql) {
		parts = append(parts, "This query contains subqueries for complex filtering or data retrieval")
	}

	if aggregatePattern.MatchString(sql) {
		parts = append(parts, "Aggregate functions are used to calculate values like counts, sums, or averages")
	}

	return strings.Join(parts, ". ") + "."
}

func explainInsert(sql string, ids *sqlparser.IdentifierSet) string {
	var parts []string

	if len(ids.Tables) > 0 {
		parts = append(parts, fmt.Sprintf("This query inserts new data into the '%s' table", ids.Tables[0]))
	} else {
		parts = append(parts, "This query inserts new data into a table")
	}

	if len(ids.Columns) > 0 {
		switch {
		case len(ids.Columns) == 1:
			parts = append(parts, fmt.Sprintf("It sets the value for the '%s' column", ids.Columns[0]))
		case len(ids.Columns) <= 5:
			parts = append(parts, fmt.Sprintf("It sets values for the columns: %s", joinWithAnd(ids.Columns)))
		default:
			parts = append(parts, fmt.Sprintf("It sets values for %d columns", len(ids.Columns)))
		}
	}

	if strings.Count(strings.ToUpper(sql), "VALUES") > 1 {
		parts = append(parts, "Multiple rows are being inserted in a single operation")
	}
	if strings.Contains(strings.ToUpper(sql), "SELECT") {
		parts = append(parts, "The data being inserted comes from another query")
	}

	return strings.Join(parts, ". ") + "."
}

func explainUpdate(sql string, ids *sqlparser.IdentifierSet) string {
	var parts []string

	if len(ids.Tables) > 0 {
		parts = append(parts, fmt.Sprintf("This query modifies existing data in the '%s' table", ids.Tables[0]))
	} else {
		parts = append(parts, "This query modifies existing data in a table")
	}

	if m := wherePattern.FindStringSubmatch(sql); len(m) > 1 && strings.TrimSpace(m[1]) != "" {
		parts = append(parts, "Only rows matching the WHERE clause are updated")
	} else {
		parts = append(parts, "ALL rows in the table will be updated (no WHERE clause)")
	}

	return strings.Join(parts, ". ") + "."
}

func explainDelete(sql string, ids *sqlparser.IdentifierSet) string {
	var parts []string

	if len(ids.Tables) > 0 {
		parts = append(parts, fmt.Sprintf("This query removes rows from the '%s' table", ids.Tables[0]))
	} else {
		parts = append(parts, "This query removes rows from a table")
	}

	if m := wherePattern.FindStringSubmatch(sql); len(m) > 1 && strings.TrimSpace(m[1]) != "" {
		parts = append(parts, "Only rows matching the WHERE clause are deleted")
	} else {
		parts = append(parts, "ALL rows in the table will be deleted (no WHERE clause)")
	}

	return strings.Join(parts, ". ") + "."
}

func joinWithAnd(items []string) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) == 1 {
		return items[0]
	}
	if len(items) == 2 {
		return items[0] + " and " + items[1]
	}
	result := strings.Join(items[:len(items)-1], ", ")
	result += ", and " + items[len(items)-1]
	return result
}
