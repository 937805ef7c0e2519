package comparator_test

import (
	"testing"

	"github.com/queryeval/kernel/internal/comparator"
)

func TestCompareNilExpectedIsSchemaOnly(t *testing.T) {
	result := comparator.Compare(&comparator.Set{Columns: []string{"id"}, Rows: []comparator.Row{{"id": 1}}}, nil)
	if result.Strategy != comparator.StrategySchemaOnly || !result.Match || result.MatchScore != 1.0 {
		t.Fatalf("expected schema_only perfect match, got %+v", result)
	}
}

func TestCompareBothEmptyMatches(t *testing.T) {
	actual := &comparator.Set{Columns: []string{"id"}}
	expected := &comparator.Set{Columns: []string{"id"}}
	result := comparator.Compare(actual, expected)
	if !result.Match || result.MatchScore != 1.0 {
		t.Fatalf("expected both-empty match, got %+v", result)
	}
}

func TestCompareOneEmptyNoMatch(t *testing.T) {
	actual := &comparator.Set{Columns: []string{"id"}}
	expected := &comparator.Set{Columns: []string{"id"}, Rows: []comparator.Row{{"id": 1}}}
	result := comparator.Compare(actual, expected)
	if result.Match || result.MatchScore != 0 {
		t.Fatalf("expected no match when only one side is empty, got %+v", result)
	}
}

func TestCompareExactIdenticalRows(t *testing.T) {
	actual := &comparator.Set{Columns: []string{"id", "name"}, Rows: []comparator.Row{
		{"id": 1, "name": "a"}, {"id": 2, "name": "b"},
	}}
	expected := &comparator.Set{Columns: []string{"id", "name"}, Rows: []comparator.Row{
		{"id": 1, "name": "a"}, {"id": 2, "name": "b"},
	}}
	result := comparator.Compare(actual, expected)
	if result.Strategy != comparator.StrategyExact || !result.Match || result.MatchScore != 1.0 {
		t.Fatalf("expected exact perfect match, got %+v", result)
	}
}

func TestCompareNumericToleranceAllowsTinyDifference(t *testing.T) {
	actual := &comparator.Set{Columns: []string{"total"}, Rows: []comparator.Row{{"total": 9.9999999}}}
	expected := &comparator.Set{Columns: []string{"total"}, Rows: []comparator.Row{{"total": 10.0}}}
	result := comparator.Compare(actual, expected)
	if result.MatchScore != 1.0 {
		t.Fatalf("expected tolerance to absorb tiny float difference, got %+v", result)
	}
}

func TestCompareSetBasedIgnoresRowOrder(t *testing.T) {
	actual := &comparator.Set{Columns: []string{"id"}, Rows: []comparator.Row{{"id": 2}, {"id": 1}}}
	expected := &comparator.Set{Columns: []string{"id"}, Rows: []comparator.Row{{"id": 1}, {"id": 2}}}
	result := comparator.Compare(actual, expected)
	if result.Strategy != comparator.StrategySetBased || result.MatchScore != 1.0 {
		t.Fatalf("expected set_based perfect match despite order difference, got %+v", result)
	}
}

func TestCompareStringCaseInsensitive(t *testing.T) {
	actual := &comparator.Set{Columns: []string{"name"}, Rows: []comparator.Row{{"name": "ACME"}}}
	expected := &comparator.Set{Columns: []string{"name"}, Rows: []comparator.Row{{"name": "acme"}}}
	result := comparator.Compare(actual, expected)
	if result.MatchScore != 1.0 {
		t.Fatalf("expected case-insensitive string match, got %+v", result)
	}
}
