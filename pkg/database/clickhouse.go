package database

import (
	"context"
	"fmt"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/queryeval/kernel/internal/logger"
	"github.com/queryeval/kernel/internal/schema"
)

// clickhouseAdapter backs the "bigquery" and "snowflake" dialects. Neither
// has a native open-source Go driver in this module's dependency set;
// ClickHouse stands in as the cloud-analytical execution engine for both,
// documented at SPEC_FULL.md's Engine Adapter bindings table. The Dialect
// Registry and Hallucination Detector still validate queries against the
// real bigquery/snowflake function vocabularies — only row execution and
// EXPLAIN plans come from ClickHouse's own engine.
type clickhouseAdapter struct {
	*sqlAdapter
	reportedDialect string
}

func newClickHouseAdapter(reportedDialect string, cfg Config, log *logger.StructuredLogger) *clickhouseAdapter {
	return &clickhouseAdapter{
		sqlAdapter:      newSQLAdapter("clickhouse", reportedDialect, cfg, log),
		reportedDialect: reportedDialect,
	}
}

func (a *clickhouseAdapter) Execute(ctx context.Context, sqlText string, rowLimit int) (*ExecutionResult, error) {
	return a.execute(ctx, sqlText, rowLimit)
}

func (a *clickhouseAdapter) ExplainQuery(ctx context.Context, sqlText string) (string, error) {
	rows, err := a.db.QueryContext(ctx, "EXPLAIN "+sqlText)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var plan string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return "", err
		}
		plan += line + "\n"
	}
	return plan, rows.Err()
}

const clickhouseColumnsQuery = `
SELECT table, name, type, is_in_primary_key
FROM system.columns
WHERE database = ?
ORDER BY table, position`

func (a *clickhouseAdapter) Introspect(ctx context.Context) (*schema.Snapshot, error) {
	snap := schema.NewSnapshot(a.reportedDialect, a.cfg.Database)
	tables := make(map[string]*schema.TableInfo)

	rows, err := a.db.QueryContext(ctx, clickhouseColumnsQuery, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("introspect columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, colName, dataType string
		var isPrimary uint8
		if err := rows.Scan(&tableName, &colName, &dataType, &isPrimary); err != nil {
			return nil, err
		}
		t, ok := tables[tableName]
		if !ok {
			t = &schema.TableInfo{Name: tableName}
			tables[tableName] = t
		}
		t.Columns = append(t.Columns, schema.ColumnInfo{
			Name:       colName,
			DataType:   dataType,
			PrimaryKey: isPrimary == 1,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range tables {
		snap.AddTable(*t)
	}

	// ClickHouse has no declarative foreign-key constraint system; the
	// stand-in adapter reports an empty FK graph rather than fabricating one.
	return snap, nil
}
