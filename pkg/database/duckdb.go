package database

import (
	"context"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/queryeval/kernel/internal/logger"
	"github.com/queryeval/kernel/internal/schema"
)

// duckdbAdapter backs the "duckdb" dialect via marcboeker/go-duckdb.
// DuckDB implements enough of information_schema to introspect the same
// way as Postgres; unlike Postgres it rarely enforces declared foreign
// keys, so this adapter does not attempt to recover a FK graph.
type duckdbAdapter struct {
	*sqlAdapter
}

func newDuckDBAdapter(cfg Config, log *logger.StructuredLogger) *duckdbAdapter {
	return &duckdbAdapter{sqlAdapter: newSQLAdapter("duckdb", "duckdb", cfg, log)}
}

func (a *duckdbAdapter) Execute(ctx context.Context, sqlText string, rowLimit int) (*ExecutionResult, error) {
	return a.execute(ctx, sqlText, rowLimit)
}

func (a *duckdbAdapter) ExplainQuery(ctx context.Context, sqlText string) (string, error) {
	rows, err := a.db.QueryContext(ctx, "EXPLAIN "+sqlText)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", err
	}

	var plan string
	for rows.Next() {
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return "", err
		}
		plan += fmt.Sprintf("%v\n", values)
	}
	return plan, rows.Err()
}

const duckdbColumnsQuery = `
SELECT table_name, column_name, data_type, is_nullable
FROM information_schema.columns
WHERE table_schema = 'main'
ORDER BY table_name, ordinal_position`

func (a *duckdbAdapter) Introspect(ctx context.Context) (*schema.Snapshot, error) {
	snap := schema.NewSnapshot("duckdb", a.cfg.Database)
	tables := make(map[string]*schema.TableInfo)

	rows, err := a.db.QueryContext(ctx, duckdbColumnsQuery)
	if err != nil {
		return nil, fmt.Errorf("introspect columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, colName, dataType, isNullable string
		if err := rows.Scan(&tableName, &colName, &dataType, &isNullable); err != nil {
			return nil, err
		}
		t, ok := tables[tableName]
		if !ok {
			t = &schema.TableInfo{Name: tableName, Schema: "main"}
			tables[tableName] = t
		}
		t.Columns = append(t.Columns, schema.ColumnInfo{
			Name:     colName,
			DataType: dataType,
			Nullable: isNullable == "YES",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range tables {
		snap.AddTable(*t)
	}
	return snap, nil
}
