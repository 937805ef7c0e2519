package database

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/queryeval/kernel/internal/logger"
	"github.com/queryeval/kernel/internal/schema"
)

// mysqlAdapter backs the "mysql" dialect via go-sql-driver/mysql,
// introspecting structure through information_schema, MySQL's closest
// analogue to PostgreSQL's.
type mysqlAdapter struct {
	*sqlAdapter
}

func newMySQLAdapter(cfg Config, log *logger.StructuredLogger) *mysqlAdapter {
	return &mysqlAdapter{sqlAdapter: newSQLAdapter("mysql", "mysql", cfg, log)}
}

func (a *mysqlAdapter) Execute(ctx context.Context, sqlText string, rowLimit int) (*ExecutionResult, error) {
	return a.execute(ctx, sqlText, rowLimit)
}

func (a *mysqlAdapter) ExplainQuery(ctx context.Context, sqlText string) (string, error) {
	rows, err := a.db.QueryContext(ctx, "EXPLAIN FORMAT=TRADITIONAL "+sqlText)
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

const mysqlColumnsQuery = `
SELECT table_name, column_name, data_type, is_nullable, column_default,
       column_key = 'PRI' AS is_primary
FROM information_schema.columns
WHERE table_schema = ?
ORDER BY table_name, ordinal_position`

const mysqlForeignKeysQuery = `
SELECT table_name, column_name, referenced_table_name, referenced_column_name
FROM information_schema.key_column_usage
WHERE table_schema = ? AND referenced_table_name IS NOT NULL`

func (a *mysqlAdapter) Introspect(ctx context.Context) (*schema.Snapshot, error) {
	snap := schema.NewSnapshot("mysql", a.cfg.Database)
	tables := make(map[string]*schema.TableInfo)

	rows, err := a.db.QueryContext(ctx, mysqlColumnsQuery, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("introspect columns: %w", err)
	}
	for rows.Next() {
		var tableName, colName, dataType, isNullable string
		var defaultValue *string
		var isPrimary bool
		if err := rows.Scan(&tableName, &colName, &dataType, &isNullable, &defaultValue, &isPrimary); err != nil {
			rows.Close()
			return nil, err
		}
		t, ok := tables[tableName]
		if !ok {
			t = &schema.TableInfo{Name: tableName}
			tables[tableName] = t
		}
		def := ""
		if defaultValue != nil {
			def = *defaultValue
		}
		t.Columns = append(t.Columns, schema.ColumnInfo{
			Name:         colName,
			DataType:     dataType,
			Nullable:     isNullable == "YES",
			PrimaryKey:   isPrimary,
			DefaultValue: def,
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, t := range tables {
		snap.AddTable(*t)
	}

	fkRows, err := a.db.QueryContext(ctx, mysqlForeignKeysQuery, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("introspect foreign keys: %w", err)
	}
	defer fkRows.Close()
	for fkRows.Next() {
		var tableName, column, refTable, refColumn string
		if err := fkRows.Scan(&tableName, &column, &refTable, &refColumn); err != nil {
			return nil, err
		}
		snap.ForeignKeys[tableName] = append(snap.ForeignKeys[tableName], schema.ForeignKey{
			Column:           column,
			ReferencedTable:  refTable,
			ReferencedColumn: refColumn,
		})
	}

	return snap, fkRows.Err()
}
