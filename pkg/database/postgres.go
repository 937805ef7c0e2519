package database

import (
	"context"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/queryeval/kernel/internal/logger"
	"github.com/queryeval/kernel/internal/schema"
)

// postgresAdapter backs the "postgresql" dialect via lib/pq, introspecting
// structure through the standard information_schema views.
type postgresAdapter struct {
	*sqlAdapter
}

func newPostgresAdapter(cfg Config, log *logger.StructuredLogger) *postgresAdapter {
	return &postgresAdapter{sqlAdapter: newSQLAdapter("postgres", "postgresql", cfg, log)}
}

func (a *postgresAdapter) Execute(ctx context.Context, sqlText string, rowLimit int) (*ExecutionResult, error) {
	return a.execute(ctx, sqlText, rowLimit)
}

func (a *postgresAdapter) ExplainQuery(ctx context.Context, sqlText string) (string, error) {
	rows, err := a.db.QueryContext(ctx, "EXPLAIN (FORMAT TEXT) "+sqlText)
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

const postgresColumnsQuery = `
SELECT c.table_name, c.column_name, c.data_type, c.is_nullable, c.column_default,
       COALESCE(pk.is_primary, false) AS is_primary
FROM information_schema.columns c
LEFT JOIN (
	SELECT tc.table_name, kcu.column_name, true AS is_primary
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
	WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = $1
) pk ON pk.table_name = c.table_name AND pk.column_name = c.column_name
WHERE c.table_schema = $1
ORDER BY c.table_name, c.ordinal_position`

const postgresForeignKeysQuery = `
SELECT tc.table_name, kcu.column_name, ccu.table_name AS referenced_table, ccu.column_name AS referenced_column
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
	ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
JOIN information_schema.constraint_column_usage ccu
	ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.table_schema
WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = $1`

func (a *postgresAdapter) Introspect(ctx context.Context) (*schema.Snapshot, error) {
	schemaName := "public"
	snap := schema.NewSnapshot("postgresql", a.cfg.Database)
	tables := make(map[string]*schema.TableInfo)

	rows, err := a.db.QueryContext(ctx, postgresColumnsQuery, schemaName)
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
			t = &schema.TableInfo{Name: tableName, Schema: schemaName}
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

	fkRows, err := a.db.QueryContext(ctx, postgresForeignKeysQuery, schemaName)
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
