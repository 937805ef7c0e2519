package database

import (
	"context"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/queryeval/kernel/internal/logger"
	"github.com/queryeval/kernel/internal/schema"
)

// sqliteAdapter backs the "sqlite" dialect via mattn/go-sqlite3, introspecting
// structure through PRAGMA statements rather than information_schema, which
// SQLite does not implement.
type sqliteAdapter struct {
	*sqlAdapter
}

func newSQLiteAdapter(cfg Config, log *logger.StructuredLogger) *sqliteAdapter {
	return &sqliteAdapter{sqlAdapter: newSQLAdapter("sqlite3", "sqlite", cfg, log)}
}

func (a *sqliteAdapter) Execute(ctx context.Context, sqlText string, rowLimit int) (*ExecutionResult, error) {
	return a.execute(ctx, sqlText, rowLimit)
}

func (a *sqliteAdapter) ExplainQuery(ctx context.Context, sqlText string) (string, error) {
	rows, err := a.db.QueryContext(ctx, "EXPLAIN QUERY PLAN "+sqlText)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var plan string
	for rows.Next() {
		var id, parent, notused int
		var detail string
		if err := rows.Scan(&id, &parent, &notused, &detail); err != nil {
			return "", err
		}
		plan += detail + "\n"
	}
	return plan, rows.Err()
}

func (a *sqliteAdapter) Introspect(ctx context.Context) (*schema.Snapshot, error) {
	snap := schema.NewSnapshot("sqlite", a.cfg.Database)

	rows, err := a.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, err
	}
	var tableNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		tableNames = append(tableNames, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, name := range tableNames {
		cols, err := a.tableColumns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("introspect %s: %w", name, err)
		}
		snap.AddTable(schema.TableInfo{Name: name, Columns: cols})

		fks, err := a.tableForeignKeys(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("introspect foreign keys of %s: %w", name, err)
		}
		if len(fks) > 0 {
			snap.ForeignKeys[name] = fks
		}
	}

	return snap, nil
}

func (a *sqliteAdapter) tableColumns(ctx context.Context, table string) ([]schema.ColumnInfo, error) {
	rows, err := a.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []schema.ColumnInfo
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull int
		var defaultValue any
		var pk int
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}
		def := ""
		if defaultValue != nil {
			def = fmt.Sprintf("%v", defaultValue)
		}
		cols = append(cols, schema.ColumnInfo{
			Name:         name,
			DataType:     dataType,
			Nullable:     notNull == 0,
			PrimaryKey:   pk > 0,
			DefaultValue: def,
		})
	}
	return cols, rows.Err()
}

func (a *sqliteAdapter) tableForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	rows, err := a.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		var id, seq int
		var refTable, from, to, onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		fks = append(fks, schema.ForeignKey{
			Column:           from,
			ReferencedTable:  refTable,
			ReferencedColumn: to,
		})
	}
	return fks, rows.Err()
}
