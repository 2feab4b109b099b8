package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// Tables returns the names of all user tables, sorted.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

// Columns returns a table's columns in declaration order.
// Returns an empty slice if the table does not exist.
func (s *Store) Columns(ctx context.Context, table string) ([]Column, error) {
	cols, err := loadColumns(ctx, s.db, table)
	if err != nil {
		return nil, err
	}
	if cols == nil {
		cols = []Column{}
	}
	return cols, nil
}

// ForeignKeys returns the foreign keys declared on a table, sorted by column.
func (s *Store) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("foreign key list %s: %w", table, err)
	}
	defer rows.Close()

	fks := []ForeignKey{}
	for rows.Next() {
		var (
			id, seq                   int
			other, from               string
			to                        sql.NullString
			onUpdate, onDelete, match string
		)
		if err := rows.Scan(&id, &seq, &other, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("scan foreign key %s: %w", table, err)
		}
		fks = append(fks, ForeignKey{Column: from, OtherTable: other, OtherColumn: to.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys %s: %w", table, err)
	}

	sort.Slice(fks, func(i, j int) bool { return fks[i].Column < fks[j].Column })
	return fks, nil
}

// Count returns the number of rows in a table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Get returns the row whose primary key equals id.
// Returns ErrNotFound (wrapped) if there is no such row.
func (s *Store) Get(ctx context.Context, t Table, id any) (Record, error) {
	key, err := sqlValue(id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", t.Name, err)
	}
	records, err := s.query(ctx, fmt.Sprintf("SELECT * FROM %s WHERE %s = ?",
		quoteIdent(t.Name), quoteIdent(t.PrimaryKey)), key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", t.Name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("get %s %v: %w", t.Name, id, ErrNotFound)
	}
	return records[0], nil
}

// All returns every row of a table ordered by primary key.
func (s *Store) All(ctx context.Context, t Table) ([]Record, error) {
	records, err := s.query(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY %s",
		quoteIdent(t.Name), quoteIdent(t.PrimaryKey)))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.Name, err)
	}
	return records, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []Record{}
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(Record, len(names))
		for i, name := range names {
			if b, ok := values[i].([]byte); ok {
				rec[name] = string(b)
			} else {
				rec[name] = values[i]
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Describe renders every table's columns, foreign keys and row count
// as plain text, one table per block, tables sorted by name.
func (s *Store) Describe(ctx context.Context) (string, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, table := range tables {
		if i > 0 {
			b.WriteString("\n")
		}
		cols, err := s.Columns(ctx, table)
		if err != nil {
			return "", err
		}
		fks, err := s.ForeignKeys(ctx, table)
		if err != nil {
			return "", err
		}
		n, err := s.Count(ctx, table)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&b, "%s (%d rows)\n", table, n)
		for _, c := range cols {
			fmt.Fprintf(&b, "  %s %s", c.Name, c.Type)
			if c.PrimaryKey {
				b.WriteString(" PRIMARY KEY")
			}
			b.WriteString("\n")
		}
		for _, fk := range fks {
			fmt.Fprintf(&b, "  %s -> %s.%s\n", fk.Column, fk.OtherTable, fk.OtherColumn)
		}
	}
	return b.String(), nil
}
