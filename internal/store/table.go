package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Record is one decoded remote object, keyed by field name.
type Record map[string]any

// ColumnType is the declared SQLite type of a column.
type ColumnType string

const (
	TypeText    ColumnType = "TEXT"
	TypeInteger ColumnType = "INTEGER"
	TypeFloat   ColumnType = "FLOAT"
)

// Column is one entry of a table's column registry.
type Column struct {
	Name       string
	Type       ColumnType
	PrimaryKey bool
}

// ForeignKey declares that Column references OtherTable.OtherColumn.
type ForeignKey struct {
	Column      string
	OtherTable  string
	OtherColumn string
}

// Table describes a target table: its name, primary key and declared relations.
type Table struct {
	Name        string
	PrimaryKey  string
	ForeignKeys []ForeignKey
}

// Batch is a set of records destined for one table.
type Batch struct {
	Table   Table
	Records []Record
}

// UpsertOptions controls how a write treats unseen fields.
type UpsertOptions struct {
	// Alter extends the table with new columns instead of failing.
	Alter bool
}

func (t Table) validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if t.PrimaryKey == "" {
		return fmt.Errorf("table %s: primary key is required", t.Name)
	}
	return nil
}

// registry is the column registry view used during one write transaction.
// Changes are staged in pending and only merged into the store after commit.
type registry struct {
	committed map[string][]Column
	pending   map[string][]Column
}

func newRegistry(committed map[string][]Column) *registry {
	return &registry{committed: committed, pending: make(map[string][]Column)}
}

// lookup returns the known columns of a table, loading them from the
// database the first time. exists is false if the table does not exist.
func (r *registry) lookup(ctx context.Context, q queryer, table string) (cols []Column, exists bool, err error) {
	if cols, ok := r.pending[table]; ok {
		return cols, true, nil
	}
	if cols, ok := r.committed[table]; ok {
		return cols, true, nil
	}
	cols, err = loadColumns(ctx, q, table)
	if err != nil {
		return nil, false, err
	}
	if len(cols) == 0 {
		return nil, false, nil
	}
	r.pending[table] = cols
	return cols, true, nil
}

func (r *registry) set(table string, cols []Column) {
	r.pending[table] = cols
}

func (r *registry) commit() {
	for table, cols := range r.pending {
		r.committed[table] = cols
	}
}

// loadColumns reads a table's columns from PRAGMA table_info.
// Returns an empty slice if the table does not exist.
func loadColumns(ctx context.Context, q queryer, table string) ([]Column, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info %s: %w", table, err)
		}
		cols = append(cols, Column{Name: name, Type: ColumnType(strings.ToUpper(typ)), PrimaryKey: pk > 0})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table info %s: %w", table, err)
	}
	return cols, nil
}

// inferColumns derives the column set for a new table from its first batch.
// The primary key comes first, then fields in order of first appearance
// (sorted within each record), then declared foreign-key columns not yet seen.
func inferColumns(t Table, records []Record) []Column {
	cols := []Column{{Name: t.PrimaryKey, Type: inferType(t.PrimaryKey, records), PrimaryKey: true}}
	seen := map[string]bool{t.PrimaryKey: true}

	for _, name := range fieldOrder(records) {
		if seen[name] {
			continue
		}
		seen[name] = true
		cols = append(cols, Column{Name: name, Type: inferType(name, records)})
	}

	for _, fk := range t.ForeignKeys {
		if seen[fk.Column] {
			continue
		}
		seen[fk.Column] = true
		cols = append(cols, Column{Name: fk.Column, Type: TypeText})
	}
	return cols
}

// newColumns returns the fields present in records but absent from cols,
// in order of first appearance.
func newColumns(cols []Column, records []Record) []Column {
	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[c.Name] = true
	}

	var added []Column
	for _, name := range fieldOrder(records) {
		if known[name] {
			continue
		}
		known[name] = true
		added = append(added, Column{Name: name, Type: inferType(name, records)})
	}
	return added
}

// fieldOrder lists every field name across records, first appearance wins.
func fieldOrder(records []Record) []string {
	seen := make(map[string]bool)
	var order []string
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	return order
}

// inferType picks the type of the first non-null value of a field.
func inferType(field string, records []Record) ColumnType {
	for _, rec := range records {
		if v, ok := rec[field]; ok && v != nil {
			return typeOf(v)
		}
	}
	return TypeText
}

func createTableSQL(t Table, cols []Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", quoteIdent(t.Name))
	for i, c := range cols {
		fmt.Fprintf(&b, "   %s %s", quoteIdent(c.Name), c.Type)
		if c.PrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
		if i < len(cols)-1 || len(t.ForeignKeys) > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	for i, fk := range t.ForeignKeys {
		fmt.Fprintf(&b, "   FOREIGN KEY(%s) REFERENCES %s(%s)",
			quoteIdent(fk.Column), quoteIdent(fk.OtherTable), quoteIdent(fk.OtherColumn))
		if i < len(t.ForeignKeys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}

func addColumnSQL(table string, c Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quoteIdent(table), quoteIdent(c.Name), c.Type)
}

// upsertSQL builds a full-replace upsert: every non-key column is
// overwritten with the incoming value, NULL when the record omits it.
func upsertSQL(table string, cols []Column, pk string) string {
	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	var updates []string
	for i, c := range cols {
		names[i] = quoteIdent(c.Name)
		placeholders[i] = "?"
		if c.Name != pk {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", quoteIdent(c.Name), quoteIdent(c.Name)))
		}
	}

	conflict := "DO NOTHING"
	if len(updates) > 0 {
		conflict = "DO UPDATE SET " + strings.Join(updates, ", ")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) %s",
		quoteIdent(table),
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
		quoteIdent(pk),
		conflict,
	)
}

// quoteIdent quotes an SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
