package store

import (
	"context"
	"database/sql"
	"fmt"
)

// UpsertAll writes records into one table in a single transaction.
// See Write for the upsert semantics.
func (s *Store) UpsertAll(ctx context.Context, t Table, records []Record, opts UpsertOptions) error {
	return s.Write(ctx, opts, Batch{Table: t, Records: records})
}

// Write applies all batches in one transaction.
//
// Each record is upserted by the table's primary key: a new key inserts a
// row, an existing key has every known column replaced by the incoming
// value (NULL when the record omits the field). Tables are created on first
// use with column types inferred from the batch. With opts.Alter, fields the
// table lacks are added as new columns; without it they fail the write.
//
// Any failure rolls back the whole transaction and returns a *Error.
// Empty batches are skipped.
func (s *Store) Write(ctx context.Context, opts UpsertOptions, batches ...Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &Error{Code: ErrCodeSchema, Op: "begin", Err: err}
	}
	defer tx.Rollback() // No-op if committed

	reg := newRegistry(s.columns)
	for _, b := range batches {
		if len(b.Records) == 0 {
			continue
		}
		if err := s.upsertBatch(ctx, tx, reg, b, opts); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return &Error{Code: ErrCodeSchema, Op: "commit", Err: err}
	}
	reg.commit()
	return nil
}

func (s *Store) upsertBatch(ctx context.Context, tx *sql.Tx, reg *registry, b Batch, opts UpsertOptions) error {
	t := b.Table
	if err := t.validate(); err != nil {
		return &Error{Code: ErrCodeSchema, Table: t.Name, Op: "upsert", Err: err}
	}

	for i, rec := range b.Records {
		if v, ok := rec[t.PrimaryKey]; !ok || v == nil {
			return &Error{
				Code:  ErrCodeMissingKey,
				Table: t.Name,
				Op:    "upsert",
				Err:   fmt.Errorf("record %d has no %q", i, t.PrimaryKey),
			}
		}
	}

	cols, exists, err := reg.lookup(ctx, tx, t.Name)
	if err != nil {
		return &Error{Code: ErrCodeSchema, Table: t.Name, Op: "upsert", Err: err}
	}

	if !exists {
		cols = inferColumns(t, b.Records)
		if _, err := tx.ExecContext(ctx, createTableSQL(t, cols)); err != nil {
			return &Error{Code: ErrCodeSchema, Table: t.Name, Op: "create", Err: err}
		}
		s.logger.Debug("created table", "table", t.Name, "columns", len(cols))
		reg.set(t.Name, cols)
	} else if added := newColumns(cols, b.Records); len(added) > 0 {
		if !opts.Alter {
			return &Error{
				Code:  ErrCodeSchema,
				Table: t.Name,
				Op:    "upsert",
				Err:   fmt.Errorf("no such column %q (schema growth disabled)", added[0].Name),
			}
		}
		for _, c := range added {
			if _, err := tx.ExecContext(ctx, addColumnSQL(t.Name, c)); err != nil {
				return &Error{Code: ErrCodeSchema, Table: t.Name, Op: "alter", Err: err}
			}
			s.logger.Debug("added column", "table", t.Name, "column", c.Name, "type", c.Type)
		}
		cols = append(append([]Column(nil), cols...), added...)
		reg.set(t.Name, cols)
	}

	stmt, err := tx.PrepareContext(ctx, upsertSQL(t.Name, cols, t.PrimaryKey))
	if err != nil {
		return &Error{Code: ErrCodeSchema, Table: t.Name, Op: "upsert", Err: err}
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for _, rec := range b.Records {
		for i, c := range cols {
			v, err := sqlValue(rec[c.Name])
			if err != nil {
				return &Error{Code: ErrCodeSchema, Table: t.Name, Op: "upsert", Err: fmt.Errorf("column %q: %w", c.Name, err)}
			}
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return &Error{Code: ErrCodeSchema, Table: t.Name, Op: "upsert", Err: err}
		}
	}
	return nil
}
