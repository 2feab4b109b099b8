package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/todoist-to-sqlite/internal/store"
)

// TableInfo describes one table of the local database.
type TableInfo struct {
	Name        string       `json:"name"`
	Rows        int          `json:"rows"`
	Columns     []ColumnInfo `json:"columns"`
	ForeignKeys []string     `json:"foreign_keys,omitempty"`
}

// ColumnInfo describes one column.
type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
}

// schemaText prints the text form produced by store.Describe.
type schemaText string

func (s schemaText) String() string {
	return strings.TrimRight(string(s), "\n")
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <db-path>",
		Short: "Show tables, columns and foreign keys of a synced database",
		Long: `Print every table with its row count, columns and declared foreign keys.

The database must already exist; this command never creates one.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, args[0], cmd)
		},
	}
}

func runSchema(opts *RootOptions, dbPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger, closeLog := newLogger(opts, cmd.ErrOrStderr())
	defer closeLog()

	if _, err := os.Stat(dbPath); err != nil {
		return formatter.Fail("database not found",
			WrapExitError(ExitCommandError, dbPath, err))
	}

	st, err := store.Open(dbPath, store.WithLogger(logger))
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Format != "json" {
		text, err := st.Describe(ctx)
		if err != nil {
			return formatter.Fail("failed to read schema", err)
		}
		return formatter.Success(schemaText(text))
	}

	tables, err := describeTables(ctx, st)
	if err != nil {
		return formatter.Fail("failed to read schema", err)
	}
	return formatter.Success(tables)
}

func describeTables(ctx context.Context, st *store.Store) ([]TableInfo, error) {
	names, err := st.Tables(ctx)
	if err != nil {
		return nil, err
	}

	tables := make([]TableInfo, 0, len(names))
	for _, name := range names {
		cols, err := st.Columns(ctx, name)
		if err != nil {
			return nil, err
		}
		fks, err := st.ForeignKeys(ctx, name)
		if err != nil {
			return nil, err
		}
		n, err := st.Count(ctx, name)
		if err != nil {
			return nil, err
		}

		info := TableInfo{Name: name, Rows: n, Columns: make([]ColumnInfo, 0, len(cols))}
		for _, c := range cols {
			info.Columns = append(info.Columns, ColumnInfo{
				Name:       c.Name,
				Type:       string(c.Type),
				PrimaryKey: c.PrimaryKey,
			})
		}
		for _, fk := range fks {
			info.ForeignKeys = append(info.ForeignKeys,
				fmt.Sprintf("%s -> %s.%s", fk.Column, fk.OtherTable, fk.OtherColumn))
		}
		tables = append(tables, info)
	}
	return tables, nil
}
