package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/todoist-to-sqlite/internal/syncer"
)

// CollectionResult summarizes one finished collection run.
type CollectionResult struct {
	Collection string `json:"collection"`
	Table      string `json:"table"`
	RunID      string `json:"run_id"`
	Items      int64  `json:"items"`
	Pages      int    `json:"pages"`
	Duration   string `json:"duration"`
}

// SyncResult is the payload of a successful sync or completed-tasks run.
type SyncResult struct {
	Database    string             `json:"database"`
	Collections []CollectionResult `json:"collections"`
}

func (r SyncResult) String() string {
	parts := make([]string, 0, len(r.Collections))
	for _, c := range r.Collections {
		parts = append(parts, fmt.Sprintf("%d %s", c.Items, c.Collection))
	}
	return fmt.Sprintf("Successfully synced %s to %s.", strings.Join(parts, ", "), r.Database)
}

func resultOf(run *syncer.Run, table string) CollectionResult {
	return CollectionResult{
		Collection: run.Collection,
		Table:      table,
		RunID:      run.ID,
		Items:      run.Processed(),
		Pages:      run.Pages,
		Duration:   run.Duration().Round(time.Millisecond).String(),
	}
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <db-path>",
		Short: "Sync active tasks and projects to a SQLite database",
		Long: `Fetch all projects and active tasks and upsert them by id.

Projects are written before tasks. Each collection is written in one
transaction; new fields in the remote payload become new columns.

Example:
  todoist-to-sqlite sync todoist.db
  todoist-to-sqlite sync --auth ~/.todoist/auth.json todoist.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, args[0], cmd)
		},
	}
}

func runSync(opts *RootOptions, dbPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger, closeLog := newLogger(opts, cmd.ErrOrStderr())
	defer closeLog()

	sess, err := openSession(opts, dbPath, logger)
	if err != nil {
		return formatter.Fail("failed to start sync", err)
	}
	defer sess.Close()

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	driver := syncer.New(sess.store, syncer.WithLogger(logger))

	collections := []syncer.FlatCollection{
		{Name: "projects", Table: sess.schema.Projects, Fetch: sess.client.FetchProjects},
		{Name: "tasks", Table: sess.schema.Tasks, Fetch: sess.client.FetchTasks},
	}

	result := SyncResult{Database: dbPath}
	for _, c := range collections {
		run, err := driver.SyncFlat(ctx, c)
		if err != nil {
			return formatter.Fail("sync failed", err)
		}
		formatter.VerboseLog("synced %d %s", run.Processed(), c.Name)
		result.Collections = append(result.Collections, resultOf(run, c.Table.Name))
	}

	return formatter.Success(result)
}
