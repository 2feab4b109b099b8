package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/todoist-to-sqlite/internal/syncer"
	"github.com/roach88/todoist-to-sqlite/internal/todoist"
)

// CompletedOptions holds flags for the completed-tasks command.
type CompletedOptions struct {
	*RootOptions
	FromDate string
	ToDate   string
}

// dateLayouts are the accepted --from-date/--to-date forms.
var dateLayouts = []string{
	"2006-01-02",
	todoist.DateLayout,
	time.RFC3339,
}

// NewCompletedCommand creates the completed-tasks command.
func NewCompletedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompletedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "completed-tasks <db-path>",
		Short: "Save all completed tasks (requires Todoist Premium)",
		Long: `Walk the completed-tasks history page by page and upsert every item.

Each page is committed before the next request, with a pause between pages.
An interrupted or failed run keeps every page already written; re-running
starts from the first page and converges on the same rows.

Example:
  todoist-to-sqlite completed-tasks todoist.db
  todoist-to-sqlite completed-tasks --from-date 2024-01-01 todoist.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompleted(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.FromDate, "from-date", "", "only tasks completed on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.ToDate, "to-date", "", "only tasks completed on or before this date (YYYY-MM-DD)")

	return cmd
}

func runCompleted(opts *CompletedOptions, dbPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger, closeLog := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	defer closeLog()

	since, err := parseDate("from-date", opts.FromDate)
	if err != nil {
		return formatter.Fail("invalid arguments", err)
	}
	until, err := parseDate("to-date", opts.ToDate)
	if err != nil {
		return formatter.Fail("invalid arguments", err)
	}

	sess, err := openSession(opts.RootOptions, dbPath, logger)
	if err != nil {
		return formatter.Fail("failed to start sync", err)
	}
	defer sess.Close()

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	driver := syncer.New(sess.store,
		syncer.WithLogger(logger),
		syncer.WithPageDelay(sess.cfg.PageDelay),
		syncer.WithProgress(func(collection string, processed int64) {
			formatter.Progress("Fetching %s: %d", collection, processed)
		}),
	)

	run, err := driver.SyncPaged(ctx, syncer.PagedCollection{
		Name:     "completed tasks",
		Table:    sess.schema.Completed,
		Fetcher:  sess.client,
		Projects: sess.schema.Projects,
		PageSize: sess.cfg.PageSize,
		Since:    since,
		Until:    until,
	})
	if err != nil {
		return formatter.Fail("sync failed", err)
	}

	return formatter.Success(SyncResult{
		Database:    dbPath,
		Collections: []CollectionResult{resultOf(run, sess.schema.Completed.Name)},
	})
}

func parseDate(flag, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, NewExitError(ExitCommandError,
		fmt.Sprintf("--%s: cannot parse %q, expected YYYY-MM-DD", flag, value))
}
