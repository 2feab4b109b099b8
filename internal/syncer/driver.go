package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/todoist-to-sqlite/internal/store"
	"github.com/roach88/todoist-to-sqlite/internal/todoist"
)

// DefaultPageDelay is the pause between completed-task pages.
const DefaultPageDelay = time.Second

// Writer applies batches to the local store in one transaction.
// Implemented by *store.Store.
type Writer interface {
	Write(ctx context.Context, opts store.UpsertOptions, batches ...store.Batch) error
}

// PageFetcher requests one page of a paginated collection.
// Implemented by *todoist.Client.
type PageFetcher interface {
	FetchCompletedPage(ctx context.Context, req todoist.PageRequest) (*todoist.Page, error)
}

// FetchFunc returns a whole flat collection.
type FetchFunc func(ctx context.Context) ([]store.Record, error)

// ProgressFunc receives the running item count after every written page.
type ProgressFunc func(collection string, processed int64)

// FlatCollection is a collection returned whole by a single request.
type FlatCollection struct {
	Name  string
	Table store.Table
	Fetch FetchFunc
}

// PagedCollection is a collection fetched page by page.
type PagedCollection struct {
	Name    string
	Table   store.Table
	Fetcher PageFetcher

	// Projects receives the projects referenced by each page.
	// Left empty, they are dropped.
	Projects store.Table

	PageSize int
	Since    *time.Time
	Until    *time.Time
}

// Driver runs collection syncs against one store.
//
// The store handle is passed in and owned by the caller; the driver never
// closes it.
type Driver struct {
	store     Writer
	logger    *slog.Logger
	runIDs    RunIDGenerator
	pageDelay time.Duration
	sleep     func(time.Duration)
	progress  ProgressFunc
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the driver's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithPageDelay sets the pause between pages. Zero disables it.
func WithPageDelay(delay time.Duration) Option {
	return func(d *Driver) {
		d.pageDelay = delay
	}
}

// WithSleep replaces the blocking pause. Tests use it to record delays
// without waiting.
func WithSleep(sleep func(time.Duration)) Option {
	return func(d *Driver) {
		if sleep != nil {
			d.sleep = sleep
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(d *Driver) {
		d.progress = fn
	}
}

// WithRunIDGenerator overrides the run ID generator.
func WithRunIDGenerator(gen RunIDGenerator) Option {
	return func(d *Driver) {
		if gen != nil {
			d.runIDs = gen
		}
	}
}

// New creates a Driver writing to w.
func New(w Writer, opts ...Option) *Driver {
	d := &Driver{
		store:     w,
		logger:    slog.Default(),
		runIDs:    UUIDv7Generator{},
		pageDelay: DefaultPageDelay,
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// schemaGrowth is always on: the remote payload is not contracted.
var schemaGrowth = store.UpsertOptions{Alter: true}

// SyncFlat fetches a flat collection and upserts it in one transaction.
//
// The returned Run is never nil. On failure the error is a *RunError.
func (d *Driver) SyncFlat(ctx context.Context, c FlatCollection) (*Run, error) {
	run := d.start(c.Name)
	log := d.logger.With("collection", c.Name, "run_id", run.ID)

	run.State = StateFetching
	records, err := c.Fetch(ctx)
	run.Pages++
	if err != nil {
		return d.fail(log, run, fmt.Errorf("fetch: %w", err))
	}
	log.Debug("fetched collection", "items", len(records))

	if len(records) > 0 {
		run.State = StateUpserting
		if err := d.store.Write(ctx, schemaGrowth, store.Batch{Table: c.Table, Records: records}); err != nil {
			return d.fail(log, run, fmt.Errorf("write %s: %w", c.Table.Name, err))
		}
		d.advance(run, len(records))
	}

	return d.finish(log, run), nil
}

// SyncPaged walks a paginated collection from the start to its terminal page.
//
// Each non-empty page is written in its own transaction before the next
// request, so a failure leaves every earlier page committed. The returned
// Run is never nil. On failure the error is a *RunError.
func (d *Driver) SyncPaged(ctx context.Context, c PagedCollection) (*Run, error) {
	run := d.start(c.Name)
	log := d.logger.With("collection", c.Name, "run_id", run.ID)

	for {
		run.State = StateFetching
		page, err := c.Fetcher.FetchCompletedPage(ctx, todoist.PageRequest{
			Cursor: run.Cursor,
			Limit:  c.PageSize,
			Since:  c.Since,
			Until:  c.Until,
		})
		run.Pages++
		if err != nil {
			return d.fail(log, run, fmt.Errorf("fetch page %d: %w", run.Pages, err))
		}
		log.Debug("fetched page",
			"page", run.Pages,
			"items", len(page.Items),
			"projects", len(page.Projects),
			"next_cursor", string(page.NextCursor),
		)

		if len(page.Items) == 0 {
			break
		}

		run.State = StateUpserting
		if err := d.store.Write(ctx, schemaGrowth, pageBatches(c, page)...); err != nil {
			return d.fail(log, run, fmt.Errorf("write page %d: %w", run.Pages, err))
		}
		d.advance(run, len(page.Items))

		if page.Terminal() {
			break
		}
		run.Cursor = page.NextCursor

		if d.pageDelay > 0 {
			d.sleep(d.pageDelay)
		}
	}

	return d.finish(log, run), nil
}

// pageBatches orders referenced projects ahead of the items that point at them.
func pageBatches(c PagedCollection, page *todoist.Page) []store.Batch {
	var batches []store.Batch
	if c.Projects.Name != "" && len(page.Projects) > 0 {
		batches = append(batches, store.Batch{Table: c.Projects, Records: page.Projects})
	}
	return append(batches, store.Batch{Table: c.Table, Records: page.Items})
}

func (d *Driver) start(collection string) *Run {
	return &Run{
		ID:         d.runIDs.Generate(),
		Collection: collection,
		State:      StateIdle,
		Started:    time.Now(),
	}
}

func (d *Driver) advance(run *Run, n int) {
	total := run.Progress.Add(n)
	if d.progress != nil {
		d.progress(run.Collection, total)
	}
}

func (d *Driver) finish(log *slog.Logger, run *Run) *Run {
	run.State = StateDone
	run.Finished = time.Now()
	log.Info("sync complete",
		"items", run.Processed(),
		"pages", run.Pages,
		"duration", run.Duration().Round(time.Millisecond),
	)
	return run
}

func (d *Driver) fail(log *slog.Logger, run *Run, err error) (*Run, error) {
	run.State = StateDone
	run.Finished = time.Now()
	run.Err = &RunError{
		Collection: run.Collection,
		RunID:      run.ID,
		Synced:     run.Processed(),
		Err:        err,
	}
	log.Error("sync failed",
		"items", run.Processed(),
		"pages", run.Pages,
		"error", err,
	)
	return run, run.Err
}
