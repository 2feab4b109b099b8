// Package todoist fetches Todoist collections as store records.
//
// Active tasks and projects come from flat REST endpoints that return the
// whole collection in one response. Completed tasks come from a paginated
// endpoint; FetchCompletedPage returns one page together with the cursor
// for the next one.
package todoist

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/todoist-to-sqlite/internal/store"
	"github.com/roach88/todoist-to-sqlite/internal/transport"
)

const (
	// DefaultRESTURL is the base of the flat collection endpoints.
	DefaultRESTURL = "https://api.todoist.com/rest/v2"

	// DefaultSyncURL is the base of the completed-tasks endpoint.
	DefaultSyncURL = "https://api.todoist.com/sync/v9"

	// MaxPageSize is the largest limit the completed endpoint accepts.
	MaxPageSize = 200

	// DateLayout is the ISO-8601 form used for since/until.
	DateLayout = "2006-01-02T15:04:05"
)

// PaginationMode selects how the next cursor is derived from a page.
type PaginationMode string

const (
	// PaginationCursor uses the response's next_cursor verbatim.
	PaginationCursor PaginationMode = "cursor"

	// PaginationOffset falls back to offset+len(items) when the response
	// carries no next_cursor (the sync v9 offset walk).
	PaginationOffset PaginationMode = "offset"
)

// Getter performs one decoded GET request. *transport.Client implements it.
type Getter interface {
	GetInto(ctx context.Context, rawURL string, query transport.Query, dst any) error
}

// Client fetches Todoist collections.
type Client struct {
	getter  Getter
	restURL string
	syncURL string
	mode    PaginationMode
}

// Option configures a Client.
type Option func(*Client)

// WithRESTURL overrides the flat endpoint base URL.
func WithRESTURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.restURL = strings.TrimRight(u, "/")
		}
	}
}

// WithSyncURL overrides the completed endpoint base URL.
func WithSyncURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.syncURL = strings.TrimRight(u, "/")
		}
	}
}

// WithPagination selects the pagination convention.
func WithPagination(mode PaginationMode) Option {
	return func(c *Client) {
		if mode != "" {
			c.mode = mode
		}
	}
}

// New creates a Client that issues requests through getter.
func New(getter Getter, opts ...Option) *Client {
	c := &Client{
		getter:  getter,
		restURL: DefaultRESTURL,
		syncURL: DefaultSyncURL,
		mode:    PaginationCursor,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTasks returns every active task.
func (c *Client) FetchTasks(ctx context.Context) ([]store.Record, error) {
	return c.fetchList(ctx, c.restURL+"/tasks")
}

// FetchProjects returns every project.
func (c *Client) FetchProjects(ctx context.Context) ([]store.Record, error) {
	return c.fetchList(ctx, c.restURL+"/projects")
}

func (c *Client) fetchList(ctx context.Context, u string) ([]store.Record, error) {
	var body any
	if err := c.getter.GetInto(ctx, u, nil, &body); err != nil {
		return nil, err
	}
	list, ok := body.([]any)
	if !ok {
		return nil, transport.DecodeError(u, fmt.Errorf("expected a JSON array, got %s", jsonKind(body)))
	}
	records, err := toRecords(list)
	if err != nil {
		return nil, transport.DecodeError(u, err)
	}
	return records, nil
}

// PageRequest addresses one page of completed tasks.
type PageRequest struct {
	Cursor Cursor
	Limit  int
	Since  *time.Time
	Until  *time.Time
}

// FetchCompletedPage requests one page of completed tasks.
//
// Since and Until are independent server-side filters; either, both or
// neither may be set. The returned page carries the projects referenced by
// its items, when the server includes them.
func (c *Client) FetchCompletedPage(ctx context.Context, req PageRequest) (*Page, error) {
	limit := req.Limit
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	u := c.syncURL + "/completed/get_all"
	query := transport.Query{
		transport.String("limit", strconv.Itoa(limit)),
		transport.Optional("offset", req.Cursor.param()),
		transport.Optional("since", formatTime(req.Since)),
		transport.Optional("until", formatTime(req.Until)),
	}

	var body any
	if err := c.getter.GetInto(ctx, u, query, &body); err != nil {
		return nil, err
	}

	page, err := decodePage(body)
	if err != nil {
		return nil, transport.DecodeError(u, err)
	}

	if c.mode == PaginationOffset && page.NextCursor.IsZero() && len(page.Items) > 0 {
		offset, err := req.Cursor.Offset()
		if err != nil {
			return nil, transport.DecodeError(u, err)
		}
		page.NextCursor = OffsetCursor(offset + len(page.Items))
	}
	return page, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
