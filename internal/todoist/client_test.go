package todoist

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todoist-to-sqlite/internal/store"
	"github.com/roach88/todoist-to-sqlite/internal/testutil"
	"github.com/roach88/todoist-to-sqlite/internal/transport"
)

func newTestClient(t *testing.T, opts ...Option) (*Client, *testutil.FakeTodoist) {
	t.Helper()
	fake := testutil.NewFakeTodoist(t)
	fake.Token = "tok"
	opts = append([]Option{WithRESTURL(fake.RESTURL()), WithSyncURL(fake.SyncURL())}, opts...)
	return New(transport.New("tok"), opts...), fake
}

func TestFetchTasks(t *testing.T) {
	c, fake := newTestClient(t)
	fake.SetTasks(testutil.Page(`[{"id": "1", "content": "A"}, {"id": "2", "content": "B", "due": null}]`))

	tasks, err := c.FetchTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, store.Record{"id": "1", "content": "A"}, tasks[0])
	assert.Nil(t, tasks[1]["due"])
}

func TestFetchProjects(t *testing.T) {
	c, fake := newTestClient(t)
	fake.SetProjects(testutil.Page(`[{"id": "p1", "name": "Inbox", "order": 0}]`))

	projects, err := c.FetchProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, json.Number("0"), projects[0]["order"])
}

func TestFetchTasks_NotAnArray(t *testing.T) {
	c, fake := newTestClient(t)
	fake.SetTasks(testutil.Page(`{"id": "1"}`))

	_, err := c.FetchTasks(context.Background())
	require.Error(t, err)
	assert.True(t, transport.IsDecodeError(err))
}

func TestFetchTasks_ElementNotAnObject(t *testing.T) {
	c, fake := newTestClient(t)
	fake.SetTasks(testutil.Page(`[{"id": "1"}, 2]`))

	_, err := c.FetchTasks(context.Background())
	assert.True(t, transport.IsDecodeError(err))
}

func TestFetchTasks_Unauthorized(t *testing.T) {
	fake := testutil.NewFakeTodoist(t)
	fake.Token = "right"
	c := New(transport.New("wrong"), WithRESTURL(fake.RESTURL()))

	_, err := c.FetchTasks(context.Background())
	require.Error(t, err)
	assert.True(t, transport.IsTransportError(err))
	assert.Equal(t, http.StatusUnauthorized, transport.StatusCode(err))
}

func TestFetchCompletedPage_Query(t *testing.T) {
	c, fake := newTestClient(t)
	fake.SetCompleted(
		testutil.Page(`{"items": [{"id": 10}], "next_cursor": "c1"}`),
		testutil.Page(`{"items": []}`),
	)

	since := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	_, err := c.FetchCompletedPage(context.Background(), PageRequest{Limit: 50, Since: &since})
	require.NoError(t, err)
	_, err = c.FetchCompletedPage(context.Background(), PageRequest{Cursor: "c1", Limit: 50})
	require.NoError(t, err)

	queries := fake.Queries()
	require.Len(t, queries, 2)

	assert.Equal(t, "50", queries[0].Get("limit"))
	assert.Equal(t, "2024-01-02T03:04:05", queries[0].Get("since"))
	assert.False(t, queries[0].Has("offset"))
	assert.False(t, queries[0].Has("until"))

	assert.Equal(t, "c1", queries[1].Get("offset"))
	assert.False(t, queries[1].Has("since"))
}

func TestFetchCompletedPage_LimitClamped(t *testing.T) {
	c, fake := newTestClient(t)

	_, err := c.FetchCompletedPage(context.Background(), PageRequest{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, "200", fake.Queries()[0].Get("limit"))
}

func TestFetchCompletedPage_Decodes(t *testing.T) {
	c, fake := newTestClient(t)
	fake.SetCompleted(testutil.Page(`{
		"items": [{"id": "1", "project_id": "p2"}, {"id": "2", "project_id": "p1"}],
		"projects": {"p2": {"id": "p2", "name": "Work"}, "p1": {"id": "p1", "name": "Inbox"}},
		"next_cursor": "abc"
	}`))

	page, err := c.FetchCompletedPage(context.Background(), PageRequest{})
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	require.Len(t, page.Projects, 2)
	assert.Equal(t, "p1", page.Projects[0]["id"]) // sorted by key
	assert.Equal(t, Cursor("abc"), page.NextCursor)
	assert.False(t, page.Terminal())
}

func TestFetchCompletedPage_NumericCursor(t *testing.T) {
	c, fake := newTestClient(t)
	fake.SetCompleted(testutil.Page(`{"items": [{"id": 1}], "next_cursor": 200}`))

	page, err := c.FetchCompletedPage(context.Background(), PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, Cursor("200"), page.NextCursor)
}

func TestFetchCompletedPage_BadShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array body", `[]`},
		{"missing items", `{"next_cursor": "c"}`},
		{"items not array", `{"items": {}}`},
		{"item not object", `{"items": [1]}`},
		{"projects not object", `{"items": [], "projects": []}`},
		{"bad cursor", `{"items": [], "next_cursor": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake := newTestClient(t)
			fake.SetCompleted(testutil.Page(tt.body))

			_, err := c.FetchCompletedPage(context.Background(), PageRequest{})
			require.Error(t, err)
			assert.True(t, transport.IsDecodeError(err), "got %v", err)
		})
	}
}

func TestFetchCompletedPage_OffsetMode(t *testing.T) {
	c, fake := newTestClient(t, WithPagination(PaginationOffset))
	fake.SetCompleted(
		testutil.Page(`{"items": [{"id": 1}, {"id": 2}]}`),
		testutil.Page(`{"items": [{"id": 3}]}`),
	)

	page, err := c.FetchCompletedPage(context.Background(), PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, OffsetCursor(2), page.NextCursor)

	page, err = c.FetchCompletedPage(context.Background(), PageRequest{Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, OffsetCursor(3), page.NextCursor)
	assert.Equal(t, "2", fake.Queries()[1].Get("offset"))
}

func TestFetchCompletedPage_CursorModeNoSynthesis(t *testing.T) {
	c, fake := newTestClient(t)
	fake.SetCompleted(testutil.Page(`{"items": [{"id": 1}]}`))

	page, err := c.FetchCompletedPage(context.Background(), PageRequest{})
	require.NoError(t, err)
	assert.True(t, page.NextCursor.IsZero())
	assert.True(t, page.Terminal())
}
