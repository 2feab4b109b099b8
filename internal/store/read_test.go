package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_Golden(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.UpsertAll(ctx, testProjects, []Record{{"id": "p1", "name": "Inbox"}}, alter))
	require.NoError(t, s.UpsertAll(ctx, testTasks, []Record{
		{"id": "1", "content": "A", "project_id": "p1", "priority": json.Number("1")},
	}, alter))
	require.NoError(t, s.UpsertAll(ctx, testTasks, []Record{
		{"id": "2", "content": "B", "due": map[string]any{"date": "2024-01-02"}},
	}, alter))

	out, err := s.Describe(ctx)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "describe", []byte(out))
}

func TestAll_OrderedByKey(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.UpsertAll(ctx, testTasks, []Record{task("b", "2"), task("a", "1"), task("c", "3")}, alter))

	rows, err := s.All(ctx, testTasks)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0]["id"])
	assert.Equal(t, "b", rows[1]["id"])
	assert.Equal(t, "c", rows[2]["id"])
}

func TestColumns_MissingTable(t *testing.T) {
	s := createTestStore(t)

	cols, err := s.Columns(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, cols)
}
