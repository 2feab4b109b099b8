package testutil

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedRunIDGenerator(t *testing.T) {
	assert.Equal(t, "test-run-default", NewFixedRunIDGenerator("").Generate())

	gen := NewFixedRunIDGenerator("run-1")
	assert.Equal(t, "run-1", gen.Generate())
	assert.Equal(t, "run-1", gen.Generate())
}

func TestRecordingSleeper(t *testing.T) {
	s := &RecordingSleeper{}
	s.Sleep(time.Second)
	s.Sleep(2 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, s.Calls())

	s.Reset()
	assert.Empty(t, s.Calls())
}

func get(t *testing.T, url, token string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestFakeTodoist_Completed(t *testing.T) {
	f := NewFakeTodoist(t)
	f.SetCompleted(Page(`{"items": [{"id": 1}]}`), Fail(http.StatusBadGateway))

	status, body := get(t, f.SyncURL()+"/completed/get_all?limit=2", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"items": [{"id": 1}]}`, body)

	status, _ = get(t, f.SyncURL()+"/completed/get_all?offset=c1", "")
	assert.Equal(t, http.StatusBadGateway, status)

	status, body = get(t, f.SyncURL()+"/completed/get_all", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"items": []}`, body)

	queries := f.Queries()
	require.Len(t, queries, 3)
	assert.Equal(t, "2", queries[0].Get("limit"))
	assert.Equal(t, "c1", queries[1].Get("offset"))
}

func TestFakeTodoist_Token(t *testing.T) {
	f := NewFakeTodoist(t)
	f.Token = "tok"
	f.SetTasks(Page(`[{"id": "1"}]`))

	status, _ := get(t, f.RESTURL()+"/tasks", "wrong")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := get(t, f.RESTURL()+"/tasks", "tok")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"id": "1"}]`, body)

	status, body = get(t, f.RESTURL()+"/projects", "tok")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, body)
}
