package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// Response is one canned reply from the fake Todoist server.
// A zero Status means 200.
type Response struct {
	Status int
	Body   string
}

// Page returns a 200 response with the given JSON body.
func Page(body string) Response {
	return Response{Status: http.StatusOK, Body: body}
}

// Fail returns an error response with the given status.
func Fail(status int) Response {
	return Response{Status: status, Body: `{"error": "fake failure"}`}
}

// FakeTodoist is an httptest server that mimics the Todoist endpoints:
//
//	GET /rest/v2/tasks
//	GET /rest/v2/projects
//	GET /sync/v9/completed/get_all
//
// Completed pages are served in order, one per request; once they run out
// the server answers with an empty page. Every request's query is recorded.
type FakeTodoist struct {
	*httptest.Server

	// Token, when set, is required as the bearer credential.
	Token string

	mu        sync.Mutex
	tasks     Response
	projects  Response
	completed []Response
	queries   []url.Values
}

// NewFakeTodoist starts a fake server that is closed when the test ends.
func NewFakeTodoist(t *testing.T) *FakeTodoist {
	t.Helper()
	f := &FakeTodoist{
		tasks:    Page(`[]`),
		projects: Page(`[]`),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v2/tasks", func(w http.ResponseWriter, r *http.Request) {
		f.serve(w, r, func() Response { return f.tasks })
	})
	mux.HandleFunc("/rest/v2/projects", func(w http.ResponseWriter, r *http.Request) {
		f.serve(w, r, func() Response { return f.projects })
	})
	mux.HandleFunc("/sync/v9/completed/get_all", func(w http.ResponseWriter, r *http.Request) {
		f.serve(w, r, f.nextCompleted)
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// RESTURL is the base URL for the flat endpoints.
func (f *FakeTodoist) RESTURL() string {
	return f.URL + "/rest/v2"
}

// SyncURL is the base URL for the completed endpoint.
func (f *FakeTodoist) SyncURL() string {
	return f.URL + "/sync/v9"
}

// SetTasks sets the reply for the tasks endpoint.
func (f *FakeTodoist) SetTasks(r Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = r
}

// SetProjects sets the reply for the projects endpoint.
func (f *FakeTodoist) SetProjects(r Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = r
}

// SetCompleted queues the replies for successive completed requests.
func (f *FakeTodoist) SetCompleted(pages ...Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = pages
}

// Queries returns the query of every request served so far.
func (f *FakeTodoist) Queries() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.queries...)
}

func (f *FakeTodoist) nextCompleted() Response {
	if len(f.completed) == 0 {
		return Page(`{"items": []}`)
	}
	r := f.completed[0]
	f.completed = f.completed[1:]
	return r
}

func (f *FakeTodoist) serve(w http.ResponseWriter, r *http.Request, next func() Response) {
	f.mu.Lock()
	f.queries = append(f.queries, r.URL.Query())
	if f.Token != "" && r.Header.Get("Authorization") != "Bearer "+f.Token {
		f.mu.Unlock()
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	resp := next()
	f.mu.Unlock()

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(resp.Body))
}
