package store

import (
	"path/filepath"
	"testing"
)

var (
	testProjects = Table{
		Name:       "projects",
		PrimaryKey: "id",
		ForeignKeys: []ForeignKey{
			{Column: "parent_id", OtherTable: "projects", OtherColumn: "id"},
		},
	}
	testTasks = Table{
		Name:       "tasks",
		PrimaryKey: "id",
		ForeignKeys: []ForeignKey{
			{Column: "project_id", OtherTable: "projects", OtherColumn: "id"},
			{Column: "parent_id", OtherTable: "tasks", OtherColumn: "id"},
		},
	}
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// task builds a minimal task record.
func task(id, content string) Record {
	return Record{"id": id, "content": content}
}
