package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todoist-to-sqlite/internal/todoist"
)

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 200, cfg.PageSize)
	assert.Equal(t, time.Second, cfg.PageDelay)
	assert.Equal(t, todoist.PaginationCursor, cfg.Pagination)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rest_url: http://127.0.0.1:8080/rest/v2
sync_url: http://127.0.0.1:8080/sync/v9
page_size: 50
page_delay: 250ms
timeout: 5s
pagination: offset
tables:
  completed: items
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080/rest/v2", cfg.RESTURL)
	assert.Equal(t, "http://127.0.0.1:8080/sync/v9", cfg.SyncURL)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, 250*time.Millisecond, cfg.PageDelay)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, todoist.PaginationOffset, cfg.Pagination)
	assert.Equal(t, "items", cfg.Tables.Completed)
	assert.Equal(t, "tasks", cfg.Tables.Tasks)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_ZeroDelay(t *testing.T) {
	cfg, err := Parse([]byte("page_delay: 0s\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.PageDelay)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"page size too large", "page_size: 500\n"},
		{"page size zero", "page_size: 0\n"},
		{"page size not int", "page_size: many\n"},
		{"unknown key", "verbose: true\n"},
		{"bad pagination", "pagination: pages\n"},
		{"bad url", "rest_url: ftp://example.com\n"},
		{"bad table name", "tables:\n  tasks: \"drop table\"\n"},
		{"unknown table key", "tables:\n  labels: labels\n"},
		{"bad duration", "page_delay: soon\n"},
		{"negative duration", "timeout: -1s\n"},
		{"not yaml", "page_size: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
