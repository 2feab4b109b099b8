// Package config loads the optional YAML configuration file.
//
// The file is validated against an embedded CUE schema before it is decoded,
// so unknown keys, out-of-range page sizes and malformed table names are
// rejected with the offending path. Absent keys take the defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/todoist-to-sqlite/internal/todoist"
)

//go:embed schema.cue
var schemaCUE string

// Config is the resolved configuration.
type Config struct {
	RESTURL    string
	SyncURL    string
	PageSize   int
	PageDelay  time.Duration
	Timeout    time.Duration
	Pagination todoist.PaginationMode
	Tables     todoist.TableNames
}

// file mirrors the YAML layout.
type file struct {
	RESTURL    string `yaml:"rest_url"`
	SyncURL    string `yaml:"sync_url"`
	PageSize   int    `yaml:"page_size"`
	PageDelay  string `yaml:"page_delay"`
	Timeout    string `yaml:"timeout"`
	Pagination string `yaml:"pagination"`
	Tables     struct {
		Tasks     string `yaml:"tasks"`
		Projects  string `yaml:"projects"`
		Completed string `yaml:"completed"`
	} `yaml:"tables"`
}

// Error reports an unreadable or invalid configuration file.
type Error struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsConfigError returns true if err is a configuration failure.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		RESTURL:    todoist.DefaultRESTURL,
		SyncURL:    todoist.DefaultSyncURL,
		PageSize:   todoist.MaxPageSize,
		PageDelay:  time.Second,
		Timeout:    30 * time.Second,
		Pagination: todoist.PaginationCursor,
		Tables: todoist.TableNames{
			Tasks:     todoist.DefaultTasksTable,
			Projects:  todoist.DefaultProjectsTable,
			Completed: todoist.DefaultCompletedTable,
		},
	}
}

// Load reads the file at path. An empty path returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return cfg, nil
}

// Parse validates and decodes YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if raw != nil {
		if err := validate(raw); err != nil {
			return nil, err
		}
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	cfg := Default()
	if f.RESTURL != "" {
		cfg.RESTURL = f.RESTURL
	}
	if f.SyncURL != "" {
		cfg.SyncURL = f.SyncURL
	}
	if f.PageSize != 0 {
		cfg.PageSize = f.PageSize
	}
	if f.Pagination != "" {
		cfg.Pagination = todoist.PaginationMode(f.Pagination)
	}
	if f.PageDelay != "" {
		d, err := parseDuration("page_delay", f.PageDelay)
		if err != nil {
			return nil, err
		}
		cfg.PageDelay = d
	}
	if f.Timeout != "" {
		d, err := parseDuration("timeout", f.Timeout)
		if err != nil {
			return nil, err
		}
		cfg.Timeout = d
	}
	if f.Tables.Tasks != "" {
		cfg.Tables.Tasks = f.Tables.Tasks
	}
	if f.Tables.Projects != "" {
		cfg.Tables.Projects = f.Tables.Projects
	}
	if f.Tables.Completed != "" {
		cfg.Tables.Completed = f.Tables.Completed
	}
	return cfg, nil
}

// validate unifies the raw document with #Config.
func validate(raw map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := schema.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", field)
	}
	return d, nil
}
