// Package credential reads and writes the API token file.
//
// The file is a JSON object holding at least a "todoist_api_token" string.
// Other keys are preserved when the token is rewritten.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// TokenField is the key holding the API token.
	TokenField = "todoist_api_token"

	// DefaultPath is where the token file lives unless overridden.
	DefaultPath = "auth.json"
)

// Error reports a missing or unusable credential file.
// It is fatal: no network call is made without a token.
type Error struct {
	Path   string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credential %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("credential %s: %s", e.Path, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCredentialError returns true if err is a credential failure.
// Uses errors.As to handle wrapped errors.
func IsCredentialError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// Load returns the API token stored at path.
func Load(path string) (string, error) {
	data, err := read(path)
	if err != nil {
		return "", err
	}
	raw, ok := data[TokenField]
	if !ok {
		return "", &Error{Path: path, Reason: fmt.Sprintf("no %q field, run the auth command first", TokenField)}
	}
	token, ok := raw.(string)
	if !ok || strings.TrimSpace(token) == "" {
		return "", &Error{Path: path, Reason: fmt.Sprintf("%q must be a non-empty string", TokenField)}
	}
	return strings.TrimSpace(token), nil
}

// Save writes token to path, keeping any other keys already in the file.
// The file is created with owner-only permissions.
func Save(path, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &Error{Path: path, Reason: "token is empty"}
	}

	data, err := read(path)
	if err != nil {
		var ce *Error
		if !errors.As(err, &ce) || !errors.Is(ce.Err, os.ErrNotExist) {
			return err
		}
		data = map[string]any{}
	}
	data[TokenField] = token

	out, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return &Error{Path: path, Reason: "encode", Err: err}
	}
	out = append(out, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return &Error{Path: path, Reason: "create directory", Err: err}
		}
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return &Error{Path: path, Reason: "write", Err: err}
	}
	return nil
}

func read(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &Error{Path: path, Reason: "file not found, run the auth command first", Err: err}
		}
		return nil, &Error{Path: path, Reason: "read", Err: err}
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &Error{Path: path, Reason: "not a JSON object", Err: err}
	}
	if data == nil {
		return nil, &Error{Path: path, Reason: "not a JSON object"}
	}
	return data, nil
}
