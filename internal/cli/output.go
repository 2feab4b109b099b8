package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/todoist-to-sqlite/internal/config"
	"github.com/roach88/todoist-to-sqlite/internal/credential"
	"github.com/roach88/todoist-to-sqlite/internal/store"
	"github.com/roach88/todoist-to-sqlite/internal/syncer"
	"github.com/roach88/todoist-to-sqlite/internal/transport"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Remote failure (transport or decode)
	ExitCommandError = 2 // Command error (credential, config, schema, bad arguments)
)

// Error codes reported in the JSON envelope.
const (
	ErrCodeCredential = "CREDENTIAL_ERROR"
	ErrCodeConfig     = "CONFIG_ERROR"
	ErrCodeTransport  = string(transport.ErrCodeTransport)
	ErrCodeDecode     = string(transport.ErrCodeDecode)
	ErrCodeSchema     = string(store.ErrCodeSchema)
	ErrCodeUsage      = "USAGE_ERROR"
	ErrCodeGeneric    = "ERROR"
)

// ExitError represents an error with a specific exit code.
// Commands return it once the error has been written to the output.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classify maps a domain error to its envelope code and exit code.
func classify(err error) (string, int) {
	var (
		credErr *credential.Error
		cfgErr  *config.Error
		trErr   *transport.Error
		stErr   *store.Error
		exitErr *ExitError
	)
	switch {
	case errors.As(err, &credErr):
		return ErrCodeCredential, ExitCommandError
	case errors.As(err, &cfgErr):
		return ErrCodeConfig, ExitCommandError
	case errors.As(err, &trErr):
		return string(trErr.Code), ExitFailure
	case errors.As(err, &stErr):
		return string(stErr.Code), ExitCommandError
	case errors.As(err, &exitErr):
		if exitErr.Code == ExitCommandError {
			return ErrCodeUsage, exitErr.Code
		}
		return ErrCodeGeneric, exitErr.Code
	default:
		return ErrCodeGeneric, ExitFailure
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for progress and diagnostics (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format.
// In text mode data is printed with fmt, so a Stringer controls its form.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := classify(err)

	var details any
	var runErr *syncer.RunError
	if errors.As(err, &runErr) {
		details = map[string]any{
			"collection": runErr.Collection,
			"run_id":     runErr.RunID,
			"synced":     runErr.Synced,
		}
	}

	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), details)
	return WrapExitError(exit, message, err)
}

// Progress writes a progress line to ErrWriter in text mode.
func (f *OutputFormatter) Progress(format string, args ...any) {
	if f.Format == "json" {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
