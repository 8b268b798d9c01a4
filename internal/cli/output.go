package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a scenario, assertion or validation failed
	ExitCommandError = 2 // bad arguments, unreadable files, journal errors
)

// Codes carried by JSON error envelopes.
const (
	ErrCodeGeneric         = "E_GENERIC"
	ErrCodeInvalidScenario = "E_INVALID_SCENARIO"
	ErrCodeTestFailed      = "E_TEST_FAILED"
	ErrCodeJournal         = "E_JOURNAL"
	ErrCodeSessionExists   = "E_SESSION_EXISTS"
)

// ExitError is returned by commands that need a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps a command error to a process exit code. Errors that are
// not ExitErrors count as failures.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Envelope is the JSON document every command writes in json format.
type Envelope struct {
	Status    string         `json:"status"` // "ok" or "error"
	SessionID string         `json:"session_id,omitempty"`
	Data      any            `json:"data,omitempty"`
	Error     *EnvelopeError `json:"error,omitempty"`
}

// EnvelopeError describes a failed command.
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results as localized text or JSON envelopes.
// Diagnostics go to Diag so they never interleave with a JSON document on Out.
type OutputFormatter struct {
	Format  string
	Out     io.Writer
	Diag    io.Writer
	Verbose bool
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  opts.Format,
		Out:     cmd.OutOrStdout(),
		Diag:    cmd.ErrOrStderr(),
		Verbose: opts.Verbose,
	}
}

// JSON reports whether results are written as envelopes.
func (f *OutputFormatter) JSON() bool { return f.Format == "json" }

// Result writes data for a session (sessionID may be empty). In text mode
// render draws it instead.
func (f *OutputFormatter) Result(sessionID string, data any, render func(io.Writer)) error {
	if f.JSON() {
		return f.Encode(Envelope{Status: "ok", SessionID: sessionID, Data: data})
	}
	render(f.Out)
	return nil
}

// Fail reports a command error and returns the ExitError the command should
// return. Text mode prints the code and message on Out; details only with
// --verbose.
func (f *OutputFormatter) Fail(exitCode int, code, message string, err error, details any) error {
	exitErr := WrapExitError(exitCode, message, err)
	if f.JSON() {
		if encErr := f.Encode(Envelope{
			Status: "error",
			Error:  &EnvelopeError{Code: code, Message: exitErr.Error(), Details: details},
		}); encErr != nil {
			return encErr
		}
		return exitErr
	}

	fmt.Fprintf(f.Out, "Error [%s]: %s\n", code, exitErr.Error())
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Out, "Details: %v\n", details)
	}
	return exitErr
}

// Encode writes one indented JSON document to Out.
func (f *OutputFormatter) Encode(env Envelope) error {
	enc := json.NewEncoder(f.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// Logf writes a diagnostic line when verbose.
func (f *OutputFormatter) Logf(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.Diag, format+"\n", args...)
}
