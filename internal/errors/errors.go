// Package errors defines the stable error code system for monogen.
package errors

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// Code is a stable error code string.
type Code string

// Error codes. The strings are part of the CLI's output contract.
const (
	EUsage Code = "E_USAGE"

	// Generation
	EInvalidIdentifier    Code = "E_INVALID_IDENTIFIER"
	EDuplicateUnit        Code = "E_DUPLICATE_UNIT"
	ETemplateMissingToken Code = "E_TEMPLATE_MISSING_TOKEN"
	ETemplateSetNotFound  Code = "E_TEMPLATE_SET_NOT_FOUND"
	ELedgerInvalid        Code = "E_LEDGER_INVALID"
	EInvalidManifest      Code = "E_INVALID_MANIFEST"

	// Dependency registration and prompt editing
	EUnknownUnit    Code = "E_UNKNOWN_UNIT"
	EInvalidVersion Code = "E_INVALID_VERSION"
	EExternalTool   Code = "E_EXTERNAL_TOOL"

	EIO Code = "E_IO"
)

// GenError is the standard error type returned across package boundaries.
type GenError struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string // optional structured context
}

// Error returns the stable error format: "CODE: message".
func (e *GenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *GenError) Unwrap() error {
	return e.Cause
}

// New creates a new GenError with the given code and message.
func New(code Code, msg string) error {
	return &GenError{Code: code, Msg: msg}
}

// Newf is New with a format string.
func Newf(code Code, format string, args ...any) error {
	return &GenError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// NewWithDetails creates a new GenError with code, message, and details.
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &GenError{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new GenError wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &GenError{Code: code, Msg: msg, Cause: err}
}

// WrapWithDetails creates a new GenError wrapping an underlying error with details.
func WrapWithDetails(code Code, msg string, err error, details map[string]string) error {
	return &GenError{Code: code, Msg: msg, Cause: err, Details: copyDetails(details)}
}

// GetCode extracts the error code from an error, or empty string if not a GenError.
func GetCode(err error) Code {
	var ge *GenError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// HasCode reports whether err is or wraps a GenError with the given code.
func HasCode(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// AsGenError returns (*GenError, true) if err is or wraps a GenError.
func AsGenError(err error) (*GenError, bool) {
	var ge *GenError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// Is and As forward to the standard library so callers importing this
// package under its default name keep access to them.
func Is(err, target error) bool { return errors.Is(err, target) }

// As forwards to errors.As.
func As(err error, target any) bool { return errors.As(err, target) }

func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// ExitCode returns the process exit code for an error.
// Returns 0 if err is nil, 2 for E_USAGE, 1 for all other errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if GetCode(err) == EUsage {
		return 2
	}
	return 1
}

// Print writes the error to w in the stderr format:
//
//	error_code: <CODE>
//	<message>
//	  <detail-key>: <detail-value>
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	ge, ok := AsGenError(err)
	if !ok {
		fmt.Fprintln(w, err.Error())
		return
	}
	fmt.Fprintf(w, "error_code: %s\n", ge.Code)
	if ge.Cause != nil {
		fmt.Fprintf(w, "%s: %v\n", ge.Msg, ge.Cause)
	} else {
		fmt.Fprintln(w, ge.Msg)
	}
	keys := make([]string, 0, len(ge.Details))
	for k := range ge.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, ge.Details[k])
	}
}
