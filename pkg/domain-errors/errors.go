// Package domainerrors defines the code-carrying error type shared across the
// ledger. Services return these instead of bare errors so transports can map
// failures to responses without string matching, and so audit entries can
// record a stable failure code.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a failure class. Codes are part of the external contract:
// they appear in HTTP error envelopes and audit entries.
type Code string

const (
	CodeBadRequest    Code = "bad_request"
	CodeNotFound      Code = "not_found"
	CodeUnprocessable Code = "unprocessable"
	CodeInternal      Code = "internal_error"

	// Ingestion failures.
	CodeUnknownGameType    Code = "unknown_game_type"
	CodeUnresolvableDrawID Code = "unresolvable_draw_identifier"
	CodeUnreadableTicket   Code = "unreadable_ticket"

	// Verification failures.
	CodeDrawNotFound Code = "draw_not_found"

	// Internal-consistency faults. These must never occur if normalization is
	// correct; they halt processing of the offending record.
	CodeInvariantViolation Code = "invariant_violation"
)

// Error carries a code plus a human-readable message. The message is safe to
// return to callers except for CodeInternal and CodeInvariantViolation, where
// transports omit it.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the Code from an error chain, defaulting to CodeInternal so
// unexpected errors never leak details.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}
