package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// Failure classes. Use errors.Is() against a returned *Error.
var (
	// ErrTransport indicates the request never produced an HTTP response.
	ErrTransport = errors.New("gateway: transport failure")

	// ErrRejected indicates the server answered with a non-success status.
	ErrRejected = errors.New("gateway: request rejected")

	// ErrDecode indicates the response body could not be decoded.
	ErrDecode = errors.New("gateway: malformed response")
)

// Error is the uniform failure result of every gateway operation.
type Error struct {
	// Op names the operation, e.g. "register-data-points".
	Op string

	// Message is a human-readable description from the server or the client.
	Message string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Details holds validation messages returned by the server, if any.
	Details []string

	kind  error
	cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Op, e.Message)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if len(e.Details) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Details, "; "))
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

// Unwrap exposes the failure class and the underlying cause.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.cause != nil {
		out = append(out, e.cause)
	}
	return out
}

func transportError(op string, err error) *Error {
	return &Error{Op: op, Message: "request failed", kind: ErrTransport, cause: err}
}

func decodeError(op string, status int, err error) *Error {
	return &Error{Op: op, Message: "unexpected response body", StatusCode: status, kind: ErrDecode, cause: err}
}

func rejectedError(op string, status int, message string, details []string) *Error {
	return &Error{Op: op, Message: message, StatusCode: status, Details: details, kind: ErrRejected}
}

// StatusCode extracts the HTTP status from a gateway error, or 0.
func StatusCode(err error) int {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.StatusCode
	}
	return 0
}
