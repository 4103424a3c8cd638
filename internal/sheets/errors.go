package sheets

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes remote store failures.
type ErrorCode string

const (
	// CodeUnavailable indicates a transport-level failure (network down,
	// DNS, connection refused). Writes that fail this way are recoverable
	// via the offline operation log.
	CodeUnavailable ErrorCode = "REMOTE_UNAVAILABLE"

	// CodeRejected indicates the remote store returned a non-2xx status
	// (auth failure, malformed range, quota). Not auto-retried.
	CodeRejected ErrorCode = "REMOTE_REJECTED"
)

// OpError represents a failed remote store operation.
//
// OpError includes structured fields so callers can decide between the
// offline-queue path (unavailable) and surfacing the failure (rejected).
type OpError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the operation that failed: "read", "write", or "append".
	Op string

	// Sheet is the target sheet/tab name.
	Sheet string

	// Range is the target A1 range, empty for append or whole-sheet reads.
	Range string

	// Status is the HTTP status code for rejected operations, 0 otherwise.
	Status int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	target := e.Sheet
	if e.Range != "" {
		target = e.Sheet + "!" + e.Range
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s %s: status %d", e.Code, e.Op, target, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s %s: %v", e.Code, e.Op, target, e.Err)
	}
	return fmt.Sprintf("%s: %s %s", e.Code, e.Op, target)
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error {
	return e.Err
}

// IsUnavailable returns true if the error is a transport-level failure.
// Uses errors.As to handle wrapped errors.
func IsUnavailable(err error) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code == CodeUnavailable
	}
	return false
}

// IsRejected returns true if the remote store rejected the operation.
// Uses errors.As to handle wrapped errors.
func IsRejected(err error) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code == CodeRejected
	}
	return false
}

func unavailable(op, sheet, rng string, err error) *OpError {
	return &OpError{Code: CodeUnavailable, Op: op, Sheet: sheet, Range: rng, Err: err}
}

func rejected(op, sheet, rng string, status int, err error) *OpError {
	return &OpError{Code: CodeRejected, Op: op, Sheet: sheet, Range: rng, Status: status, Err: err}
}
