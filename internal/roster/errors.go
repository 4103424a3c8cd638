package roster

import "errors"

// Domain error conditions. Remote failures are reported as
// sheets.OpError by the transport layer and pass through unchanged;
// these sentinels cover conditions detected against the in-memory
// projection. Match with errors.Is.
var (
	// ErrNotFound means the referenced id is absent from the projection
	// (or points at a tombstoned row).
	ErrNotFound = errors.New("record not found")

	// ErrNoOpenSession means sign-out found no same-day open event for
	// the child.
	ErrNoOpenSession = errors.New("no open sign-in session for child today")

	// ErrValidation means a required field is missing. Input is assumed
	// pre-validated by the caller; this is a last-line check.
	ErrValidation = errors.New("required field missing")
)
