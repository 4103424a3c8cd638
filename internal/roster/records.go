// Package roster implements the in-memory projection cache over the
// remote tabular store: the guardian, child, and attendance-event
// collections, the freshness controller that decides when a full
// reload is required, and the attendance query engine.
//
// Identity is positional: a record's ID is its 1-based row number in
// the remote sheet, including header rows. The sequence is append-only
// and never compacted; removal blanks a row (tombstone) so later IDs
// stay valid. IDs are the sole cross-reference key for all relations.
package roster

import (
	"fmt"
	"strings"
	"time"
)

// Gender is the child gender enumeration.
type Gender int

const (
	GenderUnspecified Gender = iota
	GenderMale
	GenderFemale
)

// String returns the sheet rendering of the gender.
func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	default:
		return ""
	}
}

// ParseGender maps a sheet cell to a Gender. Unknown values map to
// GenderUnspecified rather than erroring; the remote store is
// hand-editable and junk cells must not poison a reload.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "boy":
		return GenderMale
	case "female", "f", "girl":
		return GenderFemale
	default:
		return GenderUnspecified
	}
}

// Guardian is a registered adult responsible for one or more children.
type Guardian struct {
	ID int

	Name             string
	Relationship     string // free-text label, extended schema only
	Phone1           string
	Phone2           string
	Email            string
	Address          string
	Collector        string // designated collector, extended schema only
	DisclaimerAgreed bool   // consent flag, extended schema only

	RegistrationDate string
	LastUpdated      string
}

// Tombstoned reports whether the record is a blanked row kept only to
// preserve the row-index identity of later records.
func (g Guardian) Tombstoned() bool {
	return g.Name == ""
}

// Child is a registered child. GuardianID is required; Guardian2ID is
// optional and zero when absent, in which case the primary guardian's
// contact details apply.
type Child struct {
	ID int

	GuardianID  int
	Guardian2ID int

	FirstName    string
	LastName     string
	Gender       Gender
	MediaConsent string
	OtherInfo    string
	DateOfBirth  string // as rendered by the registration form
	Collector    string // extended schema only

	RegistrationDate string
	LastUpdated      string
}

// Tombstoned reports whether the record is a blanked row.
func (c Child) Tombstoned() bool {
	return c.FirstName == "" && c.LastName == ""
}

// FullName returns the display name used for event snapshots.
func (c Child) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// AgeOn computes the child's age in whole years at the given instant.
// Age is always derived from the date of birth at read time; the Age
// cell stored remotely is informational only and never trusted across
// day boundaries.
func (c Child) AgeOn(now time.Time) (int, bool) {
	return ageOn(c.DateOfBirth, now)
}

// AttendanceEvent is one sign-in/out session row.
//
// ChildFullName is a snapshot captured at sign-in time, deliberately
// not re-derived from the live Child record: renaming a child must not
// rewrite the audit trail. Date is a separate calendar-date field used
// for same-day matching; the remote store's rendering of it varies in
// zero-padding between write paths, so all comparisons go through
// NormalizeDate.
type AttendanceEvent struct {
	ID int

	SignInTimestamp  string
	SignOutTimestamp string // empty while the session is open
	ChildID          int
	GuardianID       int
	Guardian2ID      int // extended schema only
	ChildFullName    string
	Date             string
}

// Open reports whether the session has a sign-in but no sign-out.
func (e AttendanceEvent) Open() bool {
	return e.SignInTimestamp != "" && e.SignOutTimestamp == ""
}

func (e AttendanceEvent) String() string {
	state := "open"
	if !e.Open() {
		state = "closed"
	}
	return fmt.Sprintf("event %d: %s child=%d %s", e.ID, state, e.ChildID, e.Date)
}
