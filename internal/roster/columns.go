package roster

import (
	"strconv"
	"strings"
)

// Column layouts.
//
// The remote schema is strictly positional, and two schema versions are
// in the field: the legacy layout and an extended layout that inserts
// Relationship/Collector/DisclaimerAgreed/LastUpdated columns (and a
// second guardian reference for children and events). Each layout is an
// explicit index table so schema drift is a single constant change, not
// a scattered literal. An index of -1 means the column is absent in
// that layout; reads treat it as empty and writes omit it.

type guardianLayout struct {
	width int

	name         int
	relationship int
	phone1       int
	phone2       int
	email        int
	address      int
	collector    int
	disclaimer   int
	registered   int
	updated      int
}

type childLayout struct {
	width int

	guardian   int
	guardian2  int
	firstName  int
	lastName   int
	gender     int
	media      int
	other      int
	registered int
	dob        int
	age        int
	updated    int
	collector  int
}

type eventLayout struct {
	width int

	signIn    int
	signOut   int
	child     int
	guardian  int
	guardian2 int
	fullName  int
	date      int
}

var (
	guardianLegacy = guardianLayout{
		width: 6,
		name:  0, relationship: -1, phone1: 1, phone2: 2, email: 3,
		address: 4, collector: -1, disclaimer: -1, registered: 5, updated: -1,
	}
	guardianExtended = guardianLayout{
		width: 10,
		name:  0, relationship: 1, phone1: 2, phone2: 3, email: 4,
		address: 5, collector: 6, disclaimer: 7, registered: 8, updated: 9,
	}

	childLegacy = childLayout{
		width:    9,
		guardian: 0, guardian2: -1, firstName: 1, lastName: 2, gender: 3,
		media: 4, other: 5, registered: 6, dob: 7, age: 8, updated: -1, collector: -1,
	}
	childExtended = childLayout{
		width:    12,
		guardian: 0, guardian2: 1, firstName: 2, lastName: 3, gender: 4,
		media: 5, other: 6, registered: 7, dob: 8, age: 9, updated: 10, collector: 11,
	}

	eventLegacy = eventLayout{
		width:  6,
		signIn: 0, signOut: 1, child: 2, guardian: 3, guardian2: -1, fullName: 4, date: 5,
	}
	eventExtended = eventLayout{
		width:  7,
		signIn: 0, signOut: 1, child: 2, guardian: 3, guardian2: 4, fullName: 5, date: 6,
	}
)

// Header rows written by EnsureHeaders. New sheets get the extended
// layout; existing legacy sheets are detected and left as they are.
var (
	guardianHeader = []string{
		"Parent Name", "Relationship", "Phone 1", "Phone 2", "Email",
		"Address", "Collector", "Disclaimer Agreed", "Registration Date", "Last Updated",
	}
	childHeader = []string{
		"Parent ID", "Parent 2 ID", "First Name", "Last Name", "Gender",
		"Media Consent", "Other Info", "Registration Date", "Date of Birth",
		"Age", "Last Updated", "Collector",
	}
	eventHeader = []string{
		"Sign In Timestamp", "Sign Out Timestamp", "Child ID", "Parent ID",
		"Parent 2 ID", "Child Full Name", "Date",
	}
)

// Layout detection goes by header width: the extended layouts strictly
// widen the legacy ones. A missing header row (fresh sheet) selects the
// extended layout, which EnsureHeaders also writes.

func detectGuardianLayout(header []string) guardianLayout {
	if len(header) > 0 && len(header) < guardianExtended.width {
		return guardianLegacy
	}
	return guardianExtended
}

func detectChildLayout(header []string) childLayout {
	if len(header) > 0 && len(header) < childExtended.width {
		return childLegacy
	}
	return childExtended
}

func detectEventLayout(header []string) eventLayout {
	if len(header) > 0 && len(header) < eventExtended.width {
		return eventLegacy
	}
	return eventExtended
}

// cell returns row[i], tolerating absent columns (i < 0) and ragged
// rows (the values API truncates trailing empty cells).
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellInt(row []string, i int) int {
	n, err := strconv.Atoi(cell(row, i))
	if err != nil {
		return 0
	}
	return n
}

func cellBool(row []string, i int) bool {
	switch strings.ToLower(cell(row, i)) {
	case "yes", "true", "y", "1", "agreed":
		return true
	default:
		return false
	}
}

func put(row []string, i int, v string) {
	if i >= 0 && i < len(row) {
		row[i] = v
	}
}

// columnLetter converts a zero-based column index to its A1 letter.
func columnLetter(i int) string {
	return string(rune('A' + i))
}

// rowRange returns the A1 range covering one full record row, e.g.
// "A5:F5" for a six-column layout and id 5.
func rowRange(id, width int) string {
	return "A" + strconv.Itoa(id) + ":" + columnLetter(width-1) + strconv.Itoa(id)
}

func parseGuardian(id int, row []string, l guardianLayout) Guardian {
	return Guardian{
		ID:               id,
		Name:             cell(row, l.name),
		Relationship:     cell(row, l.relationship),
		Phone1:           cell(row, l.phone1),
		Phone2:           cell(row, l.phone2),
		Email:            cell(row, l.email),
		Address:          cell(row, l.address),
		Collector:        cell(row, l.collector),
		DisclaimerAgreed: cellBool(row, l.disclaimer),
		RegistrationDate: cell(row, l.registered),
		LastUpdated:      cell(row, l.updated),
	}
}

func guardianRow(g Guardian, l guardianLayout) []string {
	row := make([]string, l.width)
	put(row, l.name, g.Name)
	put(row, l.relationship, g.Relationship)
	put(row, l.phone1, g.Phone1)
	put(row, l.phone2, g.Phone2)
	put(row, l.email, g.Email)
	put(row, l.address, g.Address)
	put(row, l.collector, g.Collector)
	if g.DisclaimerAgreed {
		put(row, l.disclaimer, "Yes")
	}
	put(row, l.registered, g.RegistrationDate)
	put(row, l.updated, g.LastUpdated)
	return row
}

func parseChild(id int, row []string, l childLayout) Child {
	return Child{
		ID:               id,
		GuardianID:       cellInt(row, l.guardian),
		Guardian2ID:      cellInt(row, l.guardian2),
		FirstName:        cell(row, l.firstName),
		LastName:         cell(row, l.lastName),
		Gender:           ParseGender(cell(row, l.gender)),
		MediaConsent:     cell(row, l.media),
		OtherInfo:        cell(row, l.other),
		RegistrationDate: cell(row, l.registered),
		DateOfBirth:      cell(row, l.dob),
		Collector:        cell(row, l.collector),
		LastUpdated:      cell(row, l.updated),
	}
}

// childRow renders a child record. The Age cell is recomputed from the
// date of birth at write time; it is never copied from a cached value.
func childRow(c Child, l childLayout, age string) []string {
	row := make([]string, l.width)
	put(row, l.guardian, strconv.Itoa(c.GuardianID))
	if c.Guardian2ID != 0 {
		put(row, l.guardian2, strconv.Itoa(c.Guardian2ID))
	}
	put(row, l.firstName, c.FirstName)
	put(row, l.lastName, c.LastName)
	put(row, l.gender, c.Gender.String())
	put(row, l.media, c.MediaConsent)
	put(row, l.other, c.OtherInfo)
	put(row, l.registered, c.RegistrationDate)
	put(row, l.dob, c.DateOfBirth)
	put(row, l.age, age)
	put(row, l.updated, c.LastUpdated)
	put(row, l.collector, c.Collector)
	return row
}

func parseEvent(id int, row []string, l eventLayout) AttendanceEvent {
	return AttendanceEvent{
		ID:               id,
		SignInTimestamp:  cell(row, l.signIn),
		SignOutTimestamp: cell(row, l.signOut),
		ChildID:          cellInt(row, l.child),
		GuardianID:       cellInt(row, l.guardian),
		Guardian2ID:      cellInt(row, l.guardian2),
		ChildFullName:    cell(row, l.fullName),
		Date:             cell(row, l.date),
	}
}

func eventRow(e AttendanceEvent, l eventLayout) []string {
	row := make([]string, l.width)
	put(row, l.signIn, e.SignInTimestamp)
	put(row, l.signOut, e.SignOutTimestamp)
	put(row, l.child, strconv.Itoa(e.ChildID))
	put(row, l.guardian, strconv.Itoa(e.GuardianID))
	if e.Guardian2ID != 0 {
		put(row, l.guardian2, strconv.Itoa(e.Guardian2ID))
	}
	put(row, l.fullName, e.ChildFullName)
	put(row, l.date, e.Date)
	return row
}
