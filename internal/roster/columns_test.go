package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardianRow_RoundTrip(t *testing.T) {
	g := Guardian{
		Name:             "Jane Doe",
		Relationship:     "Mother",
		Phone1:           "555-1234",
		Phone2:           "555-5678",
		Email:            "jane@example.com",
		Address:          "1 Main St",
		Collector:        "Jane Doe",
		DisclaimerAgreed: true,
		RegistrationDate: "6/10/2025",
		LastUpdated:      "6/10/2025",
	}

	got := parseGuardian(2, guardianRow(g, guardianExtended), guardianExtended)
	g.ID = 2
	assert.Equal(t, g, got)
}

func TestGuardianRow_LegacyDropsExtendedColumns(t *testing.T) {
	g := Guardian{
		Name:             "Jane Doe",
		Relationship:     "Mother",
		Phone1:           "555-1234",
		Email:            "jane@example.com",
		Address:          "1 Main St",
		DisclaimerAgreed: true,
		RegistrationDate: "6/10/2025",
		LastUpdated:      "6/10/2025",
	}

	row := guardianRow(g, guardianLegacy)
	assert.Len(t, row, guardianLegacy.width)

	got := parseGuardian(2, row, guardianLegacy)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, "6/10/2025", got.RegistrationDate)
	// Columns the legacy sheet does not carry come back empty.
	assert.Empty(t, got.Relationship)
	assert.Empty(t, got.LastUpdated)
	assert.False(t, got.DisclaimerAgreed)
}

func TestChildRow_RoundTrip(t *testing.T) {
	ch := Child{
		GuardianID:       2,
		Guardian2ID:      3,
		FirstName:        "Sam",
		LastName:         "Doe",
		Gender:           GenderMale,
		MediaConsent:     "Yes",
		OtherInfo:        "peanut allergy",
		RegistrationDate: "6/10/2025",
		DateOfBirth:      "2015-03-01",
		LastUpdated:      "6/10/2025",
		Collector:        "Jane Doe",
	}

	row := childRow(ch, childExtended, "10")
	assert.Equal(t, "10", row[childExtended.age], "age cell carries the derived value")

	got := parseChild(2, row, childExtended)
	ch.ID = 2
	assert.Equal(t, ch, got, "the age cell is derived, never parsed back")
}

func TestEventRow_RoundTrip(t *testing.T) {
	ev := AttendanceEvent{
		SignInTimestamp:  "6/10/2025, 9:00:00 AM",
		SignOutTimestamp: "6/10/2025, 12:00:00 PM",
		ChildID:          2,
		GuardianID:       2,
		Guardian2ID:      3,
		ChildFullName:    "Sam Doe",
		Date:             "6/10/2025",
	}

	got := parseEvent(2, eventRow(ev, eventExtended), eventExtended)
	ev.ID = 2
	assert.Equal(t, ev, got)
}

func TestParse_ToleratesRaggedRows(t *testing.T) {
	// The values API truncates trailing empty cells, so a guardian row
	// may arrive shorter than its layout width.
	got := parseGuardian(2, []string{"Jane Doe"}, guardianExtended)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Empty(t, got.Email)

	ch := parseChild(2, []string{"2", "", "Sam"}, childExtended)
	assert.Equal(t, 2, ch.GuardianID)
	assert.Equal(t, "Sam", ch.FirstName)
	assert.Empty(t, ch.LastName)
}

func TestDetectLayout_ByHeaderWidth(t *testing.T) {
	assert.Equal(t, guardianLegacy, detectGuardianLayout(make([]string, 6)))
	assert.Equal(t, guardianExtended, detectGuardianLayout(guardianHeader))
	assert.Equal(t, guardianExtended, detectGuardianLayout(nil), "fresh sheet gets the extended layout")

	assert.Equal(t, childLegacy, detectChildLayout(make([]string, 9)))
	assert.Equal(t, childExtended, detectChildLayout(childHeader))

	assert.Equal(t, eventLegacy, detectEventLayout(make([]string, 6)))
	assert.Equal(t, eventExtended, detectEventLayout(eventHeader))
}

func TestRowRange(t *testing.T) {
	assert.Equal(t, "A5:F5", rowRange(5, 6))
	assert.Equal(t, "A2:L2", rowRange(2, 12))
	assert.Equal(t, "B", columnLetter(1))
}

func TestCellBool(t *testing.T) {
	for _, v := range []string{"Yes", "yes", "TRUE", "y", "1", "Agreed"} {
		assert.True(t, cellBool([]string{v}, 0), v)
	}
	for _, v := range []string{"", "No", "false", "maybe"} {
		assert.False(t, cellBool([]string{v}, 0), v)
	}
}
