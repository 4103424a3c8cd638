package cli

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/sundaykids/rollcall/internal/roster"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRenderPresent_Golden(t *testing.T) {
	events := []roster.AttendanceEvent{
		{ID: 2, ChildID: 2, ChildFullName: "Sam Doe", SignInTimestamp: "6/10/2025, 9:00:00 AM"},
		{ID: 3, ChildID: 3, ChildFullName: "Ann Doe", SignInTimestamp: "6/10/2025, 9:05:00 AM"},
	}

	var buf bytes.Buffer
	renderPresent(&buf, events)

	newGoldie(t).Assert(t, "present-roster", buf.Bytes())
}

func TestRenderPresent_EmptyGolden(t *testing.T) {
	var buf bytes.Buffer
	renderPresent(&buf, nil)

	newGoldie(t).Assert(t, "present-empty", buf.Bytes())
}

func TestRenderChildren_Golden(t *testing.T) {
	children := []roster.Child{
		{ID: 2, FirstName: "Sam", LastName: "Doe", GuardianID: 2},
		{ID: 3, FirstName: "Samantha", LastName: "Roe", GuardianID: 4},
	}

	var buf bytes.Buffer
	renderChildren(&buf, children)

	newGoldie(t).Assert(t, "search-results", buf.Bytes())
}
