package roster

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sundaykids/rollcall/internal/sheets"
	"github.com/sundaykids/rollcall/internal/testutil"
)

// fakeRemote is an in-memory stand-in for the remote tabular store.
// Rows include the header row, exactly as the values API returns them.
type fakeRemote struct {
	tabs map[string][][]string

	readCalls   int
	appendCalls int
	writeCalls  []string // "Sheet!Range"

	readErr  error
	writeErr error

	// appendScript fails specific append calls: entry i is the error
	// for the i-th append (nil = success). Calls beyond the script
	// succeed. An empty script means appendErr applies to every call.
	appendScript []error
	appendErr    error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		tabs: map[string][][]string{
			"Parents":   {append([]string(nil), guardianHeader...)},
			"Children":  {append([]string(nil), childHeader...)},
			"SignInOut": {append([]string(nil), eventHeader...)},
		},
	}
}

func (f *fakeRemote) Read(_ context.Context, sheet, rng string) ([][]string, error) {
	f.readCalls++
	if f.readErr != nil {
		return nil, f.readErr
	}
	rows := f.tabs[sheet]
	if rng != "" {
		// Header probes only: return the first row when present.
		if len(rows) == 0 || len(rows[0]) == 0 {
			return nil, nil
		}
		return [][]string{rows[0]}, nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (f *fakeRemote) Append(_ context.Context, sheet string, rows [][]string) error {
	f.appendCalls++
	if len(f.appendScript) > 0 {
		if i := f.appendCalls - 1; i < len(f.appendScript) && f.appendScript[i] != nil {
			return f.appendScript[i]
		}
	} else if f.appendErr != nil {
		return f.appendErr
	}
	for _, r := range rows {
		f.tabs[sheet] = append(f.tabs[sheet], append([]string(nil), r...))
	}
	return nil
}

func (f *fakeRemote) Write(_ context.Context, sheet, rng string, rows [][]string) error {
	f.writeCalls = append(f.writeCalls, sheet+"!"+rng)
	if f.writeErr != nil {
		return f.writeErr
	}
	col, rowNum, err := parseA1(strings.Split(rng, ":")[0])
	if err != nil {
		return err
	}
	for i, r := range rows {
		target := rowNum - 1 + i
		for len(f.tabs[sheet]) <= target {
			f.tabs[sheet] = append(f.tabs[sheet], nil)
		}
		dst := f.tabs[sheet][target]
		for j, v := range r {
			for len(dst) <= col+j {
				dst = append(dst, "")
			}
			dst[col+j] = v
		}
		f.tabs[sheet][target] = dst
	}
	return nil
}

func parseA1(cell string) (col, row int, err error) {
	if len(cell) < 2 || cell[0] < 'A' || cell[0] > 'Z' {
		return 0, 0, fmt.Errorf("bad A1 cell %q", cell)
	}
	n, err := strconv.Atoi(cell[1:])
	if err != nil {
		return 0, 0, fmt.Errorf("bad A1 cell %q", cell)
	}
	return int(cell[0] - 'A'), n, nil
}

func unavailableErr() error {
	return &sheets.OpError{Code: sheets.CodeUnavailable, Op: "append", Sheet: "test"}
}

func rejectedErr() error {
	return &sheets.OpError{Code: sheets.CodeRejected, Op: "append", Sheet: "test", Status: 500}
}

// testDay is the pinned "today" for most tests: June 10, 2025.
var testDay = time.Date(2025, 6, 10, 9, 30, 0, 0, time.Local)

func newPinnedClock() *testutil.FakeClock {
	return testutil.NewFakeClock(testDay)
}

func newTestCache(t *testing.T, opts ...Option) (*Cache, *fakeRemote, *testutil.FakeClock) {
	t.Helper()
	remote := newFakeRemote()
	clock := testutil.NewFakeClock(testDay)
	opts = append([]Option{WithClock(clock)}, opts...)
	c := New(remote, DefaultTables(), opts...)
	if err := c.LoadAll(context.Background()); err != nil {
		t.Fatalf("initial LoadAll failed: %v", err)
	}
	return c, remote, clock
}

// registerFamily creates the Jane Doe / Sam Doe fixture used across
// the lifecycle tests.
func registerFamily(t *testing.T, c *Cache) (guardianID, childID int) {
	t.Helper()
	ctx := context.Background()

	gid, err := c.CreateGuardian(ctx, Guardian{
		Name:   "Jane Doe",
		Phone1: "555-1234",
		Email:  "jane@example.com",
	})
	if err != nil {
		t.Fatalf("CreateGuardian failed: %v", err)
	}

	cid, err := c.CreateChild(ctx, Child{
		GuardianID:  gid,
		FirstName:   "Sam",
		LastName:    "Doe",
		Gender:      GenderMale,
		DateOfBirth: "2015-03-01",
	})
	if err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}
	return gid, cid
}
