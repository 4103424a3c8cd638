package testutil

import (
	"testing"
	"time"
)

func TestFakeClock_PinnedAndAdvancing(t *testing.T) {
	t0 := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	c := NewFakeClock(t0)

	if !c.Now().Equal(t0) {
		t.Errorf("Now() = %v, want %v", c.Now(), t0)
	}

	// Pinned: repeated reads do not drift.
	if !c.Now().Equal(c.Now()) {
		t.Error("pinned clock drifted between reads")
	}

	c.Advance(11 * time.Minute)
	want := t0.Add(11 * time.Minute)
	if !c.Now().Equal(want) {
		t.Errorf("after Advance, Now() = %v, want %v", c.Now(), want)
	}

	midnight := time.Date(2025, 6, 11, 0, 0, 1, 0, time.UTC)
	c.Set(midnight)
	if !c.Now().Equal(midnight) {
		t.Errorf("after Set, Now() = %v, want %v", c.Now(), midnight)
	}
}
