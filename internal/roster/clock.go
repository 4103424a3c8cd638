package roster

import "time"

// Clock supplies wall time to the cache. All timestamps, calendar
// dates, age derivations, and freshness decisions flow through it so
// tests can pin the clock and cross day boundaries deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
