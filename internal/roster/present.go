package roster

import "time"

// Attendance query engine: derives presence sets from the raw event
// collection. Results keep the insertion order of the underlying
// collection (== remote row order); any timestamp sorting is a
// presentation concern.

// CurrentlyPresent returns today's open sessions: events dated today
// (after normalization) with a sign-in timestamp and no sign-out.
func (c *Cache) CurrentlyPresent() []AttendanceEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	today := FormatDate(c.clock.Now())
	var out []AttendanceEvent
	for _, ev := range c.events {
		if ev.Open() && SameDay(ev.Date, today) {
			out = append(out, ev)
		}
	}
	return out
}

// EventsForDate returns all events on the given rendered date, open or
// closed.
func (c *Cache) EventsForDate(date string) []AttendanceEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []AttendanceEvent
	for _, ev := range c.events {
		if SameDay(ev.Date, date) {
			out = append(out, ev)
		}
	}
	return out
}

// TodaysEvents returns all of today's events, open or closed.
func (c *Cache) TodaysEvents() []AttendanceEvent {
	return c.EventsForDate(FormatDate(c.clock.Now()))
}

// PruneEvents applies the retention policy to the in-memory event
// projection: events older than the horizon are dropped and the total
// is capped, oldest first. The remote store is never touched, and id
// synthesis for new events is unaffected (see eventRows).
func (c *Cache) PruneEvents() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneEventsLocked(c.clock.Now())
}

func (c *Cache) pruneEventsLocked(now time.Time) {
	if c.retention.MaxEventAge > 0 {
		cutoff := now.Add(-c.retention.MaxEventAge)
		kept := c.events[:0]
		for _, ev := range c.events {
			d, ok := parseDate(ev.Date)
			// Undated rows are kept; the store is hand-editable and a
			// mangled date must not silently drop an audit record.
			if !ok || !d.Before(cutoff) {
				kept = append(kept, ev)
			}
		}
		c.events = kept
	}

	if c.retention.MaxEvents > 0 && len(c.events) > c.retention.MaxEvents {
		// Row order is chronological for an append-only sheet; drop
		// the oldest rows from the front.
		c.events = c.events[len(c.events)-c.retention.MaxEvents:]
	}
}
