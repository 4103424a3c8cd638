package roster

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The remote store renders calendar dates as locale strings whose
// month/day components are sometimes zero-padded and sometimes not,
// depending on which write path produced them: "06/10/2025" and
// "6/10/2025" are the same day. Every same-day comparison must go
// through NormalizeDate; a raw string compare is a latent bug.

// timestampLayout matches the locale rendering used for sign-in/out
// timestamps, e.g. "6/10/2025, 2:05:07 PM".
const timestampLayout = "1/2/2006, 3:04:05 PM"

// FormatDate renders a calendar date without zero padding.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}

// FormatTimestamp renders a sign-in/out timestamp.
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// NormalizeDate strips zero padding from the month and day components
// of a slash-delimited date so differently padded renderings compare
// equal. Strings that are not three slash-delimited components are
// returned unchanged.
func NormalizeDate(s string) string {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return strings.TrimSpace(s)
	}
	m, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	d, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return strings.TrimSpace(s)
	}
	return fmt.Sprintf("%d/%d/%s", m, d, strings.TrimSpace(parts[2]))
}

// SameDay reports whether two rendered dates are the same calendar day
// after normalization.
func SameDay(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	return NormalizeDate(a) == NormalizeDate(b)
}

// parseDate accepts the two renderings that occur in the field: the
// ISO form written by date-input forms ("2015-03-01") and the locale
// form the store renders ("3/1/2015", padded or not).
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse("1/2/2006", NormalizeDate(s)); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ageOn computes whole years between a date of birth and now.
func ageOn(dob string, now time.Time) (int, bool) {
	birth, ok := parseDate(dob)
	if !ok {
		return 0, false
	}
	age := now.Year() - birth.Year()
	if int(now.Month()) < int(birth.Month()) ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

// ageCell renders the informational Age column, empty when the date of
// birth is missing or unparseable.
func ageCell(dob string, now time.Time) string {
	age, ok := ageOn(dob, now)
	if !ok {
		return ""
	}
	return strconv.Itoa(age)
}
