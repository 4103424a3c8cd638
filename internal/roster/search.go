package roster

import (
	"strings"

	"golang.org/x/text/cases"
)

// SearchChildren returns active children whose first, last, or full
// name contains the query, compared case-insensitively with Unicode
// case folding rather than ASCII lowercasing, so names like "İsmail"
// or "Øyvind" match regardless of input case.
func (c *Cache) SearchChildren(query string) []Child {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	fold := cases.Fold()
	q := fold.String(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Child
	for _, ch := range c.children {
		if ch.Tombstoned() {
			continue
		}
		if strings.Contains(fold.String(ch.FirstName), q) ||
			strings.Contains(fold.String(ch.LastName), q) ||
			strings.Contains(fold.String(ch.FullName()), q) {
			out = append(out, ch)
		}
	}
	return out
}
