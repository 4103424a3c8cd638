package roster

import (
	"context"
	"fmt"
)

// EnsureHeaders writes header rows into any of the three tables that
// are still empty. New sheets get the extended layout; sheets that
// already carry a header (legacy or extended) are left untouched so an
// existing deployment's column positions are never disturbed.
func EnsureHeaders(ctx context.Context, remote RemoteStore, tables Tables) error {
	targets := []struct {
		sheet  string
		header []string
	}{
		{tables.Guardians, guardianHeader},
		{tables.Children, childHeader},
		{tables.Events, eventHeader},
	}

	for _, s := range targets {
		probe := "A1:" + columnLetter(len(s.header)-1) + "1"
		rows, err := remote.Read(ctx, s.sheet, probe)
		if err != nil {
			return fmt.Errorf("probe %s header: %w", s.sheet, err)
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			continue
		}
		if err := remote.Write(ctx, s.sheet, probe, [][]string{s.header}); err != nil {
			return fmt.Errorf("write %s header: %w", s.sheet, err)
		}
	}
	return nil
}
