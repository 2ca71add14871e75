// ABOUTME: Data migration between dojo storage backends.
// ABOUTME: Copies programs, supplements, day logs, and notes from source to destination.

package storage

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Programs    int
	Supplements int
	Days        int
	Sessions    int
	Notes       int
}

// MigrateData copies all data from src to dst storage.
// The destination should be empty before calling this function.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	programs, err := src.ListPrograms()
	if err != nil {
		return nil, fmt.Errorf("list source programs: %w", err)
	}
	for _, p := range programs {
		if err := dst.CreateProgram(p); err != nil {
			return nil, fmt.Errorf("create program %s: %w", p.ID, err)
		}
		summary.Programs++
	}

	supplements, err := src.ListSupplements()
	if err != nil {
		return nil, fmt.Errorf("list source supplements: %w", err)
	}
	for _, s := range supplements {
		if err := dst.CreateSupplement(s); err != nil {
			return nil, fmt.Errorf("create supplement %s: %w", s.ID, err)
		}
		summary.Supplements++
	}

	days, err := src.ListDays()
	if err != nil {
		return nil, fmt.Errorf("list source days: %w", err)
	}
	for _, d := range days {
		if err := dst.UpsertDay(d); err != nil {
			return nil, fmt.Errorf("copy day %s: %w", d.Date, err)
		}
		summary.Days++
		summary.Sessions += len(d.Sessions)
	}

	notes, err := src.ListNotes()
	if err != nil {
		return nil, fmt.Errorf("list source notes: %w", err)
	}
	for _, n := range notes {
		if err := dst.CreateNote(n); err != nil {
			return nil, fmt.Errorf("create note %s: %w", n.ID, err)
		}
		summary.Notes++
	}

	return summary, nil
}

// MigrateAndClose runs MigrateData and closes both repositories, combining
// every failure into the returned error.
func MigrateAndClose(src, dst Repository) (summary *MigrateSummary, err error) {
	defer func() {
		err = multierr.Combine(err, src.Close(), dst.Close())
	}()
	return MigrateData(src, dst)
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
