// ABOUTME: Repository interface for dojo data storage.
// ABOUTME: Defines the contract for day logs, programs, supplements, and notes across backends.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/dojo/internal/models"
)

var (
	// ErrNotFound is returned when a day, program, supplement, or note does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousPrefix is returned when an ID prefix matches more than one record.
	ErrAmbiguousPrefix = errors.New("ambiguous prefix")
)

// Repository defines the storage interface for dojo data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Day log operations. Days are keyed by YYYY-MM-DD.
	GetDay(date string) (*models.DailyLog, error)
	UpsertDay(log *models.DailyLog) error
	DeleteDay(date string) error
	ListDays() ([]*models.DailyLog, error)

	// Program operations
	CreateProgram(p *models.Program) error
	GetProgram(idOrPrefix string) (*models.Program, error)
	ListPrograms() ([]*models.Program, error)
	UpdateProgram(p *models.Program) error
	DeleteProgram(idOrPrefix string) error

	// Supplement operations
	CreateSupplement(s *models.Supplement) error
	GetSupplement(idOrPrefix string) (*models.Supplement, error)
	ListSupplements() ([]*models.Supplement, error)
	UpdateSupplement(s *models.Supplement) error
	DeleteSupplement(idOrPrefix string) error

	// Note operations. ListNotes returns the newest date first.
	CreateNote(n *models.Note) error
	GetNote(idOrPrefix string) (*models.Note, error)
	ListNotes() ([]*models.Note, error)
	UpdateNote(n *models.Note) error
	DeleteNote(idOrPrefix string) error

	// Export/Import
	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) error

	// Lifecycle
	Close() error
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func ambiguous(prefix string) error {
	return fmt.Errorf("%w %s: matches multiple records", ErrAmbiguousPrefix, prefix)
}

// isFullUUID reports whether s looks like a complete UUID rather than a prefix.
func isFullUUID(s string) bool {
	return len(s) == 36 && strings.Count(s, "-") == 4
}

// FindProgram resolves ref as an ID prefix first, then as a case-insensitive name.
func FindProgram(r Repository, ref string) (*models.Program, error) {
	p, err := r.GetProgram(ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	programs, listErr := r.ListPrograms()
	if listErr != nil {
		return nil, fmt.Errorf("list programs: %w", listErr)
	}
	var match *models.Program
	for _, candidate := range programs {
		if strings.EqualFold(candidate.Name, ref) {
			if match != nil {
				return nil, ambiguous(ref)
			}
			match = candidate
		}
	}
	if match == nil {
		return nil, notFound(ref)
	}
	return match, nil
}

// FindSupplement resolves ref as a supplement ID or prefix, then as a
// case-insensitive name.
func FindSupplement(r Repository, ref string) (*models.Supplement, error) {
	sup, err := r.GetSupplement(ref)
	if err == nil {
		return sup, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	list, listErr := r.ListSupplements()
	if listErr != nil {
		return nil, fmt.Errorf("list supplements: %w", listErr)
	}
	var match *models.Supplement
	for _, candidate := range list {
		if strings.EqualFold(candidate.Name, ref) {
			if match != nil {
				return nil, ambiguous(ref)
			}
			match = candidate
		}
	}
	if match == nil {
		return nil, notFound(ref)
	}
	return match, nil
}
