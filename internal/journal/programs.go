// ABOUTME: Program library access through the journal.
// ABOUTME: Programs are validated against the exercise catalog before they are stored.
package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dojo/internal/models"
	"github.com/harperreed/dojo/internal/storage"
)

// AddProgram validates p against catalog and stores it.
// Missing IDs and timestamps are filled in.
func (s *Service) AddProgram(p *models.Program, catalog models.Catalog) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if err := p.Validate(catalog); err != nil {
		return err
	}
	if err := s.store.CreateProgram(p); err != nil {
		return fmt.Errorf("add program: %w", err)
	}
	s.logger.Debug("program added", "name", p.Name, "id", p.ID)
	return nil
}

// Program resolves a program by ID prefix or name.
func (s *Service) Program(ref string) (*models.Program, error) {
	return storage.FindProgram(s.store, ref)
}

// Programs lists programs sorted by name.
func (s *Service) Programs() ([]*models.Program, error) {
	programs, err := s.store.ListPrograms()
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// DeleteProgram removes a program. Sessions keep their snapshot of its name.
func (s *Service) DeleteProgram(ref string) (*models.Program, error) {
	p, err := s.Program(ref)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteProgram(p.ID.String()); err != nil {
		return nil, fmt.Errorf("delete program: %w", err)
	}
	return p, nil
}
