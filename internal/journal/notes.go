// ABOUTME: Training diary notes through the journal.
// ABOUTME: Notes are validated before they are stored and searched by title, text, or tag.
package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dojo/internal/models"
)

// AddNote validates and stores n. Missing IDs and timestamps are filled in,
// and an empty date means today.
func (s *Service) AddNote(n *models.Note) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Date == "" {
		n.Date = s.Today()
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if err := n.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.CreateNote(n); err != nil {
		return fmt.Errorf("add note: %w", err)
	}
	s.logger.Debug("note added", "date", n.Date, "category", n.Category, "id", n.ID)
	return nil
}

// Note resolves a note by ID or ID prefix.
func (s *Service) Note(ref string) (*models.Note, error) {
	n, err := s.store.GetNote(ref)
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// Notes lists notes newest first. An empty category lists every note.
func (s *Service) Notes(category models.NoteCategory) ([]*models.Note, error) {
	all, err := s.store.ListNotes()
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if category == "" {
		return all, nil
	}
	out := make([]*models.Note, 0, len(all))
	for _, n := range all {
		if n.Category == category {
			out = append(out, n)
		}
	}
	return out, nil
}

// SearchNotes returns notes whose title, text, or tags contain query, newest first.
func (s *Service) SearchNotes(query string) ([]*models.Note, error) {
	all, err := s.store.ListNotes()
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	out := make([]*models.Note, 0, len(all))
	for _, n := range all {
		if n.Matches(query) {
			out = append(out, n)
		}
	}
	return out, nil
}

// DeleteNote removes a note and returns it.
func (s *Service) DeleteNote(ref string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.store.GetNote(ref)
	if err != nil {
		return nil, fmt.Errorf("delete note: %w", err)
	}
	if err := s.store.DeleteNote(n.ID.String()); err != nil {
		return nil, fmt.Errorf("delete note: %w", err)
	}
	s.logger.Debug("note deleted", "id", n.ID)
	return n, nil
}
