// ABOUTME: Supplement management through the journal.
// ABOUTME: Deleting a supplement purges its intake from every day.
package journal

import (
	"fmt"

	"github.com/harperreed/dojo/internal/models"
	"github.com/harperreed/dojo/internal/storage"
)

// AddSupplement validates and stores a new supplement.
func (s *Service) AddSupplement(sup *models.Supplement) error {
	if err := sup.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.CreateSupplement(sup); err != nil {
		return fmt.Errorf("add supplement: %w", err)
	}
	s.logger.Debug("supplement added", "name", sup.Name, "id", sup.ID)
	return nil
}

// UpdateSupplement validates and overwrites a supplement.
func (s *Service) UpdateSupplement(sup *models.Supplement) error {
	if err := sup.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.UpdateSupplement(sup); err != nil {
		return fmt.Errorf("update supplement: %w", err)
	}
	return nil
}

// Supplement resolves a supplement by ID, ID prefix, or name.
func (s *Service) Supplement(ref string) (*models.Supplement, error) {
	sup, err := storage.FindSupplement(s.store, ref)
	if err != nil {
		return nil, fmt.Errorf("get supplement: %w", err)
	}
	return sup, nil
}

// Supplements lists supplements in the order they were added.
func (s *Service) Supplements() ([]*models.Supplement, error) {
	list, err := s.store.ListSupplements()
	if err != nil {
		return nil, fmt.Errorf("list supplements: %w", err)
	}
	return list, nil
}

// DeleteSupplement removes a supplement and its key from every day's log.
// Days left empty by the purge are deleted. The record itself goes last, so a
// failed purge can be retried with the same reference. It returns the deleted
// supplement and how many days were touched.
func (s *Service) DeleteSupplement(ref string) (*models.Supplement, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sup, err := storage.FindSupplement(s.store, ref)
	if err != nil {
		return nil, 0, fmt.Errorf("delete supplement: %w", err)
	}

	days, err := s.store.ListDays()
	if err != nil {
		return nil, 0, fmt.Errorf("purge supplement: %w", err)
	}
	touched := 0
	for _, day := range days {
		if _, ok := day.SupplementLog[sup.Key()]; !ok {
			continue
		}
		delete(day.SupplementLog, sup.Key())
		if err := s.save(day, true); err != nil {
			return nil, touched, fmt.Errorf("purge supplement: %w", err)
		}
		touched++
	}

	if err := s.store.DeleteSupplement(sup.ID.String()); err != nil {
		return nil, touched, fmt.Errorf("delete supplement: %w", err)
	}
	s.logger.Debug("supplement deleted", "name", sup.Name, "days_purged", touched)
	return sup, touched, nil
}
