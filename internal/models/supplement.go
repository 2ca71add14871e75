// ABOUTME: Supplement model for recurring user-defined intake items.
// ABOUTME: Daily intake is tracked by ID in DailyLog.SupplementLog.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Supplement is a recurring item the user takes, such as creatine or vitamin D.
// Time is a free label ("Morning"), not a scheduled instant.
type Supplement struct {
	ID     uuid.UUID `json:"id" yaml:"id"`
	Name   string    `json:"name" yaml:"name"`
	Dosage string    `json:"dosage" yaml:"dosage"`
	Time   string    `json:"time" yaml:"time"`
	Notes  *string   `json:"notes,omitempty" yaml:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewSupplement creates a Supplement with a generated UUID.
func NewSupplement(name, dosage, timeLabel string) *Supplement {
	return &Supplement{
		ID:     uuid.New(),
		Name:   name,
		Dosage: dosage,
		Time:   timeLabel,

		CreatedAt: time.Now(),
	}
}

// WithNotes sets notes on the supplement.
func (s *Supplement) WithNotes(notes string) *Supplement {
	s.Notes = &notes
	return s
}

// Key returns the SupplementLog key for this supplement.
func (s *Supplement) Key() string {
	return s.ID.String()
}

// Validate checks the required fields.
func (s *Supplement) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSupplement)
	}
	if strings.TrimSpace(s.Dosage) == "" {
		return fmt.Errorf("%w: dosage is required", ErrInvalidSupplement)
	}
	return nil
}
