// ABOUTME: Session model recording one completed workout run.
// ABOUTME: Session IDs are ULIDs so a day's sessions sort by completion time.
package models

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Session is an immutable record of a completed workout.
// ProgramName is a snapshot; the program may later change or disappear.
type Session struct {
	ID            string    `json:"id" yaml:"id"`
	ProgramName   string    `json:"program_name" yaml:"program_name"`
	Date          time.Time `json:"date" yaml:"date"`
	XPGained      int       `json:"xp_gained" yaml:"xp_gained"`
	TotalVolumeKg *float64  `json:"total_volume_kg,omitempty" yaml:"total_volume_kg,omitempty"`
	DistanceKm    *float64  `json:"distance_km,omitempty" yaml:"distance_km,omitempty"`
}

// NewSession creates a Session stamped at t with a fresh ID.
func NewSession(programName string, t time.Time, xp int) Session {
	return Session{
		ID:          ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String(),
		ProgramName: programName,
		Date:        t,
		XPGained:    xp,
	}
}

// WithVolume records lifted volume and clears any distance.
func (s Session) WithVolume(kg float64) Session {
	s.TotalVolumeKg = &kg
	s.DistanceKm = nil
	return s
}

// WithDistance records run distance and clears any volume.
func (s Session) WithDistance(km float64) Session {
	s.DistanceKm = &km
	s.TotalVolumeKg = nil
	return s
}

// Volume returns the recorded volume or zero.
func (s Session) Volume() float64 {
	if s.TotalVolumeKg == nil {
		return 0
	}
	return *s.TotalVolumeKg
}

// Distance returns the recorded distance or zero.
func (s Session) Distance() float64 {
	if s.DistanceKm == nil {
		return 0
	}
	return *s.DistanceKm
}

// Validate rejects negative figures and sessions that carry both volume and
// distance.
func (s Session) Validate() error {
	if s.XPGained < 0 {
		return fmt.Errorf("%w: xp_gained must not be negative", ErrInvalidSession)
	}
	if s.TotalVolumeKg != nil && *s.TotalVolumeKg < 0 {
		return fmt.Errorf("%w: total_volume_kg must not be negative", ErrInvalidSession)
	}
	if s.DistanceKm != nil && *s.DistanceKm < 0 {
		return fmt.Errorf("%w: distance_km must not be negative", ErrInvalidSession)
	}
	if s.TotalVolumeKg != nil && s.DistanceKm != nil {
		return fmt.Errorf("%w: a session records volume or distance, not both", ErrInvalidSession)
	}
	return nil
}
