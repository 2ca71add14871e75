// ABOUTME: Program and ProgramExercise models for structured workouts.
// ABOUTME: Programs run in series mode (sets per exercise) or sets mode (rounds).
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mode selects how the sequencer traverses a program's exercises.
type Mode string

const (
	// ModeSeries exhausts the sets of one exercise before moving to the next.
	ModeSeries Mode = "series"
	// ModeSets repeats the whole exercise list as rounds.
	ModeSets Mode = "sets"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == ModeSeries || m == ModeSets
}

// RunningCategory marks programs whose sessions record distance instead of volume.
const RunningCategory = "Running"

// Target is the driving quantity of an exercise. TimeSec wins when positive.
type Target struct {
	Reps    int `json:"reps,omitempty" yaml:"reps,omitempty"`
	TimeSec int `json:"time_sec,omitempty" yaml:"time_sec,omitempty"`
}

// ProgramExercise is one entry of a program's ordered exercise list.
type ProgramExercise struct {
	ExerciseID string `json:"exercise_id" yaml:"exercise_id"`
	Target     Target `json:"target" yaml:"target"`
	Sets       int    `json:"sets,omitempty" yaml:"sets,omitempty"`
	RestSec    *int   `json:"rest_sec,omitempty" yaml:"rest_sec,omitempty"`
}

// IsTimed reports whether the exercise is driven by a countdown.
func (e ProgramExercise) IsTimed() bool {
	return e.Target.TimeSec > 0
}

// SetCount returns the configured sets, defaulting to 1.
func (e ProgramExercise) SetCount() int {
	if e.Sets <= 0 {
		return 1
	}
	return e.Sets
}

// Rest returns the rest after this exercise, or fallback when unset.
// An explicit zero means no rest.
func (e ProgramExercise) Rest(fallback int) int {
	if e.RestSec == nil {
		return fallback
	}
	return *e.RestSec
}

// Program is a named workout template.
type Program struct {
	ID                   uuid.UUID         `json:"id" yaml:"id"`
	Name                 string            `json:"name" yaml:"name"`
	Mode                 Mode              `json:"mode" yaml:"mode"`
	Rounds               int               `json:"rounds,omitempty" yaml:"rounds,omitempty"`
	RestBetweenRoundsSec *int              `json:"rest_between_rounds_sec,omitempty" yaml:"rest_between_rounds_sec,omitempty"`
	Category             []string          `json:"category,omitempty" yaml:"category,omitempty"`
	Equipment            []string          `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	EstDurationMin       int               `json:"est_duration_min,omitempty" yaml:"est_duration_min,omitempty"`
	Intensity            int               `json:"intensity,omitempty" yaml:"intensity,omitempty"`
	Exercises            []ProgramExercise `json:"exercises" yaml:"exercises"`
	CreatedAt            time.Time         `json:"created_at" yaml:"created_at"`
}

// NewProgram creates a Program with a generated UUID.
func NewProgram(name string, mode Mode, exercises ...ProgramExercise) *Program {
	return &Program{
		ID:        uuid.New(),
		Name:      name,
		Mode:      mode,
		Exercises: exercises,
		CreatedAt: time.Now(),
	}
}

// WithRounds sets the round count and between-round rest for sets mode.
func (p *Program) WithRounds(rounds, restSec int) *Program {
	p.Rounds = rounds
	p.RestBetweenRoundsSec = &restSec
	return p
}

// WithCategory sets the program categories.
func (p *Program) WithCategory(categories ...string) *Program {
	p.Category = categories
	return p
}

// RoundCount returns the number of rounds, defaulting to 1.
func (p *Program) RoundCount() int {
	if p.Rounds <= 0 {
		return 1
	}
	return p.Rounds
}

// RoundRest returns the between-round rest, or fallback when unset.
func (p *Program) RoundRest(fallback int) int {
	if p.RestBetweenRoundsSec == nil {
		return fallback
	}
	return *p.RestBetweenRoundsSec
}

// IsRunning reports whether the program belongs to the running category.
func (p *Program) IsRunning() bool {
	for _, c := range p.Category {
		if strings.EqualFold(c, RunningCategory) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so edits never touch the original record.
func (p *Program) Clone() *Program {
	c := *p
	c.Category = append([]string(nil), p.Category...)
	c.Equipment = append([]string(nil), p.Equipment...)
	if p.RestBetweenRoundsSec != nil {
		v := *p.RestBetweenRoundsSec
		c.RestBetweenRoundsSec = &v
	}
	c.Exercises = make([]ProgramExercise, len(p.Exercises))
	for i, e := range p.Exercises {
		if e.RestSec != nil {
			v := *e.RestSec
			e.RestSec = &v
		}
		c.Exercises[i] = e
	}
	return &c
}

// Validate checks that the program can be started.
// A nil catalog skips the exercise id lookup.
func (p *Program) Validate(catalog Catalog) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProgram)
	}
	if !p.Mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, p.Mode)
	}
	if len(p.Exercises) == 0 {
		return ErrNoExercises
	}
	if p.Rounds < 0 {
		return fmt.Errorf("%w: rounds must not be negative", ErrInvalidProgram)
	}
	if p.RestBetweenRoundsSec != nil && *p.RestBetweenRoundsSec < 0 {
		return fmt.Errorf("%w: round rest must not be negative", ErrInvalidProgram)
	}
	if p.Intensity < 0 || p.Intensity > 5 {
		return fmt.Errorf("%w: intensity must be between 1 and 5", ErrInvalidProgram)
	}

	for i, e := range p.Exercises {
		if catalog != nil {
			if _, ok := catalog.Lookup(e.ExerciseID); !ok {
				return fmt.Errorf("%w: %q", ErrUnknownExercise, e.ExerciseID)
			}
		} else if e.ExerciseID == "" {
			return fmt.Errorf("%w: exercise %d has no id", ErrInvalidProgram, i+1)
		}
		if e.Target.Reps < 0 || e.Target.TimeSec < 0 || e.Sets < 0 {
			return fmt.Errorf("%w: exercise %d has a negative target", ErrInvalidProgram, i+1)
		}
		if e.RestSec != nil && *e.RestSec < 0 {
			return fmt.Errorf("%w: exercise %d has a negative rest", ErrInvalidProgram, i+1)
		}
	}
	return nil
}
