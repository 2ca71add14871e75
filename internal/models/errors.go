// ABOUTME: Sentinel errors for the dojo data model.
// ABOUTME: Callers match them with errors.Is after wrapping.
package models

import "errors"

var (
	ErrInvalidProgram    = errors.New("invalid program")
	ErrNoExercises       = errors.New("program has no exercises")
	ErrUnknownExercise   = errors.New("unknown exercise")
	ErrInvalidMode       = errors.New("invalid program mode")
	ErrInvalidSupplement = errors.New("invalid supplement")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidSession    = errors.New("invalid session")
	ErrInvalidNote       = errors.New("invalid note")
)
