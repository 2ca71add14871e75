// ABOUTME: Workout sequencer state machine driving exercises, sets, rests, and rounds.
// ABOUTME: Owns its countdown timer and records exactly one session per finished run.
package workout

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/dojo/internal/models"
	"github.com/harperreed/dojo/internal/rules"
)

// Status is the sequencer's phase.
type Status string

const (
	// StatusIdle is both the initial state and the paused state.
	StatusIdle     Status = "idle"
	StatusWorking  Status = "working"
	StatusResting  Status = "resting"
	StatusFinished Status = "finished"
)

// IsTicking reports whether the countdown may run in this status.
func (s Status) IsTicking() bool {
	return s == StatusWorking || s == StatusResting
}

// State is the observable cursor of a run.
type State struct {
	Status           Status `json:"status"`
	ExerciseIndex    int    `json:"exercise_index"`
	SetNumber        int    `json:"set_number"`
	RoundNumber      int    `json:"round_number"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Timed            bool   `json:"timed"`
	RoundRest        bool   `json:"round_rest"`
	Paused           bool   `json:"paused"`
}

// EventKind classifies what happened to the run.
type EventKind string

const (
	// EventStep fires when a new working or resting step begins.
	EventStep   EventKind = "step"
	EventTick   EventKind = "tick"
	EventPause  EventKind = "pause"
	EventResume EventKind = "resume"
	// EventIdle fires when series mode parks on the next exercise awaiting Start.
	EventIdle   EventKind = "idle"
	EventFinish EventKind = "finish"
)

// Event is delivered to observers after each transition, outside the sequencer lock.
type Event struct {
	Kind  EventKind
	State State
}

// SessionRecorder persists a finished run.
type SessionRecorder interface {
	Record(p *models.Program) (models.Session, error)
}

// ErrNilProgram is returned when no program is supplied.
var ErrNilProgram = errors.New("no program supplied")

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithClock replaces the real clock.
func WithClock(c Clock) Option {
	return func(s *Sequencer) { s.clock = c }
}

// WithRules sets the rules table used for default rests.
func WithRules(t rules.Table) Option {
	return func(s *Sequencer) { s.rules = t }
}

// WithCatalog validates exercise IDs against catalog.
func WithCatalog(c models.Catalog) Option {
	return func(s *Sequencer) { s.catalog = c }
}

// WithLogger sets the logger for transition traces.
func WithLogger(l *log.Logger) Option {
	return func(s *Sequencer) { s.logger = l }
}

// WithObserver registers a callback for every event.
func WithObserver(fn func(Event)) Option {
	return func(s *Sequencer) { s.observer = fn }
}

// WithOnFinished registers a callback fired once with the recorded session.
func WithOnFinished(fn func(models.Session, error)) Option {
	return func(s *Sequencer) { s.onFinished = fn }
}

// Sequencer walks a program's exercises according to its mode.
// Commands are safe to call from any goroutine; timer ticks arrive on their own.
type Sequencer struct {
	mu sync.Mutex

	program    *models.Program
	rules      rules.Table
	catalog    models.Catalog
	clock      Clock
	recorder   SessionRecorder
	logger     *log.Logger
	observer   func(Event)
	onFinished func(models.Session, error)

	status        Status
	exerciseIndex int
	setNumber     int
	roundNumber   int
	remaining     int
	roundRest     bool
	paused        bool
	pausedFrom    Status

	timer Timer
	gen   uint64

	recorded      bool
	finishPending bool
	events        []Event
}

// New validates program and returns an idle sequencer positioned on the first exercise.
// The program is cloned; later edits to the caller's copy do not affect the run.
func New(program *models.Program, recorder SessionRecorder, opts ...Option) (*Sequencer, error) {
	if program == nil {
		return nil, ErrNilProgram
	}
	s := &Sequencer{
		program:     program.Clone(),
		rules:       rules.Default(),
		clock:       RealClock(),
		recorder:    recorder,
		logger:      log.Default(),
		status:      StatusIdle,
		setNumber:   1,
		roundNumber: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = RealClock()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if err := s.program.Validate(s.catalog); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return s, nil
}

// StartSession creates a sequencer for program and immediately starts it.
func StartSession(program *models.Program, recorder SessionRecorder, opts ...Option) (*Sequencer, State, error) {
	s, err := New(program, recorder, opts...)
	if err != nil {
		return nil, State{}, err
	}
	return s, s.Start(), nil
}

// Program returns a copy of the program being run.
func (s *Sequencer) Program() *models.Program {
	return s.program.Clone()
}

// State returns the current observable state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Current returns the exercise under the cursor.
func (s *Sequencer) Current() models.ProgramExercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.program.Exercises[s.exerciseIndex]
}

// Start begins the current step, or resumes a paused one.
// It is ignored while a step is running and after the run finished.
func (s *Sequencer) Start() State {
	return s.do(func() {
		switch {
		case s.status != StatusIdle:
			return
		case s.paused:
			s.resume()
		default:
			s.beginWork()
		}
	})
}

// Pause freezes a running step. The cursor and remaining seconds are kept.
func (s *Sequencer) Pause() State {
	return s.do(func() {
		if !s.status.IsTicking() {
			return
		}
		s.disarm()
		s.pausedFrom = s.status
		s.paused = true
		s.status = StatusIdle
		s.emit(EventPause)
	})
}

// Advance completes the current step as if its countdown reached zero.
// It has no effect while idle or finished.
func (s *Sequencer) Advance() State {
	return s.do(func() {
		if !s.status.IsTicking() {
			return
		}
		s.complete()
	})
}

// Close cancels any pending tick. The run is abandoned without recording.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarm()
}

// NextExercise reports what the next step will work on without moving the cursor.
// It returns false when the current step is the last of the run.
func (s *Sequencer) NextExercise() (models.ProgramExercise, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusFinished {
		return models.ProgramExercise{}, false
	}
	exercises := s.program.Exercises
	last := len(exercises) - 1
	cur := exercises[s.exerciseIndex]

	// roundRest survives a pause so a frozen round rest still points at the new round.
	if s.roundRest {
		return cur, true
	}
	switch s.program.Mode {
	case models.ModeSeries:
		if s.setNumber < cur.SetCount() {
			return cur, true
		}
		if s.exerciseIndex < last {
			return exercises[s.exerciseIndex+1], true
		}
	case models.ModeSets:
		if s.exerciseIndex < last {
			return exercises[s.exerciseIndex+1], true
		}
		if s.roundNumber < s.program.RoundCount() {
			return exercises[0], true
		}
	}
	return models.ProgramExercise{}, false
}

// do runs fn under the lock, then delivers events and the finish callback outside it.
func (s *Sequencer) do(fn func()) State {
	s.mu.Lock()
	fn()
	st := s.stateLocked()
	events := s.events
	s.events = nil
	record := s.finishPending
	s.finishPending = false
	s.mu.Unlock()

	if s.observer != nil {
		for _, ev := range events {
			s.observer(ev)
		}
	}
	if record {
		s.record()
	}
	return st
}

func (s *Sequencer) record() {
	var (
		session models.Session
		err     error
	)
	if s.recorder != nil {
		session, err = s.recorder.Record(s.program)
	}
	if err != nil {
		s.logger.Error("failed to record session", "program", s.program.Name, "err", err)
	} else {
		s.logger.Debug("session recorded", "program", s.program.Name, "id", session.ID, "xp", session.XPGained)
	}
	if s.onFinished != nil {
		s.onFinished(session, err)
	}
}

func (s *Sequencer) stateLocked() State {
	return State{
		Status:           s.status,
		ExerciseIndex:    s.exerciseIndex,
		SetNumber:        s.setNumber,
		RoundNumber:      s.roundNumber,
		RemainingSeconds: s.remaining,
		Timed:            s.status.IsTicking() && s.remaining > 0,
		RoundRest:        s.status == StatusResting && s.roundRest,
		Paused:           s.paused,
	}
}

func (s *Sequencer) emit(kind EventKind) {
	st := s.stateLocked()
	s.logger.Debug("workout "+string(kind),
		"status", st.Status,
		"exercise", st.ExerciseIndex,
		"set", st.SetNumber,
		"round", st.RoundNumber,
		"remaining", st.RemainingSeconds)
	s.events = append(s.events, Event{Kind: kind, State: st})
}

// beginWork starts a working step on the exercise under the cursor.
// Timed exercises arm the countdown; rep-based ones wait for Advance.
func (s *Sequencer) beginWork() {
	s.disarm()
	s.paused = false
	s.roundRest = false
	s.status = StatusWorking
	s.remaining = 0
	if ex := s.program.Exercises[s.exerciseIndex]; ex.IsTimed() {
		s.remaining = ex.Target.TimeSec
		s.arm()
	}
	s.emit(EventStep)
}

func (s *Sequencer) beginRest(seconds int, betweenRounds bool) {
	s.disarm()
	s.paused = false
	s.roundRest = betweenRounds
	s.status = StatusResting
	s.remaining = seconds
	s.arm()
	s.emit(EventStep)
}

func (s *Sequencer) resume() {
	s.paused = false
	s.status = s.pausedFrom
	if s.status == StatusWorking && s.remaining == 0 {
		if ex := s.program.Exercises[s.exerciseIndex]; ex.IsTimed() {
			s.remaining = ex.Target.TimeSec
		}
	}
	s.arm()
	s.emit(EventResume)
}

// complete performs the step-complete transition shared by Advance and the countdown.
func (s *Sequencer) complete() {
	s.disarm()
	ex := s.program.Exercises[s.exerciseIndex]

	if s.status == StatusWorking {
		if rest := ex.Rest(s.rules.DefaultExerciseRestSec); rest > 0 {
			s.beginRest(rest, false)
			return
		}
	}

	// The between-round rest already moved the cursor to the first exercise.
	if s.status == StatusResting && s.roundRest {
		s.beginWork()
		return
	}

	last := len(s.program.Exercises) - 1
	switch s.program.Mode {
	case models.ModeSeries:
		if s.setNumber < ex.SetCount() {
			s.setNumber++
			s.beginWork()
			return
		}
		s.setNumber = 1
		if s.exerciseIndex < last {
			s.exerciseIndex++
			s.status = StatusIdle
			s.remaining = 0
			s.roundRest = false
			s.emit(EventIdle)
			return
		}
		s.finish()

	case models.ModeSets:
		if s.exerciseIndex < last {
			s.exerciseIndex++
			s.beginWork()
			return
		}
		if s.roundNumber < s.program.RoundCount() {
			s.roundNumber++
			s.exerciseIndex = 0
			if rest := s.program.RoundRest(s.rules.DefaultRoundRestSec); rest > 0 {
				s.beginRest(rest, true)
				return
			}
			s.beginWork()
			return
		}
		s.finish()
	}
}

func (s *Sequencer) finish() {
	s.disarm()
	s.status = StatusFinished
	s.remaining = 0
	s.setNumber = 1
	s.roundRest = false
	s.paused = false
	if !s.recorded {
		s.recorded = true
		s.finishPending = true
	}
	s.emit(EventFinish)
}

// arm schedules the next one-second tick. Any pending tick is cancelled first.
func (s *Sequencer) arm() {
	s.disarm()
	if !s.status.IsTicking() || s.remaining <= 0 {
		return
	}
	gen := s.gen
	s.timer = s.clock.AfterFunc(time.Second, func() { s.tick(gen) })
}

// disarm cancels the pending tick and invalidates any callback already in flight.
func (s *Sequencer) disarm() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Sequencer) tick(gen uint64) {
	s.do(func() {
		if gen != s.gen || !s.status.IsTicking() {
			return
		}
		s.timer = nil
		s.remaining--
		if s.remaining <= 0 {
			s.remaining = 0
			s.complete()
			return
		}
		s.emit(EventTick)
		s.arm()
	})
}
