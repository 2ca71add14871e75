// ABOUTME: Journal service owning every read-modify-write of daily logs.
// ABOUTME: Serialises mutations so concurrent writers never lose updates and never leave empty days.
package journal

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/dojo/internal/models"
	"github.com/harperreed/dojo/internal/progression"
	"github.com/harperreed/dojo/internal/rules"
	"github.com/harperreed/dojo/internal/storage"
)

// Service is the single writer of the log store.
type Service struct {
	mu     sync.Mutex
	store  storage.Repository
	rules  rules.Table
	logger *log.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRules sets the rules table used for progression and hydration goals.
func WithRules(t rules.Table) Option {
	return func(s *Service) { s.rules = t }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithNow overrides the wall clock used for "today".
func WithNow(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

// New wraps store.
func New(store storage.Repository, opts ...Option) *Service {
	s := &Service{
		store:  store,
		rules:  rules.Default(),
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Store returns the underlying repository.
func (s *Service) Store() storage.Repository {
	return s.store
}

// Rules returns the active rules table.
func (s *Service) Rules() rules.Table {
	return s.rules
}

// Now returns the journal's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// Today returns today's date key.
func (s *Service) Today() string {
	return models.DateKey(s.now())
}

// AppendSession appends session to the log for date, creating the day if needed.
func (s *Service) AppendSession(date string, session models.Session) (*models.DailyLog, error) {
	return s.mutate(date, func(log *models.DailyLog) error {
		log.Sessions = append(log.Sessions, session)
		s.logger.Debug("session appended", "date", date, "program", session.ProgramName, "xp", session.XPGained)
		return nil
	})
}

// AdjustHydration adds deltaML to the day's hydration, flooring at zero.
func (s *Service) AdjustHydration(date string, deltaML int) (*models.DailyLog, error) {
	return s.mutate(date, func(log *models.DailyLog) error {
		log.Hydration += deltaML
		if log.Hydration < 0 {
			log.Hydration = 0
		}
		s.logger.Debug("hydration adjusted", "date", date, "delta", deltaML, "total", log.Hydration)
		return nil
	})
}

// ToggleSupplement flips whether the supplement was taken on date.
func (s *Service) ToggleSupplement(date, supplementRef string) (*models.DailyLog, error) {
	sup, err := storage.FindSupplement(s.store, supplementRef)
	if err != nil {
		return nil, fmt.Errorf("toggle supplement: %w", err)
	}
	return s.mutate(date, func(log *models.DailyLog) error {
		log.SupplementLog[sup.Key()] = !log.SupplementLog[sup.Key()]
		s.logger.Debug("supplement toggled", "date", date, "supplement", sup.Name, "taken", log.SupplementLog[sup.Key()])
		return nil
	})
}

// SetSupplement marks the supplement as taken or not taken on date.
func (s *Service) SetSupplement(date, supplementRef string, taken bool) (*models.DailyLog, error) {
	sup, err := storage.FindSupplement(s.store, supplementRef)
	if err != nil {
		return nil, fmt.Errorf("set supplement: %w", err)
	}
	return s.mutate(date, func(log *models.DailyLog) error {
		log.SupplementLog[sup.Key()] = taken
		return nil
	})
}

// SaveDay replaces a whole day, as the edit screen does. An empty day is deleted.
func (s *Service) SaveDay(day *models.DailyLog) (*models.DailyLog, error) {
	if _, err := models.ParseDateKey(day.Date); err != nil {
		return nil, err
	}
	replacement := day.Clone().Normalize()
	return s.mutate(day.Date, func(log *models.DailyLog) error {
		*log = *replacement
		return nil
	})
}

// DeleteSession removes one session, matched by ID or unique ID prefix.
func (s *Service) DeleteSession(date, sessionRef string) (*models.DailyLog, error) {
	return s.mutate(date, func(log *models.DailyLog) error {
		idx := -1
		for i, sess := range log.Sessions {
			if sess.ID == sessionRef || (sessionRef != "" && strings.HasPrefix(sess.ID, sessionRef)) {
				if idx != -1 {
					return fmt.Errorf("%w %s: matches multiple sessions", storage.ErrAmbiguousPrefix, sessionRef)
				}
				idx = i
			}
		}
		if idx == -1 {
			return fmt.Errorf("%w: session %s on %s", storage.ErrNotFound, sessionRef, date)
		}
		log.Sessions = append(log.Sessions[:idx], log.Sessions[idx+1:]...)
		return nil
	})
}

// DeleteDay removes a day entirely.
func (s *Service) DeleteDay(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.DeleteDay(date); err != nil {
		return fmt.Errorf("delete day: %w", err)
	}
	s.logger.Debug("day deleted", "date", date)
	return nil
}

// Reset wipes the whole log history. Programs and supplements are kept.
func (s *Service) Reset() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, err := s.store.ListDays()
	if err != nil {
		return 0, fmt.Errorf("reset: %w", err)
	}
	for _, d := range days {
		if err := s.store.DeleteDay(d.Date); err != nil {
			return 0, fmt.Errorf("reset %s: %w", d.Date, err)
		}
	}
	s.logger.Info("history reset", "days", len(days))
	return len(days), nil
}

// Day returns the log for date. Missing days come back empty, not as an error.
func (s *Service) Day(date string) (*models.DailyLog, error) {
	if _, err := models.ParseDateKey(date); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	log, _, err := s.load(date)
	return log, err
}

// Days returns every stored day, oldest first.
func (s *Service) Days() ([]*models.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	days, err := s.store.ListDays()
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	return days, nil
}

// mutate runs fn on the day under the lock and persists the result.
// A day that ends up empty is deleted rather than stored.
func (s *Service) mutate(date string, fn func(log *models.DailyLog) error) (*models.DailyLog, error) {
	if _, err := models.ParseDateKey(date); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log, existed, err := s.load(date)
	if err != nil {
		return nil, err
	}
	if err := fn(log); err != nil {
		return nil, err
	}
	log.Date = date
	if err := s.save(log, existed); err != nil {
		return nil, err
	}
	return log.Clone(), nil
}

func (s *Service) load(date string) (*models.DailyLog, bool, error) {
	log, err := s.store.GetDay(date)
	if errors.Is(err, storage.ErrNotFound) {
		return models.NewDailyLog(date), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load day %s: %w", date, err)
	}
	return log.Normalize(), true, nil
}

func (s *Service) save(log *models.DailyLog, existed bool) error {
	if log.IsEmpty() {
		if !existed {
			return nil
		}
		if err := s.store.DeleteDay(log.Date); err != nil {
			return fmt.Errorf("delete empty day %s: %w", log.Date, err)
		}
		s.logger.Debug("empty day removed", "date", log.Date)
		return nil
	}
	if err := s.store.UpsertDay(log); err != nil {
		return fmt.Errorf("save day %s: %w", log.Date, err)
	}
	return nil
}

// Level computes progression over a consistent snapshot of days and supplements.
func (s *Service) Level() (progression.LevelInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, sups, err := s.snapshot()
	if err != nil {
		return progression.LevelInfo{}, err
	}
	return progression.Compute(s.rules, days, sups), nil
}

// Breakdown explains the XP date contributed.
func (s *Service) Breakdown(date string) (progression.DayBreakdown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, _, err := s.load(date)
	if err != nil {
		return progression.DayBreakdown{}, err
	}
	sups, err := s.supplementValues()
	if err != nil {
		return progression.DayBreakdown{}, err
	}
	return progression.DayXP(s.rules, log, sups), nil
}

// snapshot reads days and supplements. Callers hold the lock.
func (s *Service) snapshot() ([]*models.DailyLog, []models.Supplement, error) {
	days, err := s.store.ListDays()
	if err != nil {
		return nil, nil, fmt.Errorf("list days: %w", err)
	}
	sups, err := s.supplementValues()
	if err != nil {
		return nil, nil, err
	}
	return days, sups, nil
}

func (s *Service) supplementValues() ([]models.Supplement, error) {
	list, err := s.store.ListSupplements()
	if err != nil {
		return nil, fmt.Errorf("list supplements: %w", err)
	}
	out := make([]models.Supplement, 0, len(list))
	for _, sup := range list {
		out = append(out, *sup)
	}
	return out, nil
}
