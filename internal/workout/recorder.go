// ABOUTME: Session recorder turning a finished run into a Session in today's log.
// ABOUTME: Running programs record distance; everything else records lifted volume.
package workout

import (
	"fmt"
	"time"

	"github.com/harperreed/dojo/internal/models"
	"github.com/harperreed/dojo/internal/rules"
)

// SessionAppender is the single write path from a finished run into the log store.
type SessionAppender interface {
	AppendSession(date string, s models.Session) (*models.DailyLog, error)
}

// Effort carries what the user reports about a run.
// Zero values mean "not reported".
type Effort struct {
	VolumeKg   float64
	DistanceKm float64
}

// Recorder builds and appends Sessions. It implements SessionRecorder.
type Recorder struct {
	appender SessionAppender
	rules    rules.Table
	now      func() time.Time
	effort   Effort
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithNow overrides the wall clock used to stamp sessions and pick today's key.
func WithNow(fn func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = fn }
}

// WithEffort attaches reported volume or distance to recorded sessions.
func WithEffort(e Effort) RecorderOption {
	return func(r *Recorder) { r.effort = e }
}

// NewRecorder creates a Recorder writing through appender.
func NewRecorder(appender SessionAppender, tbl rules.Table, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		appender: appender,
		rules:    tbl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record builds the Session for p and appends it under today's date.
func (r *Recorder) Record(p *models.Program) (models.Session, error) {
	s := r.Build(p)
	if _, err := r.appender.AppendSession(models.DateKey(s.Date), s); err != nil {
		return models.Session{}, fmt.Errorf("record session: %w", err)
	}
	return s, nil
}

// Build creates the Session for p without persisting it.
// Exactly one of distance or volume is set, or neither.
func (r *Recorder) Build(p *models.Program) models.Session {
	s := models.NewSession(p.Name, r.now(), r.rules.SessionXPGrant)
	if p.IsRunning() {
		km := r.effort.DistanceKm
		if km <= 0 {
			km = r.rules.DefaultRunDistanceKm
		}
		if km > 0 {
			s = s.WithDistance(km)
		}
		return s
	}
	if r.effort.VolumeKg > 0 {
		s = s.WithVolume(r.effort.VolumeKg)
	}
	return s
}
