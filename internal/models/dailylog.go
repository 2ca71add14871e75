// ABOUTME: DailyLog model aggregating sessions, hydration, and supplement intake per day.
// ABOUTME: Days are keyed by a YYYY-MM-DD string and never persisted empty.
package models

import (
	"fmt"
	"time"
)

// DateFormat is the layout of DailyLog keys.
const DateFormat = "2006-01-02"

// DailyLog is the record of one calendar day.
type DailyLog struct {
	Date          string          `json:"date" yaml:"date"`
	Sessions      []Session       `json:"sessions" yaml:"sessions"`
	Hydration     int             `json:"hydration" yaml:"hydration"`
	SupplementLog map[string]bool `json:"supplement_log" yaml:"supplement_log"`
}

// NewDailyLog creates an empty log for date.
func NewDailyLog(date string) *DailyLog {
	return &DailyLog{
		Date:          date,
		Sessions:      []Session{},
		SupplementLog: map[string]bool{},
	}
}

// DateKey formats t as a DailyLog key in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateFormat)
}

// ParseDateKey validates and parses a DailyLog key.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateFormat, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// IsEmpty reports whether the day carries no data worth keeping.
func (d *DailyLog) IsEmpty() bool {
	if len(d.Sessions) > 0 || d.Hydration > 0 {
		return false
	}
	for _, taken := range d.SupplementLog {
		if taken {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the log.
func (d *DailyLog) Clone() *DailyLog {
	c := &DailyLog{
		Date:          d.Date,
		Sessions:      append([]Session{}, d.Sessions...),
		Hydration:     d.Hydration,
		SupplementLog: make(map[string]bool, len(d.SupplementLog)),
	}
	for k, v := range d.SupplementLog {
		c.SupplementLog[k] = v
	}
	return c
}

// Normalize fills nil collections and clamps hydration at zero.
func (d *DailyLog) Normalize() *DailyLog {
	if d.Sessions == nil {
		d.Sessions = []Session{}
	}
	if d.SupplementLog == nil {
		d.SupplementLog = map[string]bool{}
	}
	if d.Hydration < 0 {
		d.Hydration = 0
	}
	return d
}

// TotalVolume sums the volume of every session that day.
func (d *DailyLog) TotalVolume() float64 {
	var total float64
	for _, s := range d.Sessions {
		total += s.Volume()
	}
	return total
}

// TotalDistance sums the distance of every session that day.
func (d *DailyLog) TotalDistance() float64 {
	var total float64
	for _, s := range d.Sessions {
		total += s.Distance()
	}
	return total
}
