// ABOUTME: Weekly statistics and the home-screen summary derived from the journal.
// ABOUTME: All figures come from one locked snapshot of the store.
package journal

import (
	"fmt"
	"time"

	"github.com/harperreed/dojo/internal/models"
	"github.com/harperreed/dojo/internal/progression"
)

// DayStat is one bar of the weekly chart.
type DayStat struct {
	Date       string  `json:"date"`
	Sessions   int     `json:"sessions"`
	VolumeKg   float64 `json:"volume_kg"`
	DistanceKm float64 `json:"distance_km"`
	Hydration  int     `json:"hydration_ml"`
	XP         int     `json:"xp"`
}

// Summary is the home-screen KPI card.
type Summary struct {
	Date             string                `json:"date"`
	Programs         int                   `json:"programs"`
	TotalSessions    int                   `json:"total_sessions"`
	HydrationML      int                   `json:"hydration_ml"`
	HydrationGoalML  int                   `json:"hydration_goal_ml"`
	HydrationPercent int                   `json:"hydration_percent"`
	SupplementsTaken int                   `json:"supplements_taken"`
	SupplementsTotal int                   `json:"supplements_total"`
	TodaySessions    []models.Session      `json:"today_sessions"`
	Level            progression.LevelInfo `json:"level"`
}

// Week returns seven consecutive days ending on end, oldest first.
// Days without a log are zero-valued.
func (s *Service) Week(end time.Time) ([]DayStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, sups, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]*models.DailyLog, len(days))
	for _, d := range days {
		byDate[d.Date] = d
	}

	stats := make([]DayStat, 0, 7)
	for i := 6; i >= 0; i-- {
		date := models.DateKey(end.AddDate(0, 0, -i))
		stat := DayStat{Date: date}
		if d, ok := byDate[date]; ok {
			stat.Sessions = len(d.Sessions)
			stat.VolumeKg = d.TotalVolume()
			stat.DistanceKm = d.TotalDistance()
			stat.Hydration = d.Hydration
			stat.XP = progression.DayXP(s.rules, d, sups).Total()
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// Summary builds the KPI card for today.
func (s *Service) Summary(today time.Time) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, sups, err := s.snapshot()
	if err != nil {
		return Summary{}, err
	}
	programs, err := s.store.ListPrograms()
	if err != nil {
		return Summary{}, fmt.Errorf("list programs: %w", err)
	}

	date := models.DateKey(today)
	sum := Summary{
		Date:             date,
		Programs:         len(programs),
		HydrationGoalML:  s.rules.HydrationGoalML,
		SupplementsTotal: len(sups),
		TodaySessions:    []models.Session{},
		Level:            progression.Compute(s.rules, days, sups),
	}
	for _, d := range days {
		sum.TotalSessions += len(d.Sessions)
		if d.Date != date {
			continue
		}
		sum.HydrationML = d.Hydration
		sum.TodaySessions = append(sum.TodaySessions, d.Sessions...)
		for _, sup := range sups {
			if d.SupplementLog[sup.Key()] {
				sum.SupplementsTaken++
			}
		}
	}
	if sum.HydrationGoalML > 0 {
		sum.HydrationPercent = sum.HydrationML * 100 / sum.HydrationGoalML
		if sum.HydrationPercent > 100 {
			sum.HydrationPercent = 100
		}
	}
	return sum, nil
}
