// ABOUTME: Progression engine converting a log history into level and XP figures.
// ABOUTME: Pure functions; the same inputs always produce the same LevelInfo.
package progression

import (
	"github.com/harperreed/dojo/internal/models"
	"github.com/harperreed/dojo/internal/rules"
)

// LevelInfo is the derived progression display.
// TotalXP == CumulativeXP(Level) + CurrentLevelXP and 0 <= CurrentLevelXP < XPForNextLevel.
type LevelInfo struct {
	Level          int `json:"level"`
	CurrentLevelXP int `json:"current_level_xp"`
	XPForNextLevel int `json:"xp_for_next_level"`
	TotalXP        int `json:"total_xp"`
}

// Progress returns the completion of the current level as a percentage.
func (l LevelInfo) Progress() float64 {
	if l.XPForNextLevel <= 0 {
		return 0
	}
	return float64(l.CurrentLevelXP) / float64(l.XPForNextLevel) * 100
}

// DayBreakdown explains the XP one day contributed.
type DayBreakdown struct {
	SessionXP    int `json:"session_xp"`
	HydrationXP  int `json:"hydration_xp"`
	SupplementXP int `json:"supplement_xp"`
}

// Total returns the day's XP.
func (b DayBreakdown) Total() int {
	return b.SessionXP + b.HydrationXP + b.SupplementXP
}

// ComputeLevel uses the default rules table.
func ComputeLevel(logs []*models.DailyLog, supplements []models.Supplement) LevelInfo {
	return Compute(rules.Default(), logs, supplements)
}

// Compute sums XP over every day and resolves the level.
func Compute(tbl rules.Table, logs []*models.DailyLog, supplements []models.Supplement) LevelInfo {
	total := 0
	for _, log := range logs {
		total += DayXP(tbl, log, supplements).Total()
	}
	return Resolve(tbl, total)
}

// DayXP computes what a single day contributes. The supplement bonus is checked
// against the current supplement list, not the list as it was on that day.
func DayXP(tbl rules.Table, log *models.DailyLog, supplements []models.Supplement) DayBreakdown {
	var b DayBreakdown
	if log == nil {
		return b
	}
	for _, s := range log.Sessions {
		b.SessionXP += s.XPGained
	}
	if log.Hydration >= tbl.HydrationGoalML {
		b.HydrationXP = tbl.HydrationBonusXP
	}
	if allSupplementsTaken(log, supplements) {
		b.SupplementXP = tbl.SupplementBonusXP
	}
	return b
}

func allSupplementsTaken(log *models.DailyLog, supplements []models.Supplement) bool {
	if len(supplements) == 0 || len(log.SupplementLog) < len(supplements) {
		return false
	}
	for _, s := range supplements {
		if !log.SupplementLog[s.Key()] {
			return false
		}
	}
	return true
}

// Resolve walks the level curve from level 1 until totalXP no longer covers
// the next requirement. Requires a validated table so the loop terminates.
func Resolve(tbl rules.Table, totalXP int) LevelInfo {
	level := 1
	cumulative := 0
	next := tbl.XPForNextLevel(level)
	for totalXP >= cumulative+next {
		cumulative += next
		level++
		next = tbl.XPForNextLevel(level)
	}
	return LevelInfo{
		Level:          level,
		CurrentLevelXP: totalXP - cumulative,
		XPForNextLevel: next,
		TotalXP:        totalXP,
	}
}
