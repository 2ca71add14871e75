// ABOUTME: Named gameplay constants shared by the sequencer, recorder, and progression engine.
// ABOUTME: Config files may override individual entries; Validate guards the level curve.
package rules

import (
	"errors"
	"fmt"
)

// ErrInvalidRules is returned when a table would break the level curve or timers.
var ErrInvalidRules = errors.New("invalid rules")

// Table holds every tunable constant of the workout and progression engines.
type Table struct {
	HydrationGoalML        int     `json:"hydration_goal_ml"`
	HydrationBonusXP       int     `json:"hydration_bonus_xp"`
	SupplementBonusXP      int     `json:"supplement_bonus_xp"`
	SessionXPGrant         int     `json:"session_xp_grant"`
	DefaultExerciseRestSec int     `json:"default_exercise_rest_sec"`
	DefaultRoundRestSec    int     `json:"default_round_rest_sec"`
	BaseLevelXP            int     `json:"base_level_xp"`
	LevelXPStep            int     `json:"level_xp_step"`
	DefaultRunDistanceKm   float64 `json:"default_run_distance_km"`
}

// Default returns the stock table.
func Default() Table {
	return Table{
		HydrationGoalML:        3000,
		HydrationBonusXP:       15,
		SupplementBonusXP:      5,
		SessionXPGrant:         150,
		DefaultExerciseRestSec: 10,
		DefaultRoundRestSec:    30,
		BaseLevelXP:            100,
		LevelXPStep:            50,
		DefaultRunDistanceKm:   5,
	}
}

// Validate rejects tables whose level requirement is not strictly positive
// or whose grants and rests are negative.
func (t Table) Validate() error {
	if t.BaseLevelXP <= 0 {
		return fmt.Errorf("%w: base_level_xp must be positive", ErrInvalidRules)
	}
	if t.LevelXPStep < 0 {
		return fmt.Errorf("%w: level_xp_step must not be negative", ErrInvalidRules)
	}
	checks := map[string]int{
		"hydration_goal_ml":         t.HydrationGoalML,
		"hydration_bonus_xp":        t.HydrationBonusXP,
		"supplement_bonus_xp":       t.SupplementBonusXP,
		"session_xp_grant":          t.SessionXPGrant,
		"default_exercise_rest_sec": t.DefaultExerciseRestSec,
		"default_round_rest_sec":    t.DefaultRoundRestSec,
	}
	for name, v := range checks {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidRules, name)
		}
	}
	if t.DefaultRunDistanceKm < 0 {
		return fmt.Errorf("%w: default_run_distance_km must not be negative", ErrInvalidRules)
	}
	return nil
}

// XPForNextLevel returns the XP needed to go from level to level+1.
// The curve is linear: BaseLevelXP + LevelXPStep*(level-1).
func (t Table) XPForNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return t.BaseLevelXP + t.LevelXPStep*(level-1)
}

// CumulativeXP returns the total XP required to reach level.
func (t Table) CumulativeXP(level int) int {
	total := 0
	for l := 1; l < level; l++ {
		total += t.XPForNextLevel(l)
	}
	return total
}

// Overrides is a partial Table read from configuration. Nil fields keep defaults.
type Overrides struct {
	HydrationGoalML        *int     `json:"hydration_goal_ml,omitempty"`
	HydrationBonusXP       *int     `json:"hydration_bonus_xp,omitempty"`
	SupplementBonusXP      *int     `json:"supplement_bonus_xp,omitempty"`
	SessionXPGrant         *int     `json:"session_xp_grant,omitempty"`
	DefaultExerciseRestSec *int     `json:"default_exercise_rest_sec,omitempty"`
	DefaultRoundRestSec    *int     `json:"default_round_rest_sec,omitempty"`
	BaseLevelXP            *int     `json:"base_level_xp,omitempty"`
	LevelXPStep            *int     `json:"level_xp_step,omitempty"`
	DefaultRunDistanceKm   *float64 `json:"default_run_distance_km,omitempty"`
}

// Apply returns t with every non-nil override applied, validated.
func (t Table) Apply(o *Overrides) (Table, error) {
	if o == nil {
		return t, t.Validate()
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&t.HydrationGoalML, o.HydrationGoalML)
	setInt(&t.HydrationBonusXP, o.HydrationBonusXP)
	setInt(&t.SupplementBonusXP, o.SupplementBonusXP)
	setInt(&t.SessionXPGrant, o.SessionXPGrant)
	setInt(&t.DefaultExerciseRestSec, o.DefaultExerciseRestSec)
	setInt(&t.DefaultRoundRestSec, o.DefaultRoundRestSec)
	setInt(&t.BaseLevelXP, o.BaseLevelXP)
	setInt(&t.LevelXPStep, o.LevelXPStep)
	if o.DefaultRunDistanceKm != nil {
		t.DefaultRunDistanceKm = *o.DefaultRunDistanceKm
	}
	return t, t.Validate()
}
