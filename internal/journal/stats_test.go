// ABOUTME: Tests for weekly statistics and the summary card.
// ABOUTME: Checks day windows, totals, and supplement counts.
package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dojo/internal/models"
)

func TestWeek(t *testing.T) {
	s := newService(t)

	_, err := s.AppendSession("2025-01-31", models.NewSession("Lift", today, 150).WithVolume(2500))
	require.NoError(t, err)
	_, err = s.AppendSession("2025-01-29", models.NewSession("Run", today.AddDate(0, 0, -2), 150).WithDistance(6.5))
	require.NoError(t, err)
	_, err = s.AdjustHydration("2025-01-25", 3000)
	require.NoError(t, err)
	// Outside the window.
	_, err = s.AdjustHydration("2025-01-24", 3000)
	require.NoError(t, err)

	week, err := s.Week(today)
	require.NoError(t, err)
	require.Len(t, week, 7)

	assert.Equal(t, "2025-01-25", week[0].Date)
	assert.Equal(t, "2025-01-31", week[6].Date)
	assert.Equal(t, 3000, week[0].Hydration)
	assert.Equal(t, 15, week[0].XP)
	assert.Equal(t, 6.5, week[4].DistanceKm)
	assert.Equal(t, 2500.0, week[6].VolumeKg)
	assert.Equal(t, 1, week[6].Sessions)
	assert.Equal(t, 150, week[6].XP)
	assert.Zero(t, week[5].Sessions)
}

func TestSummary(t *testing.T) {
	s := newService(t)
	creatine := addSupplement(t, s, "Creatine")
	addSupplement(t, s, "Vitamin D")

	p := models.NewProgram("Legs", models.ModeSeries, models.ProgramExercise{
		ExerciseID: "ex-squat", Target: models.Target{Reps: 10},
	})
	require.NoError(t, s.AddProgram(p, models.DefaultCatalog()))

	_, err := s.AppendSession("2025-01-30", models.NewSession("Legs", today.AddDate(0, 0, -1), 150))
	require.NoError(t, err)
	_, err = s.AppendSession("2025-01-31", models.NewSession("Legs", today, 150))
	require.NoError(t, err)
	_, err = s.AdjustHydration("2025-01-31", 4500)
	require.NoError(t, err)
	_, err = s.ToggleSupplement("2025-01-31", creatine.ID.String())
	require.NoError(t, err)

	sum, err := s.Summary(today)
	require.NoError(t, err)

	assert.Equal(t, "2025-01-31", sum.Date)
	assert.Equal(t, 1, sum.Programs)
	assert.Equal(t, 2, sum.TotalSessions)
	assert.Len(t, sum.TodaySessions, 1)
	assert.Equal(t, 4500, sum.HydrationML)
	assert.Equal(t, 100, sum.HydrationPercent, "percentage is capped")
	assert.Equal(t, 1, sum.SupplementsTaken)
	assert.Equal(t, 2, sum.SupplementsTotal)
	// 300 session XP + 15 hydration; the supplement bonus needs both.
	assert.Equal(t, 315, sum.Level.TotalXP)
}

func TestSummaryEmpty(t *testing.T) {
	s := newService(t)
	sum, err := s.Summary(time.Now())
	require.NoError(t, err)
	assert.Zero(t, sum.TotalSessions)
	assert.Equal(t, 1, sum.Level.Level)
	assert.NotNil(t, sum.TodaySessions)
}
