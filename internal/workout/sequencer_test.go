// ABOUTME: Tests for the workout sequencer state machine.
// ABOUTME: Drives series and rounds programs through commands and a manual clock.
package workout

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harperreed/dojo/internal/models"
)

func intPtr(v int) *int { return &v }

type fakeRecorder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRecorder) Record(p *models.Program) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return models.Session{}, f.err
	}
	return models.NewSession(p.Name, time.Now(), 150), nil
}

func (f *fakeRecorder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type harness struct {
	seq      *Sequencer
	clock    *manualClock
	rec      *fakeRecorder
	mu       sync.Mutex
	events   []Event
	finished int
	lastErr  error
}

func newHarness(t *testing.T, p *models.Program) *harness {
	t.Helper()
	h := &harness{clock: newManualClock(), rec: &fakeRecorder{}}
	seq, err := New(p, h.rec,
		WithClock(h.clock),
		WithCatalog(models.DefaultCatalog()),
		WithLogger(log.New(io.Discard)),
		WithObserver(func(ev Event) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.events = append(h.events, ev)
		}),
		WithOnFinished(func(_ models.Session, err error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.finished++
			h.lastErr = err
		}),
	)
	require.NoError(t, err)
	t.Cleanup(seq.Close)
	h.seq = seq
	return h
}

// steps counts EventStep events entering status, optionally only round rests.
func (h *harness) steps(status Status, roundRestOnly bool) []State {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []State
	for _, ev := range h.events {
		if ev.Kind != EventStep || ev.State.Status != status {
			continue
		}
		if roundRestOnly && !ev.State.RoundRest {
			continue
		}
		out = append(out, ev.State)
	}
	return out
}

func (h *harness) advanceUntilFinished(t *testing.T, limit int) {
	t.Helper()
	for i := 0; i < limit; i++ {
		st := h.seq.State()
		if st.Status == StatusFinished {
			return
		}
		if st.Status == StatusIdle {
			h.seq.Start()
			continue
		}
		h.seq.Advance()
	}
	t.Fatalf("run did not finish within %d commands", limit)
}

func TestSeriesRepsNoRestScenario(t *testing.T) {
	p := models.NewProgram("Push", models.ModeSeries, models.ProgramExercise{
		ExerciseID: "ex-pushup", Target: models.Target{Reps: 10}, Sets: 2, RestSec: intPtr(0),
	})
	h := newHarness(t, p)

	st := h.seq.Start()
	assert.Equal(t, StatusWorking, st.Status)
	assert.Equal(t, 1, st.SetNumber)
	assert.False(t, st.Timed, "rep-based steps have no countdown")

	st = h.seq.Advance()
	assert.Equal(t, StatusWorking, st.Status, "zero rest goes straight to the next set")
	assert.Equal(t, 2, st.SetNumber)

	st = h.seq.Advance()
	assert.Equal(t, StatusFinished, st.Status)
	assert.Equal(t, 1, st.SetNumber)
	assert.Equal(t, 1, h.rec.Calls())
	assert.Equal(t, 1, h.finished)
	assert.Len(t, h.steps(StatusWorking, false), 2)
}

func TestSeriesProducesOneWorkingPhasePerSet(t *testing.T) {
	for n := 1; n <= 5; n++ {
		p := models.NewProgram("Squats", models.ModeSeries, models.ProgramExercise{
			ExerciseID: "ex-squat", Target: models.Target{Reps: 12}, Sets: n,
		})
		h := newHarness(t, p)

		h.advanceUntilFinished(t, 100)

		assert.Len(t, h.steps(StatusWorking, false), n, "sets=%d", n)
		assert.Len(t, h.steps(StatusResting, false), n, "default rest follows every set")
		assert.Equal(t, 1, h.rec.Calls(), "sets=%d", n)
	}
}

func TestRoundsTimedScenario(t *testing.T) {
	p := models.NewProgram("HIIT", models.ModeSets,
		models.ProgramExercise{ExerciseID: "ex-burpee", Target: models.Target{TimeSec: 5}},
		models.ProgramExercise{ExerciseID: "ex-jumping-jack", Target: models.Target{TimeSec: 5}},
	).WithRounds(2, 20)
	h := newHarness(t, p)

	st := h.seq.Start()
	require.Equal(t, StatusWorking, st.Status)
	require.Equal(t, 5, st.RemainingSeconds)

	for i := 0; i < 500 && h.seq.State().Status != StatusFinished; i++ {
		h.clock.Advance(time.Second)
	}

	require.Equal(t, StatusFinished, h.seq.State().Status)
	roundRests := h.steps(StatusResting, true)
	require.Len(t, roundRests, 1)
	assert.Equal(t, 20, roundRests[0].RemainingSeconds)
	assert.Equal(t, 2, roundRests[0].RoundNumber)
	assert.Len(t, h.steps(StatusWorking, false), 4)
	assert.Equal(t, 1, h.rec.Calls())
	assert.Zero(t, h.clock.Active(), "no timer may survive the run")
}

func TestRoundsProduceRoundsTimesExercisesWorkingPhases(t *testing.T) {
	tests := []struct {
		rounds    int
		exercises int
	}{
		{1, 1}, {1, 3}, {2, 2}, {3, 2}, {4, 3},
	}
	ids := []string{"ex-pushup", "ex-squat", "ex-lunge"}

	for _, tt := range tests {
		var exs []models.ProgramExercise
		for i := 0; i < tt.exercises; i++ {
			exs = append(exs, models.ProgramExercise{
				ExerciseID: ids[i], Target: models.Target{Reps: 10}, RestSec: intPtr(0),
			})
		}
		p := models.NewProgram("Circuit", models.ModeSets, exs...).WithRounds(tt.rounds, 15)
		h := newHarness(t, p)

		h.advanceUntilFinished(t, 200)

		working := h.steps(StatusWorking, false)
		assert.Len(t, working, tt.rounds*tt.exercises, "r=%d k=%d", tt.rounds, tt.exercises)
		assert.Len(t, h.steps(StatusResting, true), tt.rounds-1, "r=%d k=%d", tt.rounds, tt.exercises)
		assert.Equal(t, 1, h.rec.Calls())

		// Every exercise index appears once per round.
		seen := map[[2]int]int{}
		for _, st := range working {
			seen[[2]int{st.RoundNumber, st.ExerciseIndex}]++
		}
		for r := 1; r <= tt.rounds; r++ {
			for k := 0; k < tt.exercises; k++ {
				assert.Equal(t, 1, seen[[2]int{r, k}], "round %d exercise %d", r, k)
			}
		}
	}
}

func TestZeroRoundRestStartsNextRoundImmediately(t *testing.T) {
	p := models.NewProgram("Fast", models.ModeSets, models.ProgramExercise{
		ExerciseID: "ex-burpee", Target: models.Target{Reps: 5}, RestSec: intPtr(0),
	}).WithRounds(2, 0)
	h := newHarness(t, p)

	h.seq.Start()
	st := h.seq.Advance()

	assert.Equal(t, StatusWorking, st.Status)
	assert.Equal(t, 2, st.RoundNumber)
	assert.Equal(t, 0, st.ExerciseIndex)
}

func TestSeriesParksOnNextExercise(t *testing.T) {
	p := models.NewProgram("Upper", models.ModeSeries,
		models.ProgramExercise{ExerciseID: "ex-pushup", Target: models.Target{Reps: 10}, RestSec: intPtr(0)},
		models.ProgramExercise{ExerciseID: "ex-dip", Target: models.Target{Reps: 8}, RestSec: intPtr(0)},
	)
	h := newHarness(t, p)

	h.seq.Start()
	st := h.seq.Advance()
	assert.Equal(t, StatusIdle, st.Status, "next exercise waits for an explicit start")
	assert.Equal(t, 1, st.ExerciseIndex)
	assert.False(t, st.Paused)

	st = h.seq.Advance()
	assert.Equal(t, StatusIdle, st.Status, "advance is ignored while idle")

	st = h.seq.Start()
	assert.Equal(t, StatusWorking, st.Status)
	assert.Equal(t, 1, st.ExerciseIndex)
	assert.Equal(t, 1, st.SetNumber)
}

func TestPauseResumeTimedWork(t *testing.T) {
	p := models.NewProgram("Core", models.ModeSeries, models.ProgramExercise{
		ExerciseID: "ex-plank", Target: models.Target{TimeSec: 30}, Sets: 2, RestSec: intPtr(5),
	})
	h := newHarness(t, p)

	h.seq.Start()
	h.clock.Advance(10 * time.Second)
	require.Equal(t, 20, h.seq.State().RemainingSeconds)

	st := h.seq.Pause()
	assert.Equal(t, StatusIdle, st.Status)
	assert.True(t, st.Paused)
	assert.Equal(t, 20, st.RemainingSeconds)
	assert.Zero(t, h.clock.Active(), "pause must cancel the tick")

	h.clock.Advance(5 * time.Second)
	assert.Equal(t, 20, h.seq.State().RemainingSeconds, "no decay while paused")

	st = h.seq.Start()
	assert.Equal(t, StatusWorking, st.Status)
	assert.Equal(t, 20, st.RemainingSeconds)
	assert.Equal(t, 0, st.ExerciseIndex)
	assert.Equal(t, 1, st.SetNumber)
	assert.Equal(t, 1, h.clock.Active())

	h.clock.Advance(20 * time.Second)
	st = h.seq.State()
	assert.Equal(t, StatusResting, st.Status)
	assert.Equal(t, 5, st.RemainingSeconds)
	assert.Len(t, h.steps(StatusWorking, false), 1, "resume is not a new working phase")
}

func TestPauseResumeRest(t *testing.T) {
	p := models.NewProgram("Legs", models.ModeSeries, models.ProgramExercise{
		ExerciseID: "ex-squat", Target: models.Target{Reps: 10}, Sets: 2,
	})
	h := newHarness(t, p)

	h.seq.Start()
	st := h.seq.Advance()
	require.Equal(t, StatusResting, st.Status)
	require.Equal(t, 10, st.RemainingSeconds)

	h.clock.Advance(3 * time.Second)
	h.seq.Pause()
	st = h.seq.Start()

	assert.Equal(t, StatusResting, st.Status)
	assert.Equal(t, 7, st.RemainingSeconds)
	assert.Equal(t, 1, st.SetNumber)

	h.clock.Advance(7 * time.Second)
	st = h.seq.State()
	assert.Equal(t, StatusWorking, st.Status)
	assert.Equal(t, 2, st.SetNumber)
}

func TestStartIsIdempotentWhileRunning(t *testing.T) {
	p := models.NewProgram("Rope", models.ModeSeries, models.ProgramExercise{
		ExerciseID: "ex-jump-rope", Target: models.Target{TimeSec: 60},
	})
	h := newHarness(t, p)

	h.seq.Start()
	h.clock.Advance(2 * time.Second)
	st := h.seq.Start()

	assert.Equal(t, 58, st.RemainingSeconds)
	assert.Equal(t, 1, h.clock.Active())
	assert.Len(t, h.steps(StatusWorking, false), 1)
}

func TestAdvanceCancelsPendingTick(t *testing.T) {
	p := models.NewProgram("Plank", models.ModeSeries, models.ProgramExercise{
		ExerciseID: "ex-plank", Target: models.Target{TimeSec: 30}, RestSec: intPtr(15),
	})
	h := newHarness(t, p)

	h.seq.Start()
	st := h.seq.Advance()

	assert.Equal(t, StatusResting, st.Status)
	assert.Equal(t, 1, h.clock.Active(), "only the rest countdown may be pending")

	h.clock.Advance(time.Second)
	assert.Equal(t, 14, h.seq.State().RemainingSeconds, "exactly one tick per second")
}

func TestStaleTickIsDiscarded(t *testing.T) {
	p := models.NewProgram("Plank", models.ModeSeries, models.ProgramExercise{
		ExerciseID: "ex-plank", Target: models.Target{TimeSec: 30},
	})
	h := newHarness(t, p)

	h.seq.Start()
	before := h.seq.State()

	h.seq.tick(0)

	assert.Equal(t, before, h.seq.State())
}

func TestCommandsAfterFinishAreNoOps(t *testing.T) {
	p := models.NewProgram("Quick", models.ModeSeries, models.ProgramExercise{
		ExerciseID: "ex-burpee", Target: models.Target{Reps: 5}, RestSec: intPtr(0),
	})
	h := newHarness(t, p)

	h.seq.Start()
	require.Equal(t, StatusFinished, h.seq.Advance().Status)

	for _, cmd := range []func() State{h.seq.Start, h.seq.Advance, h.seq.Pause, h.seq.Start} {
		assert.Equal(t, StatusFinished, cmd().Status)
	}
	assert.Equal(t, 1, h.rec.Calls())
	assert.Equal(t, 1, h.finished)
	_, ok := h.seq.NextExercise()
	assert.False(t, ok)
}

func TestRecorderErrorIsReported(t *testing.T) {
	p := models.NewProgram("Quick", models.ModeSeries, models.ProgramExercise{
		ExerciseID: "ex-burpee", Target: models.Target{Reps: 5}, RestSec: intPtr(0),
	})
	h := newHarness(t, p)
	h.rec.err = errors.New("disk full")

	h.seq.Start()
	st := h.seq.Advance()

	assert.Equal(t, StatusFinished, st.Status)
	assert.EqualError(t, h.lastErr, "disk full")
	assert.Equal(t, 1, h.finished)
}

func TestNextExerciseLookahead(t *testing.T) {
	t.Run("series", func(t *testing.T) {
		p := models.NewProgram("Upper", models.ModeSeries,
			models.ProgramExercise{ExerciseID: "ex-pushup", Target: models.Target{Reps: 10}, Sets: 2},
			models.ProgramExercise{ExerciseID: "ex-dip", Target: models.Target{Reps: 8}},
		)
		h := newHarness(t, p)
		h.seq.Start()

		next, ok := h.seq.NextExercise()
		require.True(t, ok)
		assert.Equal(t, "ex-pushup", next.ExerciseID, "second set comes next")

		h.seq.Advance() // rest after set 1
		h.seq.Advance() // set 2
		before := h.seq.State()
		next, ok = h.seq.NextExercise()
		require.True(t, ok)
		assert.Equal(t, "ex-dip", next.ExerciseID)
		assert.Equal(t, before, h.seq.State(), "lookahead must not move the cursor")
	})

	t.Run("rounds", func(t *testing.T) {
		p := models.NewProgram("Circuit", models.ModeSets,
			models.ProgramExercise{ExerciseID: "ex-squat", Target: models.Target{Reps: 10}, RestSec: intPtr(0)},
			models.ProgramExercise{ExerciseID: "ex-lunge", Target: models.Target{Reps: 10}, RestSec: intPtr(0)},
		).WithRounds(2, 30)
		h := newHarness(t, p)
		h.seq.Start()
		h.seq.Advance()

		next, ok := h.seq.NextExercise()
		require.True(t, ok)
		assert.Equal(t, "ex-squat", next.ExerciseID, "round wraps to the first exercise")

		st := h.seq.Advance()
		require.True(t, st.RoundRest)
		next, ok = h.seq.NextExercise()
		require.True(t, ok)
		assert.Equal(t, "ex-squat", next.ExerciseID)

		h.seq.Advance()
		h.seq.Advance()
		_, ok = h.seq.NextExercise()
		assert.False(t, ok, "last exercise of the last round has no successor")
	})
}

func TestNewRejectsInvalidPrograms(t *testing.T) {
	catalog := WithCatalog(models.DefaultCatalog())

	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrNilProgram)

	_, err = New(models.NewProgram("Empty", models.ModeSeries), nil, catalog)
	assert.ErrorIs(t, err, models.ErrNoExercises)

	_, _, err = StartSession(models.NewProgram("Ghost", models.ModeSets,
		models.ProgramExercise{ExerciseID: "ex-levitate"}), nil, catalog)
	assert.ErrorIs(t, err, models.ErrUnknownExercise)
}

func TestProgramIsSnapshotted(t *testing.T) {
	p := models.NewProgram("Push", models.ModeSeries, models.ProgramExercise{
		ExerciseID: "ex-pushup", Target: models.Target{Reps: 10}, Sets: 1, RestSec: intPtr(0),
	})
	h := newHarness(t, p)

	p.Exercises[0].Sets = 5
	h.seq.Start()
	st := h.seq.Advance()

	assert.Equal(t, StatusFinished, st.Status, "edits after start must not affect the run")
}

func TestRealClockFinishesWithoutLeaks(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := models.NewProgram("Tiny", models.ModeSeries, models.ProgramExercise{
		ExerciseID: "ex-plank", Target: models.Target{TimeSec: 1}, RestSec: intPtr(0),
	})
	done := make(chan models.Session, 1)
	rec := &fakeRecorder{}

	seq, st, err := StartSession(p, rec,
		WithLogger(log.New(io.Discard)),
		WithOnFinished(func(s models.Session, _ error) { done <- s }),
	)
	require.NoError(t, err)
	require.Equal(t, StatusWorking, st.Status)
	defer seq.Close()

	select {
	case s := <-done:
		assert.Equal(t, "Tiny", s.ProgramName)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}
	assert.Equal(t, 1, rec.Calls())
}

func TestCloseCancelsRealTimer(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := models.NewProgram("Long", models.ModeSeries, models.ProgramExercise{
		ExerciseID: "ex-plank", Target: models.Target{TimeSec: 600},
	})
	seq, _, err := StartSession(p, nil, WithLogger(log.New(io.Discard)))
	require.NoError(t, err)

	seq.Close()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 600, seq.State().RemainingSeconds)
}
