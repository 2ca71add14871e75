// ABOUTME: Tests for the journal service against an in-memory Badger store.
// ABOUTME: Covers lazy day creation, empty-day deletion, supplement purge, locking, and concurrency.
package journal

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dojo/internal/models"
	"github.com/harperreed/dojo/internal/storage"
)

var today = time.Date(2025, 1, 31, 9, 0, 0, 0, time.Local)

func newService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.OpenBadgerStore("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(store,
		WithLogger(log.New(io.Discard)),
		WithNow(func() time.Time { return today }),
	)
}

func addSupplement(t *testing.T, s *Service, name string) *models.Supplement {
	t.Helper()
	sup := models.NewSupplement(name, "1 cap", "Morning")
	require.NoError(t, s.AddSupplement(sup))
	return sup
}

func assertNoDay(t *testing.T, s *Service, date string) {
	t.Helper()
	_, err := s.Store().GetDay(date)
	assert.True(t, errors.Is(err, storage.ErrNotFound), "day %s should not be stored, got %v", date, err)
}

func TestAppendSessionCreatesDayLazily(t *testing.T) {
	s := newService(t)
	assertNoDay(t, s, "2025-01-31")

	first := models.NewSession("Push", today, 150)
	second := models.NewSession("Pull", today.Add(time.Hour), 150)

	_, err := s.AppendSession("2025-01-31", first)
	require.NoError(t, err)
	log, err := s.AppendSession("2025-01-31", second)
	require.NoError(t, err)

	require.Len(t, log.Sessions, 2)
	assert.Equal(t, first.ID, log.Sessions[0].ID)
	assert.Equal(t, second.ID, log.Sessions[1].ID)

	stored, err := s.Day("2025-01-31")
	require.NoError(t, err)
	assert.Len(t, stored.Sessions, 2)
}

func TestAppendSessionRejectsBadDate(t *testing.T) {
	s := newService(t)
	_, err := s.AppendSession("Jan 31", models.NewSession("Push", today, 150))
	assert.ErrorIs(t, err, models.ErrInvalidDate)
}

func TestHydrationFloorsAtZeroAndDeletesEmptyDay(t *testing.T) {
	s := newService(t)

	log, err := s.AdjustHydration("2025-01-31", 500)
	require.NoError(t, err)
	assert.Equal(t, 500, log.Hydration)

	log, err = s.AdjustHydration("2025-01-31", -1000)
	require.NoError(t, err)
	assert.Equal(t, 0, log.Hydration)
	assertNoDay(t, s, "2025-01-31")

	_, err = s.AdjustHydration("2025-02-01", -250)
	require.NoError(t, err)
	assertNoDay(t, s, "2025-02-01")
}

func TestToggleSupplement(t *testing.T) {
	s := newService(t)
	sup := addSupplement(t, s, "Creatine")

	log, err := s.ToggleSupplement("2025-01-31", sup.ID.String()[:8])
	require.NoError(t, err)
	assert.True(t, log.SupplementLog[sup.Key()])

	log, err = s.ToggleSupplement("2025-01-31", sup.ID.String())
	require.NoError(t, err)
	assert.False(t, log.SupplementLog[sup.Key()])
	assertNoDay(t, s, "2025-01-31")
}

func TestToggleUnknownSupplement(t *testing.T) {
	s := newService(t)
	_, err := s.ToggleSupplement("2025-01-31", "deadbeef")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assertNoDay(t, s, "2025-01-31")
}

func TestSetSupplementKeepsOtherData(t *testing.T) {
	s := newService(t)
	sup := addSupplement(t, s, "Magnesium")
	_, err := s.AdjustHydration("2025-01-31", 250)
	require.NoError(t, err)

	_, err = s.SetSupplement("2025-01-31", sup.ID.String(), true)
	require.NoError(t, err)
	log, err := s.SetSupplement("2025-01-31", sup.ID.String(), false)
	require.NoError(t, err)

	assert.Equal(t, 250, log.Hydration)
	taken, present := log.SupplementLog[sup.Key()]
	assert.True(t, present)
	assert.False(t, taken)
}

func TestDeleteSupplementPurgesEveryDay(t *testing.T) {
	s := newService(t)
	keep := addSupplement(t, s, "Vitamin D")
	gone := addSupplement(t, s, "Creatine")

	// Day 1 only has the deleted supplement: it must disappear.
	_, err := s.SetSupplement("2025-01-29", gone.ID.String(), true)
	require.NoError(t, err)
	// Day 2 has other data: it must survive without the key.
	_, err = s.SetSupplement("2025-01-30", gone.ID.String(), true)
	require.NoError(t, err)
	_, err = s.SetSupplement("2025-01-30", keep.ID.String(), true)
	require.NoError(t, err)
	// Day 3 never saw the supplement.
	_, err = s.AdjustHydration("2025-01-31", 1000)
	require.NoError(t, err)

	deleted, touched, err := s.DeleteSupplement(gone.ID.String()[:8])
	require.NoError(t, err)
	assert.Equal(t, gone.ID, deleted.ID)
	assert.Equal(t, 2, touched)

	assertNoDay(t, s, "2025-01-29")
	day2, err := s.Day("2025-01-30")
	require.NoError(t, err)
	assert.NotContains(t, day2.SupplementLog, gone.Key())
	assert.True(t, day2.SupplementLog[keep.Key()])

	day3, err := s.Day("2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, 1000, day3.Hydration)

	for _, d := range mustDays(t, s) {
		assert.NotContains(t, d.SupplementLog, gone.Key(), "day %s", d.Date)
	}
}

// failingDayStore fails UpsertDay for one date while broken.
type failingDayStore struct {
	storage.Repository
	failDate string
	broken   bool
}

func (f *failingDayStore) UpsertDay(log *models.DailyLog) error {
	if f.broken && log.Date == f.failDate {
		return errors.New("disk full")
	}
	return f.Repository.UpsertDay(log)
}

func TestDeleteSupplementFailedPurgeCanBeRetried(t *testing.T) {
	base, err := storage.OpenBadgerStore("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = base.Close() })
	store := &failingDayStore{Repository: base, failDate: "2025-01-30"}
	s := New(store, WithLogger(log.New(io.Discard)), WithNow(func() time.Time { return today }))

	sup := addSupplement(t, s, "Creatine")
	for _, date := range []string{"2025-01-29", "2025-01-30"} {
		_, err := s.AdjustHydration(date, 500)
		require.NoError(t, err)
		_, err = s.SetSupplement(date, sup.ID.String(), true)
		require.NoError(t, err)
	}

	store.broken = true
	_, _, err = s.DeleteSupplement("Creatine")
	require.Error(t, err)

	// The record survives so the purge can be finished later.
	kept, err := s.Supplement("Creatine")
	require.NoError(t, err)
	assert.Equal(t, sup.ID, kept.ID)

	store.broken = false
	deleted, touched, err := s.DeleteSupplement("Creatine")
	require.NoError(t, err)
	assert.Equal(t, sup.ID, deleted.ID)
	assert.Equal(t, 1, touched)

	for _, d := range mustDays(t, s) {
		assert.NotContains(t, d.SupplementLog, sup.Key(), "day %s", d.Date)
	}
	_, err = s.Supplement("Creatine")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// gatedListStore blocks the first ListDays call until released.
type gatedListStore struct {
	storage.Repository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
	created atomic.Bool
}

func (g *gatedListStore) ListDays() ([]*models.DailyLog, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.Repository.ListDays()
}

func (g *gatedListStore) CreateSupplement(sup *models.Supplement) error {
	g.created.Store(true)
	return g.Repository.CreateSupplement(sup)
}

func TestAddSupplementWaitsForLevelSnapshot(t *testing.T) {
	base, err := storage.OpenBadgerStore("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = base.Close() })
	store := &gatedListStore{
		Repository: base,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	s := New(store, WithLogger(log.New(io.Discard)), WithNow(func() time.Time { return today }))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := s.Level()
		assert.NoError(t, err)
	}()
	<-store.entered
	go func() {
		defer wg.Done()
		assert.NoError(t, s.AddSupplement(models.NewSupplement("Creatine", "5g", "")))
	}()

	assert.Never(t, store.created.Load, 50*time.Millisecond, 5*time.Millisecond,
		"AddSupplement wrote while a level snapshot was being read")
	close(store.release)
	wg.Wait()
	assert.True(t, store.created.Load())
}

func TestAddSupplementValidates(t *testing.T) {
	s := newService(t)
	err := s.AddSupplement(models.NewSupplement("", "5g", "Morning"))
	assert.ErrorIs(t, err, models.ErrInvalidSupplement)
	err = s.AddSupplement(models.NewSupplement("Creatine", " ", "Morning"))
	assert.ErrorIs(t, err, models.ErrInvalidSupplement)
}

func TestSaveDay(t *testing.T) {
	s := newService(t)
	_, err := s.AppendSession("2025-01-31", models.NewSession("Push", today, 150))
	require.NoError(t, err)

	edited := models.NewDailyLog("2025-01-31")
	edited.Hydration = 2000
	log, err := s.SaveDay(edited)
	require.NoError(t, err)
	assert.Empty(t, log.Sessions)
	assert.Equal(t, 2000, log.Hydration)

	_, err = s.SaveDay(models.NewDailyLog("2025-01-31"))
	require.NoError(t, err)
	assertNoDay(t, s, "2025-01-31")
}

func TestDeleteSession(t *testing.T) {
	s := newService(t)
	sess := models.NewSession("Push", today, 150)
	_, err := s.AppendSession("2025-01-31", sess)
	require.NoError(t, err)

	_, err = s.DeleteSession("2025-01-31", "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.DeleteSession("2025-01-31", sess.ID[:10])
	require.NoError(t, err)
	assertNoDay(t, s, "2025-01-31")
}

func TestDeleteDayAndReset(t *testing.T) {
	s := newService(t)
	for _, date := range []string{"2025-01-29", "2025-01-30", "2025-01-31"} {
		_, err := s.AdjustHydration(date, 500)
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteDay("2025-01-29"))
	assert.ErrorIs(t, s.DeleteDay("2025-01-29"), storage.ErrNotFound)

	n, err := s.Reset()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, mustDays(t, s))
}

func TestDayMissingIsEmpty(t *testing.T) {
	s := newService(t)
	log, err := s.Day("2024-06-01")
	require.NoError(t, err)
	assert.True(t, log.IsEmpty())
	assert.Equal(t, "2024-06-01", log.Date)
}

func TestLevelFromJournal(t *testing.T) {
	s := newService(t)
	sup := addSupplement(t, s, "Creatine")

	_, err := s.AppendSession("2025-01-31", models.NewSession("Push", today, 150))
	require.NoError(t, err)
	_, err = s.AdjustHydration("2025-01-31", 3000)
	require.NoError(t, err)
	_, err = s.ToggleSupplement("2025-01-31", sup.ID.String())
	require.NoError(t, err)

	info, err := s.Level()
	require.NoError(t, err)
	// 150 + 15 + 5 = 170: level 1 needs 100, leaving 70 of 150.
	assert.Equal(t, 170, info.TotalXP)
	assert.Equal(t, 2, info.Level)
	assert.Equal(t, 70, info.CurrentLevelXP)
	assert.Equal(t, 150, info.XPForNextLevel)

	b, err := s.Breakdown("2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, 150, b.SessionXP)
	assert.Equal(t, 15, b.HydrationXP)
	assert.Equal(t, 5, b.SupplementXP)
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	s := newService(t)
	const writers = 40

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := s.AppendSession("2025-01-31", models.NewSession(fmt.Sprintf("Run %d", i), today, 150))
				assert.NoError(t, err)
				return
			}
			_, err := s.AdjustHydration("2025-01-31", 100)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	log, err := s.Day("2025-01-31")
	require.NoError(t, err)
	assert.Len(t, log.Sessions, writers/2)
	assert.Equal(t, 100*writers/2, log.Hydration)
}

func TestProgramsThroughJournal(t *testing.T) {
	s := newService(t)
	p := models.NewProgram("Legs", models.ModeSeries, models.ProgramExercise{
		ExerciseID: "ex-squat", Target: models.Target{Reps: 10}, Sets: 3,
	})
	require.NoError(t, s.AddProgram(p, models.DefaultCatalog()))

	bad := models.NewProgram("Ghost", models.ModeSeries, models.ProgramExercise{ExerciseID: "ex-nope"})
	assert.ErrorIs(t, s.AddProgram(bad, models.DefaultCatalog()), models.ErrUnknownExercise)

	got, err := s.Program("legs")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	deleted, err := s.DeleteProgram(p.ID.String()[:8])
	require.NoError(t, err)
	assert.Equal(t, "Legs", deleted.Name)

	programs, err := s.Programs()
	require.NoError(t, err)
	assert.Empty(t, programs)
}

func mustDays(t *testing.T, s *Service) []*models.DailyLog {
	t.Helper()
	days, err := s.Days()
	require.NoError(t, err)
	return days
}

func TestToggleSupplementByName(t *testing.T) {
	s := newService(t)
	sup := addSupplement(t, s, "Creatine")

	log, err := s.ToggleSupplement("2025-01-31", "creatine")
	require.NoError(t, err)
	assert.True(t, log.SupplementLog[sup.Key()])
}
