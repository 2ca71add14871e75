// ABOUTME: Tests for export and import functionality.
// ABOUTME: Verifies JSON and YAML exports round-trip through ParseExport and Import.
package storage

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/dojo/internal/models"
)

func populate(t *testing.T, r Repository) (*models.Program, *models.Supplement) {
	t.Helper()

	p := sampleProgram()
	if err := r.CreateProgram(p); err != nil {
		t.Fatalf("CreateProgram failed: %v", err)
	}
	s := models.NewSupplement("Creatine", "5g", "Morning")
	if err := r.CreateSupplement(s); err != nil {
		t.Fatalf("CreateSupplement failed: %v", err)
	}
	day := sampleDay("2025-01-31")
	day.SupplementLog = map[string]bool{s.Key(): true}
	if err := r.UpsertDay(day); err != nil {
		t.Fatalf("UpsertDay failed: %v", err)
	}
	note := models.NewNote("2025-01-31", models.CategoryTraining, "Leg day", "Squats felt smooth").
		WithTags("legs", "breathing").WithMood(4)
	if err := r.CreateNote(note); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	return p, s
}

func TestExportJSON(t *testing.T) {
	db := setupTestDB(t)
	populate(t, db)

	data, err := ExportJSON(db)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if export.Version != ExportVersion {
		t.Errorf("Expected version %s, got %s", ExportVersion, export.Version)
	}
	if export.Tool != "dojo" {
		t.Errorf("Expected tool dojo, got %s", export.Tool)
	}
	if len(export.Programs) != 1 || len(export.Supplements) != 1 || len(export.Days) != 1 {
		t.Errorf("Unexpected export sizes: %d programs, %d supplements, %d days",
			len(export.Programs), len(export.Supplements), len(export.Days))
	}
	if !strings.Contains(string(data), `"supplement_log"`) {
		t.Errorf("JSON should use snake_case field names")
	}
}

func TestExportYAML(t *testing.T) {
	store := setupTestBadger(t)
	populate(t, store)

	data, err := ExportYAML(store)
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to parse YAML: %v", err)
	}
	for _, key := range []string{"version", "programs", "supplements", "days"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("YAML export missing %q", key)
		}
	}
}

func TestImportRoundTrip(t *testing.T) {
	formats := map[string]func(Repository) ([]byte, error){
		"json": ExportJSON,
		"yaml": ExportYAML,
	}

	for name, export := range formats {
		t.Run(name, func(t *testing.T) {
			src := setupTestDB(t)
			p, s := populate(t, src)

			raw, err := export(src)
			if err != nil {
				t.Fatalf("export failed: %v", err)
			}

			dst := setupTestBadger(t)
			data, err := Import(dst, raw)
			if err != nil {
				t.Fatalf("Import failed: %v", err)
			}
			if len(data.Days) != 1 {
				t.Errorf("Expected 1 day parsed, got %d", len(data.Days))
			}

			got, err := dst.GetProgram(p.ID.String())
			if err != nil {
				t.Fatalf("imported program missing: %v", err)
			}
			if got.Exercises[0].RestSec == nil || *got.Exercises[0].RestSec != 0 {
				t.Errorf("Explicit zero rest lost in %s round trip", name)
			}
			day, err := dst.GetDay("2025-01-31")
			if err != nil {
				t.Fatalf("imported day missing: %v", err)
			}
			if !day.SupplementLog[s.Key()] {
				t.Errorf("Supplement intake lost in %s round trip", name)
			}
			if day.Sessions[0].Volume() != 1200 {
				t.Errorf("Session volume lost in %s round trip", name)
			}
			notes, err := dst.ListNotes()
			if err != nil {
				t.Fatalf("ListNotes failed: %v", err)
			}
			if len(notes) != 1 || notes[0].Title != "Leg day" || notes[0].Mood == nil || *notes[0].Mood != 4 {
				t.Errorf("Note lost in %s round trip: %+v", name, notes)
			}
		})
	}
}

func TestImportTwiceIsIdempotent(t *testing.T) {
	src := setupTestBadger(t)
	populate(t, src)
	raw, err := ExportJSON(src)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	dst := setupTestDB(t)
	for i := 0; i < 2; i++ {
		if _, err := Import(dst, raw); err != nil {
			t.Fatalf("Import #%d failed: %v", i+1, err)
		}
	}

	programs, _ := dst.ListPrograms()
	supplements, _ := dst.ListSupplements()
	notes, _ := dst.ListNotes()
	if len(programs) != 1 || len(supplements) != 1 || len(notes) != 1 {
		t.Errorf("Re-import duplicated records: %d programs, %d supplements, %d notes",
			len(programs), len(supplements), len(notes))
	}
}

func TestParseExportRejectsGarbage(t *testing.T) {
	if _, err := ParseExport([]byte("{not json")); err == nil {
		t.Error("Expected JSON error")
	}
	if _, err := ParseExport([]byte("version: [unclosed")); err == nil {
		t.Error("Expected YAML error")
	}
}

func TestImportCleansDays(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r Repository) {
		existing := models.NewSupplement("Magnesium", "300mg", "Evening")
		if err := r.CreateSupplement(existing); err != nil {
			t.Fatalf("CreateSupplement failed: %v", err)
		}
		// A stored day that the file replaces with an empty one.
		stale := models.NewDailyLog("2025-02-01")
		stale.Hydration = 500
		if err := r.UpsertDay(stale); err != nil {
			t.Fatalf("UpsertDay failed: %v", err)
		}

		imported := models.NewSupplement("Creatine", "5g", "Morning")
		data := &ExportData{
			Supplements: []*models.Supplement{imported},
			Days: []*models.DailyLog{
				{Date: "2025-02-01"},
				{Date: "2025-02-02", SupplementLog: map[string]bool{"ghost-id": true}},
				{Date: "2025-02-03", Hydration: 1000, SupplementLog: map[string]bool{
					"ghost-id":      true,
					imported.Key(): true,
					existing.Key(): true,
				}},
			},
		}
		if err := r.ImportData(data); err != nil {
			t.Fatalf("ImportData failed: %v", err)
		}

		for _, date := range []string{"2025-02-01", "2025-02-02"} {
			if _, err := r.GetDay(date); !errors.Is(err, ErrNotFound) {
				t.Errorf("GetDay(%s) = %v, want ErrNotFound for an empty day", date, err)
			}
		}
		day, err := r.GetDay("2025-02-03")
		if err != nil {
			t.Fatalf("GetDay failed: %v", err)
		}
		if _, ok := day.SupplementLog["ghost-id"]; ok {
			t.Error("intake for an unknown supplement was kept")
		}
		if !day.SupplementLog[imported.Key()] || !day.SupplementLog[existing.Key()] {
			t.Errorf("intake for known supplements lost: %v", day.SupplementLog)
		}
		if len(data.Days) != 1 || data.Days[0].Date != "2025-02-03" {
			t.Errorf("data.Days should hold only the stored day, got %d", len(data.Days))
		}
	})
}

func TestImportRejectsInvalidSessions(t *testing.T) {
	neg := -2.5
	vol, km := 800.0, 4.0
	tests := []struct {
		name    string
		session models.Session
	}{
		{name: "negative xp", session: models.Session{ID: "s1", ProgramName: "Push", XPGained: -50}},
		{name: "negative volume", session: models.Session{ID: "s2", ProgramName: "Push", XPGained: 150, TotalVolumeKg: &neg}},
		{name: "negative distance", session: models.Session{ID: "s3", ProgramName: "Run", XPGained: 150, DistanceKm: &neg}},
		{name: "volume and distance", session: models.Session{ID: "s4", ProgramName: "Brick", XPGained: 150, TotalVolumeKg: &vol, DistanceKm: &km}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forEachBackend(t, func(t *testing.T, r Repository) {
				data := &ExportData{
					Supplements: []*models.Supplement{models.NewSupplement("Creatine", "5g", "")},
					Days: []*models.DailyLog{
						{Date: "2025-02-03", Hydration: 500},
						{Date: "2025-02-04", Sessions: []models.Session{tt.session}},
					},
				}
				err := r.ImportData(data)
				if !errors.Is(err, models.ErrInvalidSession) {
					t.Fatalf("ImportData() = %v, want ErrInvalidSession", err)
				}

				days, _ := r.ListDays()
				supplements, _ := r.ListSupplements()
				if len(days) != 0 || len(supplements) != 0 {
					t.Errorf("rejected import wrote %d days and %d supplements", len(days), len(supplements))
				}
			})
		})
	}
}

func TestImportRejectsInvalidRecords(t *testing.T) {
	db := setupTestDB(t)

	if err := db.ImportData(&ExportData{Days: []*models.DailyLog{{Date: "02/03/2025", Hydration: 1}}}); !errors.Is(err, models.ErrInvalidDate) {
		t.Errorf("bad date: got %v, want ErrInvalidDate", err)
	}
	badNote := models.NewNote("2025-02-03", models.CategoryTraining, "", "Ran").WithMood(9)
	if err := db.ImportData(&ExportData{Notes: []*models.Note{badNote}}); !errors.Is(err, models.ErrInvalidNote) {
		t.Errorf("bad note: got %v, want ErrInvalidNote", err)
	}
	if err := db.ImportData(&ExportData{Supplements: []*models.Supplement{{Name: "Nameless dose"}}}); !errors.Is(err, models.ErrInvalidSupplement) {
		t.Errorf("bad supplement: got %v, want ErrInvalidSupplement", err)
	}
}
