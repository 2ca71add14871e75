// ABOUTME: Tests for the Markdown journal export.
// ABOUTME: Checks section headers, supplement names, notes, and the since filter.
package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/harperreed/dojo/internal/models"
)

func TestExportMarkdown(t *testing.T) {
	db := setupTestDB(t)
	_, s := populate(t, db)

	md, err := ExportMarkdown(db, nil)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}

	for _, want := range []string{
		"# Dojo Journal",
		"## Programs",
		"| Morning HIIT | sets | 2 | 3 | HIIT, Cardio |",
		"## Supplements",
		"| Creatine | 5g | Morning |",
		"### 2025-01-31",
		"- Hydration: 1750 ml",
		"- Supplements: " + s.Name,
		"1200.0 kg",
		"5.00 km",
		"## Notes",
		"### Leg day (2025-01-31, training, mood 4/5)",
		"Squats felt smooth",
		"Tags: legs, breathing",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q", want)
		}
	}
}

func TestExportMarkdownSince(t *testing.T) {
	db := setupTestDB(t)
	for _, date := range []string{"2025-01-01", "2025-02-01"} {
		if err := db.UpsertDay(sampleDay(date)); err != nil {
			t.Fatalf("UpsertDay failed: %v", err)
		}
	}

	since := time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local)
	md, err := ExportMarkdown(db, &since)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	if strings.Contains(md, "### 2025-01-01") {
		t.Error("Day before since should be filtered out")
	}
	if !strings.Contains(md, "### 2025-02-01") {
		t.Error("Day after since should be included")
	}
}

func TestExportMarkdownNotesSince(t *testing.T) {
	store := setupTestBadger(t)
	for _, n := range []*models.Note{
		models.NewNote("2025-01-01", models.CategoryPhilosophy, "", "Old thought"),
		models.NewNote("2025-02-01", models.CategoryTraining, "Intervals", "8x400m"),
	} {
		if err := store.CreateNote(n); err != nil {
			t.Fatalf("CreateNote failed: %v", err)
		}
	}

	since := time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local)
	md, err := ExportMarkdown(store, &since)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	if strings.Contains(md, "Old thought") {
		t.Error("Note before since should be filtered out")
	}
	if !strings.Contains(md, "### Intervals (2025-02-01, training)") {
		t.Errorf("Note after since missing:\n%s", md)
	}
}

func TestExportMarkdownSkipsStaleSupplements(t *testing.T) {
	store := setupTestBadger(t)
	day := sampleDay("2025-01-31")
	day.SupplementLog = map[string]bool{"deleted-supplement": true}
	if err := store.UpsertDay(day); err != nil {
		t.Fatalf("UpsertDay failed: %v", err)
	}

	md, err := ExportMarkdown(store, nil)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	if strings.Contains(md, "- Supplements:") {
		t.Error("Unknown supplement ids should not be listed")
	}
}
