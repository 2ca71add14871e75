// ABOUTME: Export and import functionality for dojo data.
// ABOUTME: Supports JSON and YAML round trips plus a Markdown journal export; imports are checked first.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/dojo/internal/models"
)

// ExportVersion is written into every export.
const ExportVersion = "1.0"

// ExportData represents the full export format for dojo data.
type ExportData struct {
	Version     string               `json:"version" yaml:"version"`
	ExportedAt  time.Time            `json:"exported_at" yaml:"exported_at"`
	Tool        string               `json:"tool" yaml:"tool"`
	Programs    []*models.Program    `json:"programs" yaml:"programs"`
	Supplements []*models.Supplement `json:"supplements" yaml:"supplements"`
	Days        []*models.DailyLog   `json:"days" yaml:"days"`
	Notes       []*models.Note       `json:"notes" yaml:"notes"`
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	return collectData(d)
}

// ImportData imports data from an export file.
func (d *DB) ImportData(data *ExportData) error {
	return importData(d, data)
}

func collectData(r Repository) (*ExportData, error) {
	programs, err := r.ListPrograms()
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	supplements, err := r.ListSupplements()
	if err != nil {
		return nil, fmt.Errorf("list supplements: %w", err)
	}
	days, err := r.ListDays()
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	notes, err := r.ListNotes()
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return &ExportData{
		Version:     ExportVersion,
		ExportedAt:  time.Now(),
		Tool:        "dojo",
		Programs:    programs,
		Supplements: supplements,
		Days:        days,
		Notes:       notes,
	}, nil
}

// importData writes every record into r. Existing programs, supplements, and
// notes with the same ID are overwritten, so importing twice is harmless.
//
// Days get the same treatment the journal gives them: the whole file is
// checked before anything is written, intake for supplements that exist
// neither in the file nor in r is dropped, and days left empty are not
// stored. data.Days is trimmed to the days actually written.
func importData(r Repository, data *ExportData) error {
	if err := checkImport(data); err != nil {
		return err
	}

	for _, p := range data.Programs {
		if err := upsertProgram(r, p); err != nil {
			return fmt.Errorf("import program %s: %w", p.Name, err)
		}
	}
	for _, s := range data.Supplements {
		if err := upsertSupplement(r, s); err != nil {
			return fmt.Errorf("import supplement %s: %w", s.Name, err)
		}
	}
	for _, n := range data.Notes {
		if err := upsertNote(r, n); err != nil {
			return fmt.Errorf("import note %s: %w", n.ID, err)
		}
	}

	// Supplements were written above, so this is the union of imported and
	// existing IDs.
	supplements, err := r.ListSupplements()
	if err != nil {
		return fmt.Errorf("list supplements: %w", err)
	}
	known := make(map[string]bool, len(supplements))
	for _, s := range supplements {
		known[s.Key()] = true
	}

	kept := make([]*models.DailyLog, 0, len(data.Days))
	for _, day := range data.Days {
		if day == nil {
			continue
		}
		day.Normalize()
		for id := range day.SupplementLog {
			if !known[id] {
				delete(day.SupplementLog, id)
			}
		}
		if day.IsEmpty() {
			// An empty day replaces whatever was stored by removing it.
			if err := r.DeleteDay(day.Date); err != nil && !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("import day %s: %w", day.Date, err)
			}
			continue
		}
		if err := r.UpsertDay(day); err != nil {
			return fmt.Errorf("import day %s: %w", day.Date, err)
		}
		kept = append(kept, day)
	}
	data.Days = kept
	return nil
}

// checkImport rejects a file carrying records the store must never hold.
func checkImport(data *ExportData) error {
	for _, p := range data.Programs {
		if p == nil {
			return fmt.Errorf("import program: %w: empty entry", models.ErrInvalidProgram)
		}
	}
	for _, s := range data.Supplements {
		if s == nil {
			return fmt.Errorf("import supplement: %w: empty entry", models.ErrInvalidSupplement)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("import supplement %s: %w", s.ID, err)
		}
	}
	for _, day := range data.Days {
		if day == nil {
			continue
		}
		if _, err := models.ParseDateKey(day.Date); err != nil {
			return fmt.Errorf("import day: %w", err)
		}
		for _, sess := range day.Sessions {
			if err := sess.Validate(); err != nil {
				return fmt.Errorf("import day %s session %s: %w", day.Date, sess.ID, err)
			}
		}
	}
	for _, n := range data.Notes {
		if n == nil {
			return fmt.Errorf("import note: %w: empty entry", models.ErrInvalidNote)
		}
		if err := n.Validate(); err != nil {
			return fmt.Errorf("import note %s: %w", n.ID, err)
		}
	}
	return nil
}

func upsertProgram(r Repository, p *models.Program) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	err := r.UpdateProgram(p)
	if errors.Is(err, ErrNotFound) {
		return r.CreateProgram(p)
	}
	return err
}

func upsertSupplement(r Repository, s *models.Supplement) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	err := r.UpdateSupplement(s)
	if errors.Is(err, ErrNotFound) {
		return r.CreateSupplement(s)
	}
	return err
}

func upsertNote(r Repository, n *models.Note) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	err := r.UpdateNote(n)
	if errors.Is(err, ErrNotFound) {
		return r.CreateNote(n)
	}
	return err
}

// ExportJSON exports all data as JSON.
func ExportJSON(r Repository) ([]byte, error) {
	data, err := r.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML.
func ExportYAML(r Repository) ([]byte, error) {
	data, err := r.GetAllData()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}

// ParseExport decodes a JSON or YAML export. JSON is detected by a leading brace.
func ParseExport(raw []byte) (*ExportData, error) {
	var data ExportData
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("unmarshal JSON: %w", err)
		}
	} else if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal YAML: %w", err)
	}
	return &data, nil
}

// Import decodes raw and imports it into r.
func Import(r Repository, raw []byte) (*ExportData, error) {
	data, err := ParseExport(raw)
	if err != nil {
		return nil, err
	}
	if err := r.ImportData(data); err != nil {
		return nil, err
	}
	return data, nil
}
