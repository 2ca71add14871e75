// ABOUTME: Supplement CRUD operations for SQLite storage.
// ABOUTME: Intake history lives in supplement_log and is purged by the journal, not here.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dojo/internal/models"
)

// CreateSupplement stores a new supplement.
func (d *DB) CreateSupplement(s *models.Supplement) error {
	_, err := d.db.Exec(`
		INSERT INTO supplements (id, name, dosage, time_label, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		s.ID.String(),
		s.Name,
		s.Dosage,
		s.Time,
		s.Notes,
		s.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create supplement: %w", err)
	}
	return nil
}

// GetSupplement retrieves a supplement by ID or ID prefix.
func (d *DB) GetSupplement(idOrPrefix string) (*models.Supplement, error) {
	id, err := d.resolveID("supplements", idOrPrefix)
	if err != nil {
		return nil, err
	}

	s, err := scanSupplement(d.db.QueryRow(`
		SELECT id, name, dosage, time_label, notes, created_at
		FROM supplements WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(idOrPrefix)
	}
	return s, err
}

// ListSupplements returns supplements in the order they were added.
func (d *DB) ListSupplements() ([]*models.Supplement, error) {
	rows, err := d.db.Query(`
		SELECT id, name, dosage, time_label, notes, created_at
		FROM supplements
		ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list supplements: %w", err)
	}
	defer rows.Close()

	var out []*models.Supplement
	for rows.Next() {
		s, err := scanSupplement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateSupplement overwrites a stored supplement, matched by its full ID.
func (d *DB) UpdateSupplement(s *models.Supplement) error {
	result, err := d.db.Exec(`
		UPDATE supplements SET name = ?, dosage = ?, time_label = ?, notes = ?
		WHERE id = ?
	`, s.Name, s.Dosage, s.Time, s.Notes, s.ID.String())
	if err != nil {
		return fmt.Errorf("update supplement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update supplement: %w", err)
	}
	if affected == 0 {
		return notFound(s.ID.String())
	}
	return nil
}

// DeleteSupplement removes a supplement by ID or prefix.
func (d *DB) DeleteSupplement(idOrPrefix string) error {
	id, err := d.resolveID("supplements", idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete supplement: %w", err)
	}

	result, err := d.db.Exec(`DELETE FROM supplements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete supplement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete supplement: %w", err)
	}
	if affected == 0 {
		return notFound(idOrPrefix)
	}
	return nil
}

func scanSupplement(row rowScanner) (*models.Supplement, error) {
	var s models.Supplement
	var idStr, createdAt string
	var notes sql.NullString

	err := row.Scan(&idStr, &s.Name, &s.Dosage, &s.Time, &notes, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan supplement: %w", err)
	}

	s.ID, _ = uuid.Parse(idStr)
	s.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if notes.Valid {
		s.Notes = &notes.String
	}
	return &s, nil
}
