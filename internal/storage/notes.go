// ABOUTME: Note CRUD operations for SQLite storage.
// ABOUTME: Tags are stored as a JSON array; mood is nullable.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/dojo/internal/models"
)

const noteColumns = `id, date, category, title, body, tags, mood, created_at`

// CreateNote stores a new note.
func (d *DB) CreateNote(n *models.Note) error {
	tags, err := encodeNoteTags(n)
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	_, err = d.db.Exec(`
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		n.ID.String(),
		n.Date,
		string(n.Category),
		n.Title,
		n.Text,
		tags,
		nullableInt(n.Mood),
		n.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// GetNote retrieves a note by ID or ID prefix.
func (d *DB) GetNote(idOrPrefix string) (*models.Note, error) {
	id, err := d.resolveID("notes", idOrPrefix)
	if err != nil {
		return nil, err
	}

	n, err := scanNote(d.db.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(idOrPrefix)
	}
	return n, err
}

// ListNotes returns notes newest date first.
func (d *DB) ListNotes() ([]*models.Note, error) {
	rows, err := d.db.Query(`
		SELECT ` + noteColumns + `
		FROM notes
		ORDER BY date DESC, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []*models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UpdateNote overwrites a stored note, matched by its full ID.
func (d *DB) UpdateNote(n *models.Note) error {
	tags, err := encodeNoteTags(n)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	result, err := d.db.Exec(`
		UPDATE notes SET date = ?, category = ?, title = ?, body = ?, tags = ?, mood = ?
		WHERE id = ?
	`, n.Date, string(n.Category), n.Title, n.Text, tags, nullableInt(n.Mood), n.ID.String())
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if affected == 0 {
		return notFound(n.ID.String())
	}
	return nil
}

// DeleteNote removes a note by ID or prefix.
func (d *DB) DeleteNote(idOrPrefix string) error {
	id, err := d.resolveID("notes", idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	result, err := d.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if affected == 0 {
		return notFound(idOrPrefix)
	}
	return nil
}

func scanNote(row rowScanner) (*models.Note, error) {
	var n models.Note
	var idStr, category, tags, createdAt string
	var mood sql.NullInt64

	err := row.Scan(&idStr, &n.Date, &category, &n.Title, &n.Text, &tags, &mood, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan note: %w", err)
	}

	n.ID, _ = uuid.Parse(idStr)
	n.Category = models.NoteCategory(category)
	n.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if mood.Valid {
		m := int(mood.Int64)
		n.Mood = &m
	}
	if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil {
		return nil, fmt.Errorf("decode note tags: %w", err)
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return &n, nil
}

func encodeNoteTags(n *models.Note) (string, error) {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
