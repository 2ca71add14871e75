// ABOUTME: Program CRUD operations for SQLite storage.
// ABOUTME: Exercises live in program_exercises and are replaced wholesale on update.
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

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const programColumns = `id, name, mode, rounds, rest_between_rounds_sec, category, equipment, est_duration_min, intensity, created_at`

// CreateProgram stores a new program and its exercises.
func (d *DB) CreateProgram(p *models.Program) error {
	category, equipment, err := encodeTags(p)
	if err != nil {
		return fmt.Errorf("create program: %w", err)
	}

	return d.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO programs (`+programColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			p.ID.String(),
			p.Name,
			string(p.Mode),
			p.Rounds,
			p.RestBetweenRoundsSec,
			category,
			equipment,
			p.EstDurationMin,
			p.Intensity,
			p.CreatedAt.Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("create program: %w", err)
		}
		return insertExercises(tx, p)
	})
}

// GetProgram retrieves a program by ID or ID prefix.
func (d *DB) GetProgram(idOrPrefix string) (*models.Program, error) {
	id, err := d.resolveID("programs", idOrPrefix)
	if err != nil {
		return nil, err
	}

	p, err := scanProgram(d.db.QueryRow(`SELECT `+programColumns+` FROM programs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(idOrPrefix)
	}
	if err != nil {
		return nil, err
	}

	exercises, err := d.loadExercises(`WHERE program_id = ?`, id)
	if err != nil {
		return nil, err
	}
	p.Exercises = exercises[id]
	return p, nil
}

// ListPrograms returns all programs sorted by name.
func (d *DB) ListPrograms() ([]*models.Program, error) {
	rows, err := d.db.Query(`SELECT ` + programColumns + ` FROM programs ORDER BY name COLLATE NOCASE ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}

	var programs []*models.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	exercises, err := d.loadExercises("")
	if err != nil {
		return nil, err
	}
	for _, p := range programs {
		p.Exercises = exercises[p.ID.String()]
	}
	return programs, nil
}

// UpdateProgram overwrites a stored program, matched by its full ID.
func (d *DB) UpdateProgram(p *models.Program) error {
	category, equipment, err := encodeTags(p)
	if err != nil {
		return fmt.Errorf("update program: %w", err)
	}

	return d.inTx(func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			UPDATE programs SET
				name = ?, mode = ?, rounds = ?, rest_between_rounds_sec = ?,
				category = ?, equipment = ?, est_duration_min = ?, intensity = ?
			WHERE id = ?
		`,
			p.Name,
			string(p.Mode),
			p.Rounds,
			p.RestBetweenRoundsSec,
			category,
			equipment,
			p.EstDurationMin,
			p.Intensity,
			p.ID.String(),
		)
		if err != nil {
			return fmt.Errorf("update program: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update program: %w", err)
		}
		if affected == 0 {
			return notFound(p.ID.String())
		}

		if _, err := tx.Exec(`DELETE FROM program_exercises WHERE program_id = ?`, p.ID.String()); err != nil {
			return fmt.Errorf("clear program exercises: %w", err)
		}
		return insertExercises(tx, p)
	})
}

// DeleteProgram removes a program and its exercises (cascade delete).
func (d *DB) DeleteProgram(idOrPrefix string) error {
	id, err := d.resolveID("programs", idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}

	result, err := d.db.Exec(`DELETE FROM programs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	if affected == 0 {
		return notFound(idOrPrefix)
	}
	return nil
}

func insertExercises(tx *sql.Tx, p *models.Program) error {
	for i, e := range p.Exercises {
		_, err := tx.Exec(`
			INSERT INTO program_exercises (program_id, position, exercise_id, target_reps, target_time_sec, sets, rest_sec)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			p.ID.String(),
			i,
			e.ExerciseID,
			e.Target.Reps,
			e.Target.TimeSec,
			e.Sets,
			e.RestSec,
		)
		if err != nil {
			return fmt.Errorf("insert program exercise %d: %w", i+1, err)
		}
	}
	return nil
}

// loadExercises returns exercises grouped by program ID, in program order.
func (d *DB) loadExercises(where string, args ...any) (map[string][]models.ProgramExercise, error) {
	query := `
		SELECT program_id, exercise_id, target_reps, target_time_sec, sets, rest_sec
		FROM program_exercises ` + where + `
		ORDER BY program_id, position ASC
	`
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list program exercises: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.ProgramExercise)
	for rows.Next() {
		var programID string
		var e models.ProgramExercise
		var rest sql.NullInt64

		if err := rows.Scan(&programID, &e.ExerciseID, &e.Target.Reps, &e.Target.TimeSec, &e.Sets, &rest); err != nil {
			return nil, fmt.Errorf("scan program exercise: %w", err)
		}
		if rest.Valid {
			r := int(rest.Int64)
			e.RestSec = &r
		}
		out[programID] = append(out[programID], e)
	}
	return out, rows.Err()
}

func scanProgram(row rowScanner) (*models.Program, error) {
	var p models.Program
	var idStr, mode, category, equipment, createdAt string
	var roundRest sql.NullInt64

	err := row.Scan(&idStr, &p.Name, &mode, &p.Rounds, &roundRest, &category, &equipment,
		&p.EstDurationMin, &p.Intensity, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan program: %w", err)
	}

	p.ID, _ = uuid.Parse(idStr)
	p.Mode = models.Mode(mode)
	p.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if roundRest.Valid {
		r := int(roundRest.Int64)
		p.RestBetweenRoundsSec = &r
	}
	if err := json.Unmarshal([]byte(category), &p.Category); err != nil {
		return nil, fmt.Errorf("decode program category: %w", err)
	}
	if err := json.Unmarshal([]byte(equipment), &p.Equipment); err != nil {
		return nil, fmt.Errorf("decode program equipment: %w", err)
	}
	if len(p.Category) == 0 {
		p.Category = nil
	}
	if len(p.Equipment) == 0 {
		p.Equipment = nil
	}
	return &p, nil
}

func encodeTags(p *models.Program) (string, string, error) {
	category := p.Category
	if category == nil {
		category = []string{}
	}
	equipment := p.Equipment
	if equipment == nil {
		equipment = []string{}
	}
	c, err := json.Marshal(category)
	if err != nil {
		return "", "", err
	}
	e, err := json.Marshal(equipment)
	if err != nil {
		return "", "", err
	}
	return string(c), string(e), nil
}
