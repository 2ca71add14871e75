// ABOUTME: DailyLog CRUD operations for SQLite storage.
// ABOUTME: A day row owns its sessions and supplement intake through cascade deletes.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/dojo/internal/models"
)

const timeLayout = time.RFC3339Nano

// GetDay retrieves the log for date.
func (d *DB) GetDay(date string) (*models.DailyLog, error) {
	var hydration int
	err := d.db.QueryRow(`SELECT hydration_ml FROM days WHERE date = ?`, date).Scan(&hydration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("day " + date)
	}
	if err != nil {
		return nil, fmt.Errorf("get day: %w", err)
	}

	sessions, err := d.loadSessions(`WHERE day = ?`, date)
	if err != nil {
		return nil, err
	}
	intake, err := d.loadSupplementLog(`WHERE day = ?`, date)
	if err != nil {
		return nil, err
	}

	log := models.NewDailyLog(date)
	log.Hydration = hydration
	if s, ok := sessions[date]; ok {
		log.Sessions = s
	}
	if m, ok := intake[date]; ok {
		log.SupplementLog = m
	}
	return log, nil
}

// UpsertDay replaces the stored log for log.Date.
func (d *DB) UpsertDay(log *models.DailyLog) error {
	if _, err := models.ParseDateKey(log.Date); err != nil {
		return fmt.Errorf("upsert day: %w", err)
	}

	return d.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO days (date, hydration_ml, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET
				hydration_ml = excluded.hydration_ml,
				updated_at = excluded.updated_at
		`, log.Date, log.Hydration, time.Now().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("upsert day: %w", err)
		}

		if _, err := tx.Exec(`DELETE FROM sessions WHERE day = ?`, log.Date); err != nil {
			return fmt.Errorf("clear sessions: %w", err)
		}
		for i, s := range log.Sessions {
			_, err := tx.Exec(`
				INSERT INTO sessions (id, day, position, program_name, completed_at, xp_gained, total_volume_kg, distance_km)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`,
				s.ID,
				log.Date,
				i,
				s.ProgramName,
				s.Date.Format(timeLayout),
				s.XPGained,
				s.TotalVolumeKg,
				s.DistanceKm,
			)
			if err != nil {
				return fmt.Errorf("insert session %s: %w", s.ID, err)
			}
		}

		if _, err := tx.Exec(`DELETE FROM supplement_log WHERE day = ?`, log.Date); err != nil {
			return fmt.Errorf("clear supplement log: %w", err)
		}
		for id, taken := range log.SupplementLog {
			_, err := tx.Exec(`INSERT INTO supplement_log (day, supplement_id, taken) VALUES (?, ?, ?)`,
				log.Date, id, taken)
			if err != nil {
				return fmt.Errorf("insert supplement intake: %w", err)
			}
		}
		return nil
	})
}

// DeleteDay removes a day with its sessions and intake (cascade delete).
func (d *DB) DeleteDay(date string) error {
	result, err := d.db.Exec(`DELETE FROM days WHERE date = ?`, date)
	if err != nil {
		return fmt.Errorf("delete day: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete day: %w", err)
	}
	if affected == 0 {
		return notFound("day " + date)
	}
	return nil
}

// ListDays returns every stored day, oldest first.
func (d *DB) ListDays() ([]*models.DailyLog, error) {
	rows, err := d.db.Query(`SELECT date, hydration_ml FROM days ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}

	var logs []*models.DailyLog
	for rows.Next() {
		var date string
		var hydration int
		if err := rows.Scan(&date, &hydration); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan day: %w", err)
		}
		log := models.NewDailyLog(date)
		log.Hydration = hydration
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// The connection pool holds a single connection; release it before the next query.
	rows.Close()

	sessions, err := d.loadSessions("")
	if err != nil {
		return nil, err
	}
	intake, err := d.loadSupplementLog("")
	if err != nil {
		return nil, err
	}
	for _, log := range logs {
		if s, ok := sessions[log.Date]; ok {
			log.Sessions = s
		}
		if m, ok := intake[log.Date]; ok {
			log.SupplementLog = m
		}
	}
	return logs, nil
}

// loadSessions returns sessions grouped by day, in stored order.
func (d *DB) loadSessions(where string, args ...any) (map[string][]models.Session, error) {
	query := `
		SELECT day, id, program_name, completed_at, xp_gained, total_volume_kg, distance_km
		FROM sessions ` + where + `
		ORDER BY day ASC, position ASC
	`
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Session)
	for rows.Next() {
		var s models.Session
		var day, completedAt string
		var volume, distance sql.NullFloat64

		if err := rows.Scan(&day, &s.ID, &s.ProgramName, &completedAt, &s.XPGained, &volume, &distance); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		completed, err := time.Parse(timeLayout, completedAt)
		if err != nil {
			return nil, fmt.Errorf("scan session %s: %w", s.ID, err)
		}
		s.Date = completed
		if volume.Valid {
			v := volume.Float64
			s.TotalVolumeKg = &v
		}
		if distance.Valid {
			v := distance.Float64
			s.DistanceKm = &v
		}
		out[day] = append(out[day], s)
	}
	return out, rows.Err()
}

// loadSupplementLog returns supplement intake grouped by day.
func (d *DB) loadSupplementLog(where string, args ...any) (map[string]map[string]bool, error) {
	rows, err := d.db.Query(`SELECT day, supplement_id, taken FROM supplement_log `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list supplement log: %w", err)
	}
	defer rows.Close()

	out := make(map[string]map[string]bool)
	for rows.Next() {
		var day, id string
		var taken bool
		if err := rows.Scan(&day, &id, &taken); err != nil {
			return nil, fmt.Errorf("scan supplement intake: %w", err)
		}
		if out[day] == nil {
			out[day] = make(map[string]bool)
		}
		out[day][id] = taken
	}
	return out, rows.Err()
}
