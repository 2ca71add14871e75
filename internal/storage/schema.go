// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for days, sessions, supplement intake, programs, supplements, and notes.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS days (
		date TEXT PRIMARY KEY,
		hydration_ml INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		day TEXT NOT NULL,
		position INTEGER NOT NULL,
		program_name TEXT NOT NULL,
		completed_at TEXT NOT NULL,
		xp_gained INTEGER NOT NULL,
		total_volume_kg REAL,
		distance_km REAL,
		FOREIGN KEY (day) REFERENCES days(date) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS supplement_log (
		day TEXT NOT NULL,
		supplement_id TEXT NOT NULL,
		taken INTEGER NOT NULL,
		PRIMARY KEY (day, supplement_id),
		FOREIGN KEY (day) REFERENCES days(date) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS programs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		mode TEXT NOT NULL,
		rounds INTEGER NOT NULL DEFAULT 0,
		rest_between_rounds_sec INTEGER,
		category TEXT NOT NULL DEFAULT '[]',
		equipment TEXT NOT NULL DEFAULT '[]',
		est_duration_min INTEGER NOT NULL DEFAULT 0,
		intensity INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS program_exercises (
		program_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		exercise_id TEXT NOT NULL,
		target_reps INTEGER NOT NULL DEFAULT 0,
		target_time_sec INTEGER NOT NULL DEFAULT 0,
		sets INTEGER NOT NULL DEFAULT 0,
		rest_sec INTEGER,
		PRIMARY KEY (program_id, position),
		FOREIGN KEY (program_id) REFERENCES programs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS supplements (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		dosage TEXT NOT NULL,
		time_label TEXT NOT NULL DEFAULT '',
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		category TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		mood INTEGER,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_day ON sessions(day, position);
	CREATE INDEX IF NOT EXISTS idx_programs_name ON programs(name COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_supplements_created ON supplements(created_at);
	CREATE INDEX IF NOT EXISTS idx_notes_date ON notes(date DESC, created_at DESC);
	`

	_, err := d.db.Exec(schema)
	return err
}
