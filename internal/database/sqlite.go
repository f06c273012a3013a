package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"konntek-go/internal/bot"
	"konntek-go/internal/database/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with the PRAGMAs
// the activity log needs. Exported for tools and tests.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite ships with foreign keys OFF for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

func (s *SQLiteDatabase) AddTarget(id, kind string) error {
	if kind == "" {
		kind = "unknown"
	}
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO targets (id, kind, created_at) VALUES (?, ?, ?)`,
		id, kind, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("adding target: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) GetTarget(id string) (*bot.Target, error) {
	row := s.db.QueryRow(`SELECT id, kind, created_at FROM targets WHERE id = ?`, id)

	var t bot.Target
	if err := row.Scan(&t.ID, &t.Kind, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("getting target: %w", err)
	}
	return &t, nil
}

// DeleteTarget removes the target row and its log records in one
// transaction, so a failure leaves both tables untouched.
func (s *SQLiteDatabase) DeleteTarget(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM logs WHERE target_id = ?`, id); err != nil {
		return fmt.Errorf("deleting target logs: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM targets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting target: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) CountTargets() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM targets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting targets: %w", err)
	}
	return n, nil
}

func (s *SQLiteDatabase) Record(rec *bot.LogRecord) error {
	res, err := s.db.Exec(
		`INSERT INTO logs (actor_id, target_id, category, subcategory, action, file_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ActorID, rec.TargetID, rec.Category, rec.Subcategory, rec.Action, rec.FileRef, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording log entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading log entry id: %w", err)
	}
	rec.ID = id
	return nil
}

const logColumns = `id, actor_id, target_id, category, subcategory, action, file_ref, created_at`

func (s *SQLiteDatabase) Query(target string) ([]*bot.LogRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+logColumns+` FROM logs WHERE target_id = ? ORDER BY id DESC`, target)
	if err != nil {
		return nil, fmt.Errorf("querying logs: %w", err)
	}
	return scanRecords(rows)
}

func (s *SQLiteDatabase) QueryAll() ([]*bot.LogRecord, error) {
	rows, err := s.db.Query(`SELECT ` + logColumns + ` FROM logs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying logs: %w", err)
	}
	return scanRecords(rows)
}

func (s *SQLiteDatabase) CountRecords() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting log entries: %w", err)
	}
	return n, nil
}

func (s *SQLiteDatabase) TopTargets(n int) ([]bot.TargetCount, error) {
	rows, err := s.db.Query(
		`SELECT target_id, COUNT(*) AS records
		 FROM logs
		 WHERE target_id != ''
		 GROUP BY target_id
		 ORDER BY records DESC, target_id ASC
		 LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying top targets: %w", err)
	}
	defer rows.Close()

	var counts []bot.TargetCount
	for rows.Next() {
		var tc bot.TargetCount
		if err := rows.Scan(&tc.TargetID, &tc.Records); err != nil {
			return nil, fmt.Errorf("scanning top target: %w", err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating top targets: %w", err)
	}
	return counts, nil
}

// RecentByActor keeps each actor's n most recent records. The window
// ranks rows per actor by descending id before filtering.
func (s *SQLiteDatabase) RecentByActor(n int) ([]*bot.LogRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+logColumns+` FROM (
		     SELECT *, ROW_NUMBER() OVER (PARTITION BY actor_id ORDER BY id DESC) AS rn
		     FROM logs
		 )
		 WHERE rn <= ?
		 ORDER BY actor_id ASC, id DESC`, n)
	if err != nil {
		return nil, fmt.Errorf("querying recent per actor: %w", err)
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]*bot.LogRecord, error) {
	defer rows.Close()

	var records []*bot.LogRecord
	for rows.Next() {
		var rec bot.LogRecord
		if err := rows.Scan(&rec.ID, &rec.ActorID, &rec.TargetID, &rec.Category,
			&rec.Subcategory, &rec.Action, &rec.FileRef, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating log entries: %w", err)
	}
	return records, nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp brings the schema to the latest version.
func (s *SQLiteDatabase) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements the Database interface.
var _ bot.Database = (*SQLiteDatabase)(nil)
