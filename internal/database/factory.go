package database

import (
	"fmt"
	"os"
	"path/filepath"

	"konntek-go/internal/config"
)

// NewDatabaseFromConfig opens the activity log database described by the
// configuration: a SQLite file under the data path, or ":memory:" when
// DBName is set to that literal.
func NewDatabaseFromConfig(cfg *config.Config) (*SQLiteDatabase, error) {
	if cfg.DBName == ":memory:" {
		return NewSQLiteDatabase(":memory:")
	}
	if cfg.DataPath == "" {
		return nil, fmt.Errorf("data path required for sqlite database")
	}
	if err := os.MkdirAll(cfg.DataPath, 0755); err != nil {
		return nil, fmt.Errorf("creating data path: %w", err)
	}
	return NewSQLiteDatabase(filepath.Join(cfg.DataPath, cfg.DBName))
}
