// Package report renders the activity log into shareable artifacts: CSV
// and PDF exports per target, and text dashboards for the admin menu.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"konntek-go/internal/bot"
)

// Exporter implements the Reporter interface over the activity log
// database. Export files land in outDir with generated, collision-free
// names; callers own the files and remove them after sending.
type Exporter struct {
	db     bot.Database
	outDir string
	ids    bot.IDGenerator
	clock  bot.Clock
}

func NewExporter(db bot.Database, outDir string, ids bot.IDGenerator, clock bot.Clock) *Exporter {
	if outDir == "" {
		outDir = os.TempDir()
	}
	if ids == nil {
		ids = &bot.UUIDGenerator{}
	}
	if clock == nil {
		clock = &bot.RealClock{}
	}
	return &Exporter{db: db, outDir: outDir, ids: ids, clock: clock}
}

func (e *Exporter) records(target string) ([]*bot.LogRecord, error) {
	if target == "" {
		return e.db.QueryAll()
	}
	records, err := e.db.Query(target)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (e *Exporter) outPath(target, ext string) string {
	base := target
	if base == "" {
		base = "all"
	}
	return filepath.Join(e.outDir, fmt.Sprintf("rapport_%s_%s.%s", base, e.ids.New(), ext))
}

var _ bot.Reporter = (*Exporter)(nil)
