package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

var csvHeader = []string{"ID", "Acteur", "Cible", "Catégorie", "Sous-catégorie", "Action", "Fichier", "Horodatage"}

// ExportCSV writes the target's activity records (newest first) to a CSV
// file and returns its path. An empty target exports the whole log.
func (e *Exporter) ExportCSV(target string) (string, error) {
	records, err := e.records(target)
	if err != nil {
		return "", fmt.Errorf("loading records: %w", err)
	}

	path := e.outPath(target, "csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			strconv.FormatInt(rec.ActorID, 10),
			rec.TargetID,
			rec.Category,
			rec.Subcategory,
			rec.Action,
			rec.FileRef,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing export: %w", err)
	}
	return path, nil
}
