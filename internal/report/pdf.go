package report

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfTopMargin    = 40.0
	pdfBottomMargin = 50.0
	pdfLeftMargin   = 50.0
	pdfLineHeight   = 15.0
)

// ExportPDF renders the target's activity records (newest first) as a
// plain line-per-record PDF and returns its path. An empty target exports
// the whole log.
func (e *Exporter) ExportPDF(target string) (string, error) {
	records, err := e.records(target)
	if err != nil {
		return "", fmt.Errorf("loading records: %w", err)
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	_, pageHeight := pdf.GetPageSize()
	y := pdfTopMargin

	line := func(text string) {
		if y > pageHeight-pdfBottomMargin || pdf.PageNo() == 0 {
			pdf.AddPage()
			y = pdfTopMargin
		}
		pdf.Text(pdfLeftMargin, y, tr(text))
		y += pdfLineHeight
	}

	title := "Rapport d'activité"
	if target != "" {
		title += " — " + target
	}
	line(title)
	line(fmt.Sprintf("Généré le %s", e.clock.Now().Format("2006-01-02 15:04:05")))
	line("")

	if len(records) == 0 {
		line("Aucune activité enregistrée.")
	}
	for _, rec := range records {
		ref := rec.FileRef
		if ref == "" {
			ref = "N/A"
		}
		line(fmt.Sprintf("[%s] %s | %s/%s | %s | %s",
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Action, rec.Category, rec.Subcategory, ref, rec.TargetID))
	}

	path := e.outPath(target, "pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("writing pdf: %w", err)
	}
	return path, nil
}
