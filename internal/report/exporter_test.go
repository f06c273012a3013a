package report

import (
	"encoding/csv"
	"os"
	"strings"
	"testing"
	"time"

	"konntek-go/internal/bot"
	"konntek-go/internal/testutil"
)

func seedDatabase(t *testing.T) bot.Database {
	t.Helper()

	db := testutil.NewTestDatabase(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	records := []*bot.LogRecord{
		{ActorID: 7, TargetID: "123456789012345", Category: "photos", Subcategory: "galerie",
			Action: bot.ActionUpload, FileRef: "img.jpg", CreatedAt: base},
		{ActorID: 7, TargetID: "123456789012345", Category: "sms_mms", Subcategory: "",
			Action: bot.ActionConsult, FileRef: "dump.txt", CreatedAt: base.Add(time.Minute)},
		{ActorID: 9, TargetID: "+33612345678", Category: "appels",
			Action: bot.ActionConsult, FileRef: "calls.csv", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, rec := range records {
		if err := db.Record(rec); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	return db
}

func newTestExporter(t *testing.T, db bot.Database) *Exporter {
	t.Helper()
	return NewExporter(db, t.TempDir(), testutil.NewStubIDGenerator(), testutil.FixedClock())
}

func TestExportCSV(t *testing.T) {
	db := seedDatabase(t)
	e := newTestExporter(t, db)

	path, err := e.ExportCSV("123456789012345")
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	// Header plus the two records for this target.
	if len(rows) != 3 {
		t.Fatalf("export has %d rows, want 3", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][5] != "Action" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	// Newest first.
	if rows[1][5] != bot.ActionConsult || rows[2][5] != bot.ActionUpload {
		t.Errorf("unexpected row order: %v / %v", rows[1], rows[2])
	}
	for _, row := range rows[1:] {
		if row[2] != "123456789012345" {
			t.Errorf("row for wrong target: %v", row)
		}
	}
}

func TestExportCSVAllTargets(t *testing.T) {
	db := seedDatabase(t)
	e := newTestExporter(t, db)

	path, err := e.ExportCSV("")
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("export has %d rows, want 4 (header + all records)", len(rows))
	}
}

func TestExportPDF(t *testing.T) {
	db := seedDatabase(t)
	e := newTestExporter(t, db)

	path, err := e.ExportPDF("123456789012345")
	if err != nil {
		t.Fatalf("ExportPDF() error = %v", err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("export does not look like a PDF (len=%d)", len(data))
	}
	if !strings.HasSuffix(path, ".pdf") {
		t.Errorf("unexpected export path: %s", path)
	}
}

func TestExportPDFEmptyLog(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	e := newTestExporter(t, db)

	path, err := e.ExportPDF("unknown-target")
	if err != nil {
		t.Fatalf("ExportPDF() error = %v", err)
	}
	defer os.Remove(path)

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected an export file even for an empty log: %v", err)
	}
}

func TestDashboard(t *testing.T) {
	db := seedDatabase(t)
	e := newTestExporter(t, db)

	out, err := e.Dashboard(10)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if !strings.Contains(out, "Entrées de journal : 3") {
		t.Errorf("dashboard missing record count:\n%s", out)
	}
	if !strings.Contains(out, "123456789012345 — 2 entrées") {
		t.Errorf("dashboard missing top target:\n%s", out)
	}
}

func TestDashboardByActor(t *testing.T) {
	db := seedDatabase(t)
	e := newTestExporter(t, db)

	out, err := e.DashboardByActor(5)
	if err != nil {
		t.Fatalf("DashboardByActor() error = %v", err)
	}
	if !strings.Contains(out, "Opérateur 7 :") || !strings.Contains(out, "Opérateur 9 :") {
		t.Errorf("dashboard missing actor sections:\n%s", out)
	}
}

func TestDashboardByActorEmpty(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	e := newTestExporter(t, db)

	out, err := e.DashboardByActor(5)
	if err != nil {
		t.Fatalf("DashboardByActor() error = %v", err)
	}
	if !strings.Contains(out, "Aucune activité") {
		t.Errorf("expected empty-log message, got:\n%s", out)
	}
}
