package database

import (
	"testing"
	"time"

	"konntek-go/internal/bot"
)

// newTestDB creates a new in-memory database with the schema applied.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func record(actor int64, target, action string) *bot.LogRecord {
	return &bot.LogRecord{
		ActorID:   actor,
		TargetID:  target,
		Action:    action,
		CreatedAt: time.Now(),
	}
}

func TestSQLiteDatabase_Targets(t *testing.T) {
	t.Run("GetTarget returns nil when absent", func(t *testing.T) {
		db := newTestDB(t)

		target, err := db.GetTarget("123456789012345")
		if err != nil {
			t.Fatalf("GetTarget() error = %v", err)
		}
		if target != nil {
			t.Errorf("GetTarget() = %v, want nil", target)
		}
	})

	t.Run("AddTarget is idempotent", func(t *testing.T) {
		db := newTestDB(t)

		if err := db.AddTarget("123456789012345", "imei"); err != nil {
			t.Fatalf("AddTarget() error = %v", err)
		}
		if err := db.AddTarget("123456789012345", "serial"); err != nil {
			t.Fatalf("second AddTarget() error = %v", err)
		}

		target, err := db.GetTarget("123456789012345")
		if err != nil {
			t.Fatalf("GetTarget() error = %v", err)
		}
		if target == nil {
			t.Fatal("GetTarget() returned nil, want target")
		}
		if target.Kind != "imei" {
			t.Errorf("Kind = %v, want imei (first insert wins)", target.Kind)
		}

		n, err := db.CountTargets()
		if err != nil {
			t.Fatalf("CountTargets() error = %v", err)
		}
		if n != 1 {
			t.Errorf("CountTargets() = %d, want 1", n)
		}
	})

	t.Run("DeleteTarget cascades log records", func(t *testing.T) {
		db := newTestDB(t)

		if err := db.AddTarget("123456789012345", "imei"); err != nil {
			t.Fatalf("AddTarget() error = %v", err)
		}
		if err := db.Record(record(7, "123456789012345", bot.ActionUpload)); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if err := db.Record(record(7, "999999999999999", bot.ActionConsult)); err != nil {
			t.Fatalf("Record() error = %v", err)
		}

		if err := db.DeleteTarget("123456789012345"); err != nil {
			t.Fatalf("DeleteTarget() error = %v", err)
		}

		target, err := db.GetTarget("123456789012345")
		if err != nil {
			t.Fatalf("GetTarget() error = %v", err)
		}
		if target != nil {
			t.Error("expected target row to be gone")
		}

		records, err := db.QueryAll()
		if err != nil {
			t.Fatalf("QueryAll() error = %v", err)
		}
		if len(records) != 1 || records[0].TargetID != "999999999999999" {
			t.Errorf("expected only the other target's record to survive, got %v", records)
		}
	})
}

func TestSQLiteDatabase_Records(t *testing.T) {
	t.Run("Record assigns ascending ids", func(t *testing.T) {
		db := newTestDB(t)

		first := record(1, "123456789012345", bot.ActionUpload)
		second := record(1, "123456789012345", bot.ActionConsult)
		if err := db.Record(first); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if err := db.Record(second); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if first.ID == 0 || second.ID <= first.ID {
			t.Errorf("expected ascending ids, got %d then %d", first.ID, second.ID)
		}
	})

	t.Run("Query returns newest first", func(t *testing.T) {
		db := newTestDB(t)

		for _, action := range []string{bot.ActionLoginSuccess, bot.ActionUpload, bot.ActionConsult} {
			if err := db.Record(record(1, "123456789012345", action)); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
		}
		if err := db.Record(record(1, "other", bot.ActionUpload)); err != nil {
			t.Fatalf("Record() error = %v", err)
		}

		records, err := db.Query("123456789012345")
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("Query() returned %d records, want 3", len(records))
		}
		want := []string{bot.ActionConsult, bot.ActionUpload, bot.ActionLoginSuccess}
		for i, action := range want {
			if records[i].Action != action {
				t.Errorf("records[%d].Action = %v, want %v", i, records[i].Action, action)
			}
		}
	})

	t.Run("TopTargets orders by record count", func(t *testing.T) {
		db := newTestDB(t)

		for i := 0; i < 3; i++ {
			if err := db.Record(record(1, "busy-target", bot.ActionUpload)); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
		}
		if err := db.Record(record(1, "quiet-target", bot.ActionConsult)); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		// Empty target ids (login attempts before a target is chosen) are
		// excluded from the ranking.
		if err := db.Record(record(1, "", bot.ActionLoginFailure)); err != nil {
			t.Fatalf("Record() error = %v", err)
		}

		top, err := db.TopTargets(10)
		if err != nil {
			t.Fatalf("TopTargets() error = %v", err)
		}
		if len(top) != 2 {
			t.Fatalf("TopTargets() returned %d entries, want 2", len(top))
		}
		if top[0].TargetID != "busy-target" || top[0].Records != 3 {
			t.Errorf("top[0] = %+v, want busy-target with 3 records", top[0])
		}
		if top[1].TargetID != "quiet-target" || top[1].Records != 1 {
			t.Errorf("top[1] = %+v, want quiet-target with 1 record", top[1])
		}
	})

	t.Run("RecentByActor windows per actor", func(t *testing.T) {
		db := newTestDB(t)

		for i := 0; i < 4; i++ {
			if err := db.Record(record(100, "t1", bot.ActionUpload)); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
		}
		if err := db.Record(record(200, "t2", bot.ActionConsult)); err != nil {
			t.Fatalf("Record() error = %v", err)
		}

		records, err := db.RecentByActor(2)
		if err != nil {
			t.Fatalf("RecentByActor() error = %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("RecentByActor() returned %d records, want 3", len(records))
		}
		// Actor 100 capped at 2 records, newest first; then actor 200.
		if records[0].ActorID != 100 || records[1].ActorID != 100 || records[2].ActorID != 200 {
			t.Errorf("unexpected actor grouping: %v %v %v",
				records[0].ActorID, records[1].ActorID, records[2].ActorID)
		}
		if records[0].ID < records[1].ID {
			t.Error("expected newest first within an actor")
		}
	})

	t.Run("CountRecords", func(t *testing.T) {
		db := newTestDB(t)

		if err := db.Record(record(1, "t1", bot.ActionUpload)); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		n, err := db.CountRecords()
		if err != nil {
			t.Fatalf("CountRecords() error = %v", err)
		}
		if n != 1 {
			t.Errorf("CountRecords() = %d, want 1", n)
		}
	})
}
