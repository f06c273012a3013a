package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"konntek-go/internal/bot"
	"konntek-go/internal/config"
	"konntek-go/internal/database"
	"konntek-go/internal/report"
	"konntek-go/internal/store"
	"konntek-go/internal/telegram"
)

// App is the application layer between the CLI and the conversation
// service. It constructs all dependencies from config, exposes the offline
// operations the CLI needs, and manages resource lifecycle on Close.
type App struct {
	cfg       *config.Config
	store     bot.Store
	db        *database.SQLiteDatabase
	reporter  *report.Exporter
	logger    bot.Logger
	logCloser io.Closer
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "Serve", "ExportCSV").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	runID := time.Now().UTC().Format("20060102T150405Z") + "-" + operation
	logger, logCloser, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	blog := &slogAdapter{l: logger}

	st, err := store.NewStoreFromConfig(cfg.Store, blog)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("creating database: %w", err)
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		logCloser.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	reporter := report.NewExporter(db, "", bot.UUIDGenerator{}, bot.RealClock{})

	return &App{
		cfg:       cfg,
		store:     st,
		db:        db,
		reporter:  reporter,
		logger:    blog,
		logCloser: logCloser,
	}, nil
}

// Serve connects to Telegram and runs the conversation loop until the
// context is cancelled.
func (a *App) Serve(ctx context.Context) error {
	client, err := telegram.NewClient(a.cfg.BotToken, a.logger)
	if err != nil {
		return err
	}
	a.logger.Info("connected to telegram", "username", client.Username())

	sessions := bot.NewSessions(a.cfg.Bot.SessionTTL.Duration)
	svc := bot.NewService(bot.Options{
		Password:       a.cfg.BotPassword,
		AdminIDs:       a.cfg.AdminIDs,
		ProvisionDelay: a.cfg.Bot.ProvisionDelay.Duration,
		SendAttempts:   a.cfg.Bot.SendAttempts,
		SendDelay:      a.cfg.Bot.SendDelay.Duration,
		DashboardTopN:  a.cfg.Bot.DashboardTopN,
	}, a.store, a.db, a.reporter, client, sessions, bot.NewTimerScheduler(), a.logger, bot.RealClock{})

	return client.Run(ctx, svc)
}

// ListTargets returns the registered target ids.
func (a *App) ListTargets() ([]string, error) {
	return a.store.ListTargets()
}

// DeleteTarget removes a target's container tree and its log records.
// Returns false if the target did not exist.
func (a *App) DeleteTarget(id string) (bool, error) {
	removed, err := a.store.DeleteTarget(id)
	if err != nil {
		return false, fmt.Errorf("deleting target tree: %w", err)
	}
	if err := a.db.DeleteTarget(id); err != nil {
		return removed, fmt.Errorf("deleting target records: %w", err)
	}
	return removed, nil
}

// Export renders the target's activity log in the given format ("csv" or
// "pdf") and returns the path of the produced file.
func (a *App) Export(target, format string) (string, error) {
	switch format {
	case "", "csv":
		return a.reporter.ExportCSV(target)
	case "pdf":
		return a.reporter.ExportPDF(target)
	default:
		return "", fmt.Errorf("unknown export format: %s", format)
	}
}

// Dashboard returns the activity summary text.
func (a *App) Dashboard() (string, error) {
	return a.reporter.Dashboard(a.cfg.Bot.DashboardTopN)
}

// DashboardByActor returns the per-operator activity text.
func (a *App) DashboardByActor() (string, error) {
	return a.reporter.DashboardByActor(a.cfg.Bot.DashboardTopN)
}

// CheckMigrations verifies the database schema is current.
func (a *App) CheckMigrations() error {
	return a.db.CheckMigrations()
}

// Close releases the database and log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
