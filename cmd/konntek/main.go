package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"konntek-go/internal/app"
	"konntek-go/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp loads the configuration and creates a wired App. The caller must
// defer a.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.App, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "konntek",
	Short: "Device fleet companion bot",
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Serve")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := a.Serve(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("bot stopped: %w", err)
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultPath()
		if err := config.Init(path); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		fmt.Printf("Configuration initialized at %s\n", path)

		if _, err := os.Stat(".env"); err == nil {
			fmt.Println(".env already exists, leaving it untouched")
			return nil
		}
		return initEnvFile()
	},
}

// initEnvFile interactively collects the secrets and writes them to .env.
// The password is read without echo.
func initEnvFile() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Bot token: ")
	token, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading token: %w", err)
	}
	token = strings.TrimSpace(token)

	fmt.Print("Bot password (hidden): ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	fmt.Print("Admin ids (comma-separated, optional): ")
	admins, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading admin ids: %w", err)
	}
	admins = strings.TrimSpace(admins)
	if _, err := config.ParseAdminIDs(admins); err != nil {
		return err
	}

	f, err := os.OpenFile(".env", os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("creating .env: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "BOT_TOKEN=%s\n", token)
	fmt.Fprintf(f, "BOT_PASSWORD=%s\n", string(password))
	fmt.Fprintf(f, "ADMIN_IDS=%s\n", admins)

	fmt.Println("Secrets written to .env")
	return nil
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load("")
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", config.DefaultPath())
		fmt.Printf("Data Path:       %s\n", cfg.DataPath)
		fmt.Printf("Database:        %s\n", cfg.DBName)
		fmt.Printf("Log Dir:         %s\n", cfg.LogDir)
		fmt.Printf("Store Type:      %s\n", cfg.Store.Type)
		if cfg.Store.Type == "s3" {
			fmt.Printf("S3 Bucket:       %s\n", cfg.Store.S3Bucket)
		}
		fmt.Printf("Provision Delay: %s\n", cfg.Bot.ProvisionDelay.Duration)
		fmt.Printf("Session TTL:     %s\n", cfg.Bot.SessionTTL.Duration)
		fmt.Printf("Admins:          %d configured\n", len(cfg.AdminIDs))
		return nil
	},
}

// targets command
var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Manage registered targets",
}

var targetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListTargets")
		if err != nil {
			return err
		}
		defer a.Close()

		targets, err := a.ListTargets()
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			fmt.Println("No targets registered.")
			return nil
		}
		for _, id := range targets {
			fmt.Println(id)
		}
		return nil
	},
}

var targetsDeleteCmd = &cobra.Command{
	Use:   "delete TARGET_ID",
	Short: "Delete a target and its records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteTarget")
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.DeleteTarget(args[0])
		if err != nil {
			return err
		}
		if !removed {
			fmt.Printf("Target %s not found.\n", args[0])
			return nil
		}
		fmt.Printf("Deleted target %s\n", args[0])
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export TARGET_ID",
	Short: "Export a target's activity log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		a, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.Export(args[0], format)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

// dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "View activity summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		byActor, _ := cmd.Flags().GetBool("by-actor")

		a, err := newApp("Dashboard")
		if err != nil {
			return err
		}
		defer a.Close()

		var out string
		if byActor {
			out, err = a.DashboardByActor()
		} else {
			out, err = a.Dashboard()
		}
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Check database schema status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Migrate")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.CheckMigrations(); err != nil {
			return err
		}
		fmt.Println("Database schema is up to date.")
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// targets subcommands
	targetsCmd.AddCommand(targetsListCmd)
	targetsCmd.AddCommand(targetsDeleteCmd)

	// root commands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", "csv", "Export format: csv or pdf")
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().Bool("by-actor", false, "Group activity by operator")
	rootCmd.AddCommand(migrateCmd)
}
