package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the resolved runtime configuration: required secrets from the
// environment plus optional tunables from a TOML file.
type Config struct {
	// Environment-sourced (see Load). BotToken and BotPassword are required;
	// startup fails fast when either is blank.
	BotToken    string  `toml:"-"`
	BotPassword string  `toml:"-"`
	AdminIDs    []int64 `toml:"-"`
	DataPath    string  `toml:"-"`
	DBName      string  `toml:"-"`

	Store  StoreConfig `toml:"store"`
	Bot    BotConfig   `toml:"bot"`
	LogDir string      `toml:"log_dir"`
}

// StoreConfig selects and parameterizes the container store backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type string `toml:"type"` // "filesystem" (default), "memory", or "s3"

	// Root is the filesystem store root; filled from DATA_PATH.
	Root string `toml:"-"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`

	// Bounded retry around mutating calls to a remote backend.
	RetryAttempts int      `toml:"retry_attempts"`
	RetryDelay    Duration `toml:"retry_delay"`
}

// BotConfig carries the conversation tunables.
type BotConfig struct {
	ProvisionDelay Duration `toml:"provision_delay"`
	SendAttempts   int      `toml:"send_attempts"`
	SendDelay      Duration `toml:"send_delay"`
	SessionTTL     Duration `toml:"session_ttl"`
	DashboardTopN  int      `toml:"dashboard_top_n"`
}

// Duration is a time.Duration that TOML-decodes from strings like "300s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config with every tunable at its default value.
func Defaults() *Config {
	return &Config{
		DataPath: "./data",
		DBName:   "konntek.db",
		LogDir:   "./log",
		Store: StoreConfig{
			Type:          "filesystem",
			RetryAttempts: 3,
			RetryDelay:    Duration{1 * time.Second},
		},
		Bot: BotConfig{
			ProvisionDelay: Duration{5 * time.Minute},
			SendAttempts:   3,
			SendDelay:      Duration{2 * time.Second},
			SessionTTL:     Duration{24 * time.Hour},
			DashboardTopN:  10,
		},
	}
}

// Load resolves the configuration: a .env file if present, then the process
// environment for secrets, then the optional TOML tunables file. It returns
// an error (rather than limping along) when a required secret is blank or
// ADMIN_IDS does not parse.
func Load(tomlPath string) (*Config, error) {
	// Missing .env is fine; the variables may come from the environment.
	_ = godotenv.Load()

	cfg := Defaults()

	if tomlPath == "" {
		tomlPath = DefaultPath()
	}
	if _, err := os.Stat(tomlPath); err == nil {
		if err := readFromFile(tomlPath, cfg); err != nil {
			return nil, err
		}
	}

	cfg.BotToken = os.Getenv("BOT_TOKEN")
	cfg.BotPassword = os.Getenv("BOT_PASSWORD")
	if v := os.Getenv("DATA_PATH"); v != "" {
		cfg.DataPath = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.DBName = v
	}
	cfg.Store.Root = cfg.DataPath

	ids, err := ParseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.AdminIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the required secrets and the store selection.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is not configured")
	}
	if c.BotPassword == "" {
		return fmt.Errorf("BOT_PASSWORD is not configured")
	}
	switch c.Store.Type {
	case "filesystem", "memory":
	case "s3":
		if c.Store.S3Bucket == "" {
			return fmt.Errorf("s3 store requires s3_bucket to be set")
		}
	default:
		return fmt.Errorf("unknown store type: %s", c.Store.Type)
	}
	return nil
}

// ParseAdminIDs parses the comma-separated allow-list of actor ids.
// Blank input yields an empty list; a malformed entry is an error.
func ParseAdminIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_IDS entry %q is not a numeric actor id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DefaultPath returns the tunables file location, honoring
// KONNTEK_CONFIG_PATH, falling back to ~/.config/konntek.toml.
func DefaultPath() string {
	if p := os.Getenv("KONNTEK_CONFIG_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "konntek.toml"
	}
	return filepath.Join(home, ".config", "konntek.toml")
}

// Read decodes tunables from the provided reader onto cfg.
func Read(r io.Reader, cfg *Config) error {
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// Write encodes the tunables to the provided writer.
func Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// readFromFile overlays tunables from the file onto cfg.
func readFromFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := Read(f, cfg); err != nil {
		return fmt.Errorf("reading config from %s: %w", path, err)
	}
	return nil
}

// Init creates a new tunables file at path with the default values.
// It refuses to overwrite an existing file.
func Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := Write(f, Defaults()); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
