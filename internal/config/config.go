package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	defaultPrimaryURL    = "http://localhost:5678/webhook-test/sheetaccess"
	defaultSheetsBaseURL = "https://docs.google.com/spreadsheets/d"
	defaultSpreadsheetID = "1uHdxui32Vb9W7JSxnbxVB35VwqAk0ex2gQpQhCzLYH0"
	defaultCORSOrigins   = "http://localhost:5173"
)

type Config struct {
	HTTPPort    string `yaml:"http_port" validate:"required,numeric"`
	CORSOrigins string `yaml:"cors_allowed_origins"`
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`
	Timezone    string `yaml:"timezone" validate:"required"`

	// Acquisition tiers, in fallback order.
	PrimaryURL    string `yaml:"primary_url" validate:"omitempty,url"`
	SheetsBaseURL string `yaml:"sheets_base_url" validate:"required,url"`
	SpreadsheetID string `yaml:"spreadsheet_id"`
	SalesGID      string `yaml:"sales_gid"`
	InventoryGID  string `yaml:"inventory_gid"`  // optional tab
	AttendanceGID string `yaml:"attendance_gid"` // optional tab
	FeedbackGID   string `yaml:"feedback_gid"`   // optional tab
	DatabaseDSN   string `yaml:"database_dsn"`   // empty disables the warehouse tier

	RefreshInterval time.Duration `yaml:"refresh_interval" validate:"gte=1s"`
	TierTimeout     time.Duration `yaml:"tier_timeout" validate:"gte=100ms"`
	RefreshLimit    int           `yaml:"refresh_limit" validate:"gte=1"` // manual refreshes per client per minute
}

var validate = validator.New()

func Defaults() *Config {
	return &Config{
		HTTPPort:        "8080",
		CORSOrigins:     defaultCORSOrigins,
		LogLevel:        "info",
		Timezone:        "Asia/Kolkata",
		PrimaryURL:      defaultPrimaryURL,
		SheetsBaseURL:   defaultSheetsBaseURL,
		SpreadsheetID:   defaultSpreadsheetID,
		SalesGID:        "0",
		RefreshInterval: 60 * time.Second,
		TierTimeout:     2 * time.Second,
		RefreshLimit:    6,
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// CAFE_CONFIG_FILE, and environment variables, in that order.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CAFE_CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := loadEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.CORSOrigins == defaultCORSOrigins {
		slog.Warn("CORS_ALLOWED_ORIGINS not set, using the development default", "origins", cfg.CORSOrigins)
	}
	if cfg.PrimaryURL == "" {
		slog.Warn("PRIMARY_URL is empty, the webhook tier is disabled")
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid config: timezone %q: %w", c.Timezone, err)
	}
	if c.SheetsEnabled() && c.SalesGID == "" {
		return errors.New("invalid config: SALES_GID is required when SPREADSHEET_ID is set")
	}
	return nil
}

// Location returns the configured business time zone. Validate has already
// checked it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) SheetsEnabled() bool {
	return c.SpreadsheetID != ""
}

func (c *Config) WarehouseEnabled() bool {
	return c.DatabaseDSN != ""
}

// AllowedOrigins returns CORS origins as a clean comma separated list.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("config file not found, using defaults", "path", path)
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) error {
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.CORSOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.CORSOrigins)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.Timezone = getEnv("TIMEZONE", cfg.Timezone)
	cfg.PrimaryURL = getEnv("PRIMARY_URL", cfg.PrimaryURL)
	cfg.SheetsBaseURL = getEnv("SHEETS_BASE_URL", cfg.SheetsBaseURL)
	cfg.SpreadsheetID = getEnv("SPREADSHEET_ID", cfg.SpreadsheetID)
	cfg.SalesGID = getEnv("SALES_GID", cfg.SalesGID)
	cfg.InventoryGID = getEnv("INVENTORY_GID", cfg.InventoryGID)
	cfg.AttendanceGID = getEnv("ATTENDANCE_GID", cfg.AttendanceGID)
	cfg.FeedbackGID = getEnv("FEEDBACK_GID", cfg.FeedbackGID)
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", cfg.DatabaseDSN)

	var err error
	if cfg.RefreshInterval, err = getDurationEnv("REFRESH_INTERVAL", cfg.RefreshInterval); err != nil {
		return err
	}
	if cfg.TierTimeout, err = getDurationEnv("TIER_TIMEOUT", cfg.TierTimeout); err != nil {
		return err
	}
	if cfg.RefreshLimit, err = getIntEnv("REFRESH_LIMIT", cfg.RefreshLimit); err != nil {
		return err
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
