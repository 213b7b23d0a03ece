package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store backend identifiers accepted in STORE_BACKEND.
const (
	BackendWebApp = "webapp"
	BackendSheets = "sheets"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Sheets    SheetsConfig
	WebApp    WebAppConfig
	Scanner   ScannerConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig selects which remote store backend serves the inventory table.
type StoreConfig struct {
	Backend string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath  string
	SpreadsheetID    string
	InventoryRange   string
	AdjustmentsRange string
}

// WebAppConfig points at the Apps Script web-app endpoint that fronts the
// spreadsheet when the webapp backend is selected.
type WebAppConfig struct {
	EndpointURL string
}

// ScannerConfig tunes the scan intake queue.
type ScannerConfig struct {
	QueueSize int
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// MongoDBConfig holds settings for the optional audit archive.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	queueSize, err := getenvInt("SCANNER_QUEUE_SIZE", 64)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Store: StoreConfig{
			Backend: getenvWithDefault("STORE_BACKEND", BackendWebApp),
		},
		Sheets: SheetsConfig{
			CredentialsPath:  os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:    os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			InventoryRange:   getenvWithDefault("SHEET_INVENTORY_RANGE", "Inventory!A:C"),
			AdjustmentsRange: getenvWithDefault("SHEET_ADJUSTMENTS_RANGE", "Adjustments!A:E"),
		},
		WebApp: WebAppConfig{
			EndpointURL: os.Getenv("SHEET_WEBAPP_URL"),
		},
		Scanner: ScannerConfig{
			QueueSize: queueSize,
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("LOWSTOCK_CRON_SCHEDULE", "0 8 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Tokyo"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "zaiko"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Backend {
	case BackendWebApp:
		if c.WebApp.EndpointURL == "" {
			return errors.New("SHEET_WEBAPP_URL must be provided for the webapp backend")
		}
	case BackendSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided for the sheets backend")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided for the sheets backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want %q or %q)", c.Store.Backend, BackendWebApp, BackendSheets)
	}

	if c.Sheets.InventoryRange == "" {
		return errors.New("SHEET_INVENTORY_RANGE must not be empty")
	}

	if c.Scanner.QueueSize <= 0 {
		return errors.New("SCANNER_QUEUE_SIZE must be positive")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("LOWSTOCK_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	// MongoDB is optional; an empty URI disables the audit archive.

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}
