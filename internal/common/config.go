package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/dqe-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	LLM      LLMConfig
	PDF      PDFConfig
	Patterns PatternsConfig
	Workers  WorkersConfig
	Export   ExportConfig
}

// DatabaseConfig holds database-related configuration.
// An empty DSN disables persistence; "sqlite://..." or a file path selects SQLite,
// "postgres://..." selects Postgres.
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// PDFConfig holds PDF text extraction configuration
type PDFConfig struct {
	Pdftotext string
	MaxPages  int
}

// PatternsConfig points at an optional YAML dialect file overriding the built-in pattern library.
type PatternsConfig struct {
	File string
}

// WorkersConfig sizes the batch queue.
type WorkersConfig struct {
	Count      int
	QueueSize  int
	JobTimeout time.Duration
}

// ExportConfig holds output defaults.
type ExportConfig struct {
	OutDir   string
	Currency string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DQE_DB_URL", ""),
			MaxConns:         getEnvAsInt32("DQE_DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DQE_DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DQE_DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DQE_DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DQE_DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DQE_DB_STATEMENT_TIMEOUT", 0),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 120*time.Second),
		},
		PDF: PDFConfig{
			Pdftotext: getEnv("PDFTOTEXT", "pdftotext"),
			MaxPages:  getEnvAsInt("DQE_PDF_MAX_PAGES", 0),
		},
		Patterns: PatternsConfig{
			File: getEnv("DQE_PATTERNS_FILE", ""),
		},
		Workers: WorkersConfig{
			Count:      getEnvAsInt("DQE_WORKERS", 4),
			QueueSize:  getEnvAsInt("DQE_QUEUE_SIZE", 256),
			JobTimeout: getEnvAsDuration("DQE_JOB_TIMEOUT", 3*time.Minute),
		},
		Export: ExportConfig{
			OutDir:   getEnv("DQE_OUT_DIR", "."),
			Currency: getEnv("DQE_CURRENCY", constants.DefaultCurrency),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the configuration required by the given extraction mode.
// It runs before any document is touched so credential problems surface as
// configuration errors rather than per-document failures.
func (c *Config) Validate(mode constants.ExtractionMode) error {
	switch mode {
	case constants.ModeLocal, constants.ModeAuto:
	case constants.ModeAI:
		if strings.TrimSpace(c.LLM.APIKey) == "" {
			return NewAppError(CodeConfig, "OPENAI_API_KEY is required in ai mode", ErrConfig)
		}
	default:
		return NewAppError(CodeConfig, "unknown extraction mode "+strconv.Quote(string(mode)), ErrConfig)
	}
	if c.LLM.APIKey != "" && c.LLM.Timeout <= 0 {
		return NewAppError(CodeConfig, "OPENAI_TIMEOUT must be positive", ErrConfig)
	}
	if c.Workers.Count <= 0 {
		return NewAppError(CodeConfig, "DQE_WORKERS must be positive", ErrConfig)
	}
	if c.Database.DSN != "" && c.Database.MaxConns < c.Database.MinConns {
		return NewAppError(CodeConfig, "DQE_DB_MAX_CONNS must be >= DQE_DB_MIN_CONNS", ErrConfig)
	}
	return nil
}
