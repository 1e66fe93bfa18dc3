// Package config provides configuration management for the triage services.
// This file contains the lightweight configuration for standalone operation.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/medemi-triage-server/internal/domain"
)

// LiteConfig is a simplified configuration for standalone console triage.
// It requires no external databases and uses sensible defaults.
type LiteConfig struct {
	// Data storage
	DataDir       string // Base directory for the session database and reports
	DirectoryPath string // Doctor directory JSON file
	FontPath      string // Optional TrueType font for PDF reports

	// Session settings
	SessionTTL time.Duration

	// Extraction endpoint
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string
	LLMTimeout time.Duration

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".medemi-triage")

	return &LiteConfig{
		DataDir:       dataDir,
		DirectoryPath: "data/doctors.json",
		SessionTTL:    24 * time.Hour,
		LLMBaseURL:    "http://localhost:11434/v1",
		LLMModel:      "mistral:7b",
		LLMAPIKey:     "ollama",
		LLMTimeout:    30 * time.Second,
		LogLevel:      "warn",
		LogFormat:     "text",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("MEDEMI_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("MEDEMI_DIRECTORY_PATH"); v != "" {
		cfg.DirectoryPath = v
	}
	cfg.FontPath = os.Getenv("MEDEMI_REPORT_FONT_PATH")

	if v := os.Getenv("MEDEMI_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionTTL = d
		}
	}

	// Extraction endpoint
	if v := os.Getenv("MEDEMI_LLM_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := os.Getenv("MEDEMI_LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}
	if v := os.Getenv("MEDEMI_LLM_API_KEY"); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := os.Getenv("MEDEMI_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.LLMTimeout = d
		} else if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LLMTimeout = time.Duration(n) * time.Second
		}
	}

	// Logging
	if v := os.Getenv("MEDEMI_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MEDEMI_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// SessionDBPath returns the path to the session SQLite database.
func (c *LiteConfig) SessionDBPath() string {
	return filepath.Join(c.DataDir, "sessions.db")
}

// ReportDir returns the directory PDF reports are written to.
func (c *LiteConfig) ReportDir() string {
	return filepath.Join(c.DataDir, "reports")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.ReportDir(), 0755)
}

// SessionConfig selects the SQLite session store under DataDir.
func (c *LiteConfig) SessionConfig() domain.SessionConfig {
	return domain.SessionConfig{
		Backend:    domain.SessionBackendSQLite,
		TTL:        c.SessionTTL,
		SQLitePath: c.SessionDBPath(),
	}
}

// ExtractorConfig returns the extraction settings. The console makes one
// call per turn, so rate limiting is left off.
func (c *LiteConfig) ExtractorConfig() domain.ExtractorConfig {
	return domain.ExtractorConfig{
		BaseURL:      c.LLMBaseURL,
		APIKey:       c.LLMAPIKey,
		Model:        c.LLMModel,
		Timeout:      c.LLMTimeout,
		CacheEnabled: true,
	}
}

// LoggingConfig writes logs to stderr so they do not interleave with the
// dialogue on stdout.
func (c *LiteConfig) LoggingConfig() domain.LoggingConfig {
	return domain.LoggingConfig{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		Output: "stderr",
	}
}
