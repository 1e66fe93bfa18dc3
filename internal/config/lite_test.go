package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medemi-triage-server/internal/domain"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, "data/doctors.json", cfg.DirectoryPath)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLMBaseURL)
	assert.Equal(t, "mistral:7b", cfg.LLMModel)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, "mistral:7b", cfg.LLMModel)
	assert.Empty(t, cfg.FontPath)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("MEDEMI_DATA_DIR", "/tmp/test-medemi")
	t.Setenv("MEDEMI_DIRECTORY_PATH", "/srv/doctors.json")
	t.Setenv("MEDEMI_REPORT_FONT_PATH", "/srv/fonts/DejaVuSans.ttf")
	t.Setenv("MEDEMI_SESSION_TTL", "2h")
	t.Setenv("MEDEMI_LLM_BASE_URL", "http://llm.internal:8000/v1")
	t.Setenv("MEDEMI_LLM_MODEL", "llama3")
	t.Setenv("MEDEMI_LLM_API_KEY", "secret")
	t.Setenv("MEDEMI_LLM_TIMEOUT", "45")
	t.Setenv("MEDEMI_LOG_LEVEL", "debug")
	t.Setenv("MEDEMI_LOG_FORMAT", "json")

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-medemi", cfg.DataDir)
	assert.Equal(t, "/srv/doctors.json", cfg.DirectoryPath)
	assert.Equal(t, "/srv/fonts/DejaVuSans.ttf", cfg.FontPath)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "http://llm.internal:8000/v1", cfg.LLMBaseURL)
	assert.Equal(t, "llama3", cfg.LLMModel)
	assert.Equal(t, "secret", cfg.LLMAPIKey)
	assert.Equal(t, 45*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_IgnoresInvalidDurations(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("MEDEMI_SESSION_TTL", "forever")
	t.Setenv("MEDEMI_LLM_TIMEOUT", "-5s")

	cfg := LoadLiteConfig()

	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
}

func TestLiteConfig_Paths(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.medemi-triage"}

	assert.Equal(t, "/home/user/.medemi-triage/sessions.db", cfg.SessionDBPath())
	assert.Equal(t, "/home/user/.medemi-triage/reports", cfg.ReportDir())
}

func TestLiteConfig_DerivedSections(t *testing.T) {
	cfg := DefaultLiteConfig()
	cfg.DataDir = "/data"

	session := cfg.SessionConfig()
	assert.Equal(t, domain.SessionBackendSQLite, session.Backend)
	assert.Equal(t, "/data/sessions.db", session.SQLitePath)

	extractor := cfg.ExtractorConfig()
	assert.Equal(t, cfg.LLMBaseURL, extractor.BaseURL)
	assert.True(t, extractor.CacheEnabled)
	assert.Zero(t, extractor.RateLimit)

	assert.Equal(t, "stderr", cfg.LoggingConfig().Output)
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: filepath.Join(t.TempDir(), "medemi")}

	err := cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)

	_, err = os.Stat(cfg.ReportDir())
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"MEDEMI_DATA_DIR",
		"MEDEMI_DIRECTORY_PATH",
		"MEDEMI_REPORT_FONT_PATH",
		"MEDEMI_SESSION_TTL",
		"MEDEMI_LLM_BASE_URL",
		"MEDEMI_LLM_MODEL",
		"MEDEMI_LLM_API_KEY",
		"MEDEMI_LLM_TIMEOUT",
		"MEDEMI_LOG_LEVEL",
		"MEDEMI_LOG_FORMAT",
	}
	for _, v := range vars {
		// t.Setenv restores the previous value when the test ends.
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}
