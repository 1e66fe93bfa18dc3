package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/medemi-triage-server/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. MEDEMI_SERVER_PORT.
const EnvPrefix = "MEDEMI"

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v          *viper.Viper
	configFile string
	config     *domain.Config
}

// NewManager creates a new configuration manager. An empty configFile
// searches the default locations for config.yaml.
func NewManager(configFile string) (*Manager, error) {
	m := &Manager{configFile: configFile}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := viper.New()

	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/medemi-triage/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// A missing config file is fine: defaults and environment still apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults registers a default for every key so AutomaticEnv can
// override any of them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "90s")
	v.SetDefault("server.tls_enabled", false)
	v.SetDefault("server.cert_file", "")
	v.SetDefault("server.key_file", "")

	// Database defaults; an empty host keeps PostgreSQL disabled
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "medemi_triage")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.migrations_path", "migrations")

	// Cache defaults; an empty URL disables the shared extraction cache
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.default_ttl", "1h")
	v.SetDefault("cache.max_retries", 3)
	v.SetDefault("cache.pool_size", 10)
	v.SetDefault("cache.pool_timeout", "4s")
	v.SetDefault("cache.memory_items", 1000)

	// Extractor defaults target a local Ollama server
	v.SetDefault("extractor.base_url", "http://localhost:11434/v1")
	v.SetDefault("extractor.api_key", "ollama")
	v.SetDefault("extractor.model", "mistral:7b")
	v.SetDefault("extractor.temperature", 0.0)
	v.SetDefault("extractor.timeout", "30s")
	v.SetDefault("extractor.rate_limit", 2.0)
	v.SetDefault("extractor.burst", 4)
	v.SetDefault("extractor.cache_enabled", true)
	v.SetDefault("extractor.cache_ttl", "1h")
	v.SetDefault("extractor.circuit_breaker.max_requests", 5)
	v.SetDefault("extractor.circuit_breaker.interval", "30s")
	v.SetDefault("extractor.circuit_breaker.timeout", "60s")
	v.SetDefault("extractor.circuit_breaker.failure_ratio", 0.6)
	v.SetDefault("extractor.circuit_breaker.min_requests", 3)

	// Session defaults
	v.SetDefault("session.backend", domain.SessionBackendMemory)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.max_sessions", 10000)
	v.SetDefault("session.sqlite_path", "medemi-sessions.db")

	v.SetDefault("directory.path", "data/doctors.json")
	v.SetDefault("report.font_path", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	// MCP defaults
	v.SetDefault("mcp.server_name", "medemi-triage")
	v.SetDefault("mcp.server_version", "v0.1.0")
	v.SetDefault("mcp.transport_type", "stdio")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// GetExtractorConfig returns the extraction endpoint configuration
func (m *Manager) GetExtractorConfig() *domain.ExtractorConfig {
	return &m.config.Extractor
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true,
	"error": true, "fatal": true, "panic": true,
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.TLSEnabled && (config.Server.CertFile == "" || config.Server.KeyFile == "") {
		return fmt.Errorf("TLS requires both cert_file and key_file")
	}

	if config.Extractor.BaseURL == "" {
		return fmt.Errorf("extractor base URL is required")
	}
	if config.Extractor.Timeout < 0 {
		return fmt.Errorf("invalid extractor timeout: %s", config.Extractor.Timeout)
	}
	if ratio := config.Extractor.CircuitBreaker.FailureRatio; ratio < 0 || ratio > 1 {
		return fmt.Errorf("circuit breaker failure ratio must be within [0,1], got %v", ratio)
	}

	switch config.Session.Backend {
	case "", domain.SessionBackendMemory:
	case domain.SessionBackendSQLite:
		if config.Session.SQLitePath == "" {
			return fmt.Errorf("sqlite session backend requires session.sqlite_path")
		}
	case domain.SessionBackendPostgres:
		if !config.Database.Enabled() {
			return fmt.Errorf("postgres session backend requires database.host")
		}
	case domain.SessionBackendRedis:
		if config.Cache.RedisURL == "" {
			return fmt.Errorf("redis session backend requires cache.redis_url")
		}
	default:
		return fmt.Errorf("unknown session backend: %s", config.Session.Backend)
	}

	if config.Database.Enabled() {
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if config.Database.Username == "" {
			return fmt.Errorf("database username is required")
		}
	}

	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}
	switch strings.ToLower(config.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted database connection string
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetDatabaseURL returns the database as a postgres:// URL, the form
// expected by golang-migrate and lib/pq.
func (m *Manager) GetDatabaseURL() string {
	db := m.config.Database
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.Username, db.Password),
		Host:     db.Host + ":" + strconv.Itoa(db.Port),
		Path:     "/" + db.Database,
		RawQuery: "sslmode=" + url.QueryEscape(db.SSLMode),
	}
	return u.String()
}

// GetRedisConnectionString returns the Redis connection string
func (m *Manager) GetRedisConnectionString() string {
	return m.config.Cache.RedisURL
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.config.Environment)
	return env == "development" || env == "dev" || env == ""
}
