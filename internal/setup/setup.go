// Package setup registers the triage MCP server with desktop MCP clients.
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ServerKey is the entry name used in the client's mcpServers map.
const ServerKey = "medemi-triage"

// DesktopConfig is the client configuration file. Unknown top-level keys
// are preserved on save.
type DesktopConfig struct {
	MCPServers map[string]ServerEntry `json:"mcpServers"`
	extra      map[string]json.RawMessage
}

// ServerEntry launches one MCP server.
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Options describes the registration to write.
type Options struct {
	// ConfigPath overrides the client configuration location.
	ConfigPath string
	BinaryPath string
	// ServerConfig is passed to the server as --config when set.
	ServerConfig string
	Env          map[string]string
}

// Status describes the current registration.
type Status struct {
	ConfigPath string
	Registered bool
	Entry      ServerEntry
	Issues     []string
}

// DesktopConfigPath returns the client configuration path for goos.
func DesktopConfigPath(goos string) (string, error) {
	switch goos {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json"), nil
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "Claude", "claude_desktop_config.json"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		return filepath.Join(appData, "Claude", "claude_desktop_config.json"), nil
	default:
		return "", fmt.Errorf("unsupported operating system: %s", goos)
	}
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return DesktopConfigPath(runtime.GOOS)
}

// LoadDesktopConfig reads the client configuration. A missing file yields an
// empty configuration.
func LoadDesktopConfig(path string) (*DesktopConfig, error) {
	cfg := &DesktopConfig{MCPServers: map[string]ServerEntry{}, extra: map[string]json.RawMessage{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg.extra); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw, ok := cfg.extra["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &cfg.MCPServers); err != nil {
			return nil, fmt.Errorf("failed to parse mcpServers: %w", err)
		}
		delete(cfg.extra, "mcpServers")
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = map[string]ServerEntry{}
	}
	return cfg, nil
}

// SaveDesktopConfig writes the client configuration, creating its directory.
func SaveDesktopConfig(path string, cfg *DesktopConfig) error {
	out := make(map[string]any, len(cfg.extra)+1)
	for k, v := range cfg.extra {
		out[k] = v
	}
	out["mcpServers"] = cfg.MCPServers

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Register adds or replaces the triage server entry and returns the path
// written.
func Register(opts Options) (string, error) {
	if opts.BinaryPath == "" {
		return "", fmt.Errorf("server binary path is required")
	}
	path, err := resolveConfigPath(opts.ConfigPath)
	if err != nil {
		return "", err
	}

	cfg, err := LoadDesktopConfig(path)
	if err != nil {
		return "", err
	}

	entry := ServerEntry{Command: opts.BinaryPath, Env: opts.Env}
	if opts.ServerConfig != "" {
		abs, err := filepath.Abs(opts.ServerConfig)
		if err != nil {
			return "", fmt.Errorf("resolving server config: %w", err)
		}
		entry.Args = []string{"--config", abs}
	}
	cfg.MCPServers[ServerKey] = entry

	if err := SaveDesktopConfig(path, cfg); err != nil {
		return "", err
	}
	return path, nil
}

// GetStatus reports whether the triage server is registered and whether its
// binary and config still exist.
func GetStatus(configPath string) (*Status, error) {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, err
	}
	status := &Status{ConfigPath: path}

	cfg, err := LoadDesktopConfig(path)
	if err != nil {
		return nil, err
	}

	entry, ok := cfg.MCPServers[ServerKey]
	if !ok {
		status.Issues = append(status.Issues, "triage server is not registered")
		return status, nil
	}
	status.Registered = true
	status.Entry = entry

	if _, err := os.Stat(entry.Command); err != nil {
		status.Issues = append(status.Issues, fmt.Sprintf("server binary not found: %s", entry.Command))
	}
	for i := 0; i+1 < len(entry.Args); i++ {
		if entry.Args[i] == "--config" {
			if _, err := os.Stat(entry.Args[i+1]); err != nil {
				status.Issues = append(status.Issues, fmt.Sprintf("server config not found: %s", entry.Args[i+1]))
			}
		}
	}
	return status, nil
}
