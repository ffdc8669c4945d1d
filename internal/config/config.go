// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"effort-estimate/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// AI contains AI collaborator settings
	AI AIConfig `json:"ai"`

	// Catalog contains catalog source settings
	Catalog CatalogConfig `json:"catalog"`

	// Storage contains snapshot storage settings
	Storage StorageConfig `json:"storage"`

	// Server contains API server settings
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// AIConfig contains AI collaborator settings
type AIConfig struct {
	// BaseURL is the base URL of the suggestion service
	BaseURL string `json:"base_url"`

	// APIKey authenticates against the suggestion service
	APIKey string `json:"api_key,omitempty"`

	// TimeoutSeconds bounds each collaborator request
	TimeoutSeconds int `json:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration
func (c AIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CatalogConfig contains catalog source settings
type CatalogConfig struct {
	// Source selects the catalog backend (demo, hcl, postgres)
	Source string `json:"source"`

	// Dir is the directory holding .hcl catalog files (source=hcl)
	Dir string `json:"dir,omitempty"`

	// CacheSize is the size of the per-category activity cache
	CacheSize int `json:"cache_size"`
}

// StorageConfig contains snapshot storage settings
type StorageConfig struct {
	// Backend selects the storage backend (memory, file, postgres)
	Backend string `json:"backend"`

	// Path is the base directory for the file backend
	Path string `json:"path,omitempty"`

	// DSN is the connection string for the postgres backend
	DSN string `json:"dsn,omitempty"`
}

// ServerConfig contains API server settings
type ServerConfig struct {
	// Listen is the address the HTTP server binds to
	Listen string `json:"listen"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	storePath := filepath.Join(homeDir, ".effort-estimate", "snapshots")

	return &Config{
		Version: "1.0",
		AI: AIConfig{
			BaseURL:        "http://localhost:8090",
			TimeoutSeconds: 60,
		},
		Catalog: CatalogConfig{
			Source:    "demo",
			CacheSize: 64,
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    storePath,
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
