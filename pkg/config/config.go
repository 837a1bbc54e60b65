/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ssargent/geostore/pkg/store"
	"gopkg.in/yaml.v3"
)

// Config represents the geostore configuration
type Config struct {
	DataDir        string `yaml:"data_dir"`
	StoreFile      string `yaml:"store_file"`
	IndexFile      string `yaml:"index_file"`
	SortedIndexDir string `yaml:"sorted_index_dir"`
	TypeTag        string `yaml:"type_tag"`

	// BulkDecodeFailure applies to whole-file reads, LookupDecodeFailure to
	// single key lookups. Each is "drop" or "propagate".
	BulkDecodeFailure   string `yaml:"bulk_decode_failure"`
	LookupDecodeFailure string `yaml:"lookup_decode_failure"`

	Server   Server   `yaml:"server"`
	Security Security `yaml:"security"`
	Logging  Logging  `yaml:"logging"`
}

// Server contains HTTP server configuration
type Server struct {
	Port int    `yaml:"port"`
	Bind string `yaml:"bind"`
}

// Security contains security-related configuration
type Security struct {
	// APIKey guards the read API when set
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:             "./data",
		StoreFile:           "us_postal_codes.dat",
		IndexFile:           "us_postal_codes.idx",
		SortedIndexDir:      "us_postal_codes.sorted",
		TypeTag:             store.DefaultTypeTag,
		BulkDecodeFailure:   store.DropRecord.String(),
		LookupDecodeFailure: store.Propagate.String(),
		Server: Server{
			Port: 8080,
			Bind: "127.0.0.1",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from the specified path. Fields missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600, the file may carry an API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that every field holds a usable value
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	for name, value := range map[string]string{
		"store_file":       c.StoreFile,
		"index_file":       c.IndexFile,
		"sorted_index_dir": c.SortedIndexDir,
	} {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if len(c.TypeTag) > store.MaxTypeTagLength || strings.IndexByte(c.TypeTag, 0) >= 0 {
		return fmt.Errorf("type_tag %q is not a valid store type tag", c.TypeTag)
	}

	if _, err := c.BulkDecodePolicy(); err != nil {
		return fmt.Errorf("bulk_decode_failure: %w", err)
	}
	if _, err := c.LookupDecodePolicy(); err != nil {
		return fmt.Errorf("lookup_decode_failure: %w", err)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// StorePath returns the store file path, resolved under DataDir when relative
func (c *Config) StorePath() string {
	return c.resolve(c.StoreFile)
}

// IndexPath returns the text index path, resolved under DataDir when relative
func (c *Config) IndexPath() string {
	return c.resolve(c.IndexFile)
}

// SortedIndexPath returns the pebble index directory, resolved under DataDir
// when relative
func (c *Config) SortedIndexPath() string {
	return c.resolve(c.SortedIndexDir)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// BulkDecodePolicy parses BulkDecodeFailure, defaulting to drop
func (c *Config) BulkDecodePolicy() (store.DecodeFailurePolicy, error) {
	if c.BulkDecodeFailure == "" {
		return store.DropRecord, nil
	}
	return store.ParseDecodeFailurePolicy(c.BulkDecodeFailure)
}

// LookupDecodePolicy parses LookupDecodeFailure, defaulting to propagate
func (c *Config) LookupDecodePolicy() (store.DecodeFailurePolicy, error) {
	if c.LookupDecodeFailure == "" {
		return store.Propagate, nil
	}
	return store.ParseDecodeFailurePolicy(c.LookupDecodeFailure)
}

// LogLevel parses Logging.Level
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Logging.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a default configuration with a generated API key
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Security.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./geostore.yaml"
	}

	// ~/.config/geostore/config.yaml on Linux and macOS
	configDir := filepath.Join(homeDir, ".config", "geostore")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return err == nil
}
