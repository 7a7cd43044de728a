// Package config provides configuration loading for stillalive.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schema string

var ErrInvalidConfig = errors.New("invalid config")

// Config represents the stillalive configuration file structure.
type Config struct {
	// Language selects resource/portal_<language>.txt.
	Language string   `json:"language,omitempty"`
	Volume   *float64 `json:"volume,omitempty"`
	// GameDir overrides Steam discovery of the Portal install.
	GameDir string `json:"game_dir,omitempty"`
	// Data is a directory or archive holding the loose resources.
	Data     string `json:"data,omitempty"`
	LogFile  string `json:"log_file,omitempty"`
	LogLevel string `json:"log_level,omitempty"`
}

const (
	DefaultLanguage = "english"
	DefaultVolume   = 0.2
	DefaultLogLevel = "info"
)

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	volume := DefaultVolume
	return &Config{
		Language: DefaultLanguage,
		Volume:   &volume,
		LogLevel: DefaultLogLevel,
	}
}

// ConfigDir returns the stillalive config directory (~/.stillalive).
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".stillalive")
}

// ConfigPath returns the path to the config file (~/.stillalive/config.json).
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load loads the config from ~/.stillalive/config.json.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile loads and validates a config file, filling in defaults for
// missing fields. A missing file gives the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	defaults := DefaultConfig()
	if config.Language == "" {
		config.Language = defaults.Language
	}
	if config.Volume == nil {
		config.Volume = defaults.Volume
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	return &config, nil
}

// Validate checks a config document against the embedded JSON schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// VolumeOr returns the configured volume, or def when none is set.
func (c *Config) VolumeOr(def float64) float64 {
	if c == nil || c.Volume == nil {
		return def
	}
	return *c.Volume
}
