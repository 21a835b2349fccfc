// Package config handles global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/citefill/config.yml.
type GlobalConfig struct {
	S2APIKey       string `yaml:"s2_api_key,omitempty"`
	CrossrefMailto string `yaml:"crossref_mailto,omitempty"`
	MinDelaySecs   int    `yaml:"min_delay_seconds,omitempty"`
	MaxDelaySecs   int    `yaml:"max_delay_seconds,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "citefill"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/citefill/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetS2APIKey returns the Semantic Scholar API key from global config.
func GetS2APIKey() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.S2APIKey
}

// GetCrossrefMailto returns the CrossRef contact address from global config.
func GetCrossrefMailto() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.CrossrefMailto
}

// DelayWindow returns the configured politeness window, or (0, 0) when the
// config leaves the defaults in place.
func DelayWindow() (time.Duration, time.Duration) {
	cfg, _ := LoadGlobalConfig()
	if cfg.MinDelaySecs <= 0 || cfg.MaxDelaySecs < cfg.MinDelaySecs {
		return 0, 0
	}
	return time.Duration(cfg.MinDelaySecs) * time.Second,
		time.Duration(cfg.MaxDelaySecs) * time.Second
}
