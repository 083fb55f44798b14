package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".lodprobe"

// ErrConfigNotFound is returned when the configuration file does not
// exist. Callers decide how to handle it based on whether the path was
// explicitly specified by the user.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads per-endpoint overrides from a YAML file.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Endpoints == nil {
		cf.Endpoints = make(map[string]EndpointConfig)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file:
//  1. If configPath is specified, use it directly
//  2. Look for .lodprobe in the current directory
//  3. Look for .lodprobe in the user's home directory
//
// Returns the path if found, or the empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
