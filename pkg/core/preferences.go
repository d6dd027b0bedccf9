package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Preferences are the application-level settings read once at startup.
// Gateway identity does NOT live here; it is stored by the settings
// provider and injected per call.
type Preferences struct {
	// LogRetentionDays controls the startup sweep of old log files.
	LogRetentionDays int `yaml:"logRetentionDays"`
	// MaxImageEdge bounds the longest edge of outbound image
	// attachments; larger images are downscaled before upload.
	MaxImageEdge int `yaml:"maxImageEdge"`
	// RequestTimeoutSeconds applies to gateway HTTP calls.
	// 0 disables the timeout.
	RequestTimeoutSeconds int `yaml:"requestTimeoutSeconds"`
}

// DefaultPreferences returns the values used when no config file exists.
func DefaultPreferences() Preferences {
	return Preferences{
		LogRetentionDays:      14,
		MaxImageEdge:          1600,
		RequestTimeoutSeconds: 0,
	}
}

// PreferencesPath returns the canonical config file location.
func PreferencesPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config dir: %w", err)
	}
	return filepath.Join(configDir, "Prontu", "config.yaml"), nil
}

// LoadPreferences reads the YAML preferences file. A missing file is
// not an error; defaults are returned.
func LoadPreferences(path string) (Preferences, error) {
	prefs := DefaultPreferences()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("could not read preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return DefaultPreferences(), fmt.Errorf("could not parse preferences: %w", err)
	}

	if prefs.LogRetentionDays < 0 {
		prefs.LogRetentionDays = 0
	}
	if prefs.MaxImageEdge <= 0 {
		prefs.MaxImageEdge = DefaultPreferences().MaxImageEdge
	}
	if prefs.RequestTimeoutSeconds < 0 {
		prefs.RequestTimeoutSeconds = 0
	}
	return prefs, nil
}
