package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Config represents the flat fieldforms configuration. Besides connection
// settings it carries the resumable reference to the active submission, so
// a later invocation resumes the same record instead of creating a duplicate.
type Config struct {
	Version   string `json:"version"`
	APIURL    string `json:"api_url"`
	AccessKey string `json:"access_key,omitempty"` // opaque caller-supplied token

	// DeviceID is generated once per device and used for provenance only,
	// never for identity or routing.
	DeviceID string `json:"device_id"`

	// Resumable reference to the active submission.
	ActiveSubmissionID string `json:"active_submission_id,omitempty"`
	Mode               string `json:"mode,omitempty"` // "new" or "edit"
	CreatedAtLocked    string `json:"created_at_locked,omitempty"`
}

// Dir returns the fieldforms config directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".fieldforms"), nil
}

// LoadConfig reads config.json from the specified directory.
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// EnsureDeviceID fills in a persisted device id on first use.
func EnsureDeviceID(cfg *Config) string {
	if cfg.DeviceID == "" {
		cfg.DeviceID = uuid.NewString()
	}
	return cfg.DeviceID
}
