package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath is where the CLI looks for settings when no --config flag is
// given.
const DefaultPath = "~/.doodates/config.json"

// Config holds the persisted settings: which model answers chat messages and
// which middlewares run on each turn.
type Config struct {
	Model       string              `json:"model"`
	Provider    string              `json:"provider"`
	BaseURL     string              `json:"base_url,omitempty"`
	APIKey      string              `json:"api_key,omitempty"`
	PollFile    string              `json:"poll_file,omitempty"`
	Middlewares []MiddlewareSetting `json:"middlewares,omitempty"`
}

// MiddlewareSetting holds the user's choice for a specific middleware.
type MiddlewareSetting struct {
	ID      string            `json:"id"`
	Enabled bool              `json:"enabled"`
	EnvVars map[string]string `json:"env_vars,omitempty"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Model:    "llama3.2",
		Provider: "ollama",
	}
}

// LoadFromFile loads the configuration from a JSON file.
func LoadFromFile(path string) (*Config, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveToFile writes the configuration as indented JSON, creating the parent
// directory if needed.
func (cfg *Config) SaveToFile(path string) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}
