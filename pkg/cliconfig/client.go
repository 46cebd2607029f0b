package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultKeyFileName is the file name used for storing an API key outside of
// config files.
const DefaultKeyFileName = "api-key"

// GetAPIKeyFilePath returns the default path for the API key file.
// Location: $XDG_DATA_HOME/jinko/api-key (or ~/.local/share/jinko/api-key).
func GetAPIKeyFilePath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, GlobalConfigDir, DefaultKeyFileName)
}

// LoadAPIKeyFromFile loads the API key from the default file location.
// A missing file is not an error; it returns an empty key.
func LoadAPIKeyFromFile() (string, error) {
	return LoadAPIKeyFromPath(GetAPIKeyFilePath())
}

// LoadAPIKeyFromPath loads the API key from a specific file path.
func LoadAPIKeyFromPath(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ClientConfig holds resolved configuration for creating an API client.
// This is the single source of truth for CLI commands needing to connect.
type ClientConfig struct {
	// BaseURL is the resolved API base URL.
	BaseURL string

	// ProjectID is the resolved project id.
	ProjectID string

	// APIKey is the resolved API key.
	APIKey string

	// LogLevel is the resolved log level name.
	LogLevel string
}

// ResolveClientConfig resolves client configuration from all sources. Pass
// empty strings for flag values that were not provided.
// Priority for each field: flag > env > local config > global config > key file.
func ResolveClientConfig(flagBaseURL, flagProjectID, flagAPIKey string) *ClientConfig {
	cfg, _ := LoadAll()

	out := &ClientConfig{
		BaseURL:   cfg.BaseURL,
		ProjectID: cfg.ProjectID,
		APIKey:    cfg.APIKey,
		LogLevel:  cfg.LogLevel,
	}
	if flagBaseURL != "" {
		out.BaseURL = flagBaseURL
	}
	if flagProjectID != "" {
		out.ProjectID = flagProjectID
	}
	if flagAPIKey != "" {
		out.APIKey = flagAPIKey
	}
	return out
}
