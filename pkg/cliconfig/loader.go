package cliconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GlobalConfigDir is the directory under the user config dir for global config.
const GlobalConfigDir = "jinko"

// LocalConfigFileNames are the names searched for local config, in order.
// config.json is the legacy config file and stays supported.
var LocalConfigFileNames = []string{".jinkorc.yaml", ".jinkorc.yml", "config.json"}

// GlobalConfigFileNames are the names searched for global config, in order.
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// FindLocalConfig searches the current directory for a local config file.
// Returns empty string when none exists.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(cwd, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// FindGlobalConfig returns the path to the global config file, or empty
// string when none exists.
func FindGlobalConfig() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", nil
	}
	for _, name := range GlobalConfigFileNames {
		path := filepath.Join(configDir, GlobalConfigDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// ConfigError represents a configuration file error.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

// LoadConfigFile loads a CLIConfig from a YAML or JSON file. Files ending in
// .json use the legacy snake_case keys; everything else is parsed as YAML.
func LoadConfigFile(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg CLIConfig
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}

	cfg.Sources = make(map[string]string)
	return &cfg, nil
}

// MergeConfig copies non-zero values from src into dst, recording the source.
func MergeConfig(dst, src *CLIConfig, source string) {
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
		dst.Sources["baseUrl"] = source
	}
	if src.ProjectID != "" {
		dst.ProjectID = src.ProjectID
		dst.Sources["projectId"] = source
	}
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
		dst.Sources["apiKey"] = source
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
		dst.Sources["logLevel"] = source
	}
	if src.Verbose {
		dst.Verbose = true
		dst.Sources["verbose"] = source
	}
	if src.JSON {
		dst.JSON = true
		dst.Sources["json"] = source
	}
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *CLIConfig) {
	if v := os.Getenv("JINKO_BASE_URL"); v != "" {
		cfg.BaseURL = v
		cfg.Sources["baseUrl"] = SourceEnv
	}
	if v := os.Getenv("JINKO_PROJECT_ID"); v != "" {
		cfg.ProjectID = v
		cfg.Sources["projectId"] = SourceEnv
	}
	if v := os.Getenv("JINKO_API_KEY"); v != "" {
		cfg.APIKey = v
		cfg.Sources["apiKey"] = SourceEnv
	}
	if v := os.Getenv("JINKO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		cfg.Sources["logLevel"] = SourceEnv
	}
}

// LoadAll loads configuration from all sources and merges them.
// Precedence: env > local config > global config > defaults. Flags are
// applied on top by the caller.
func LoadAll() (*CLIConfig, error) {
	cfg := NewDefault()

	if globalPath, err := FindGlobalConfig(); err == nil && globalPath != "" {
		if globalCfg, err := LoadConfigFile(globalPath); err == nil {
			MergeConfig(cfg, globalCfg, SourceGlobal)
		}
	}

	if localPath, err := FindLocalConfig(); err == nil && localPath != "" {
		if localCfg, err := LoadConfigFile(localPath); err == nil {
			MergeConfig(cfg, localCfg, SourceLocal)
		}
	}

	applyEnv(cfg)

	if cfg.APIKey == "" {
		if key, err := LoadAPIKeyFromFile(); err == nil && key != "" {
			cfg.APIKey = key
			cfg.Sources["apiKey"] = SourceKeyFile
		}
	}

	return cfg, nil
}
