// Package cliconfig provides configuration types and loading for the jinkoctl CLI.
package cliconfig

// CLIConfig represents the complete configuration for the jinkoctl CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Local config file (.jinkorc.yaml or config.json in current directory)
// 4. Global config file (~/.config/jinko/config.yaml)
// 5. Default values (lowest priority)
type CLIConfig struct {
	// API settings
	BaseURL   string `yaml:"baseUrl" json:"base_url"`
	ProjectID string `yaml:"projectId" json:"project_id"`
	APIKey    string `yaml:"apiKey,omitempty" json:"api_key,omitempty"`

	// Output settings
	LogLevel string `yaml:"logLevel,omitempty" json:"log_level,omitempty"`
	Verbose  bool   `yaml:"verbose" json:"verbose,omitempty"`
	JSON     bool   `yaml:"json" json:"json,omitempty"`

	// Sources tracks where each value came from (for `jinkoctl config`)
	Sources map[string]string `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFlag    = "flag"
	SourceKeyFile = "keyfile"
)

// DefaultBaseURL is the production Jinko API endpoint.
const DefaultBaseURL = "https://api.jinko.ai"

// NewDefault creates a CLIConfig with default values.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		BaseURL:  DefaultBaseURL,
		LogLevel: "info",
		Sources:  make(map[string]string),
	}
	cfg.Sources["baseUrl"] = SourceDefault
	cfg.Sources["logLevel"] = SourceDefault
	return cfg
}
