// Package cli implements the jinkoctl command surface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/novainsilico/jinkoctl/pkg/cliconfig"
	"github.com/novainsilico/jinkoctl/pkg/jinko"
	"github.com/novainsilico/jinkoctl/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	flagBaseURL   string
	flagProjectID string
	flagAPIKey    string
	jsonOutput    bool
	verbose       bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jinkoctl",
	Short: "jinkoctl is a client for the Jinko trial simulation API",
	Long: `jinkoctl uploads models, virtual populations, protocols, and data tables to
the Jinko API, runs trials, and retrieves their results.

Credentials can be provided via flags, environment variables (JINKO_PROJECT_ID,
JINKO_API_KEY, JINKO_BASE_URL), or a configuration file. By default, jinkoctl
looks for .jinkorc.yaml or config.json in the current directory and
~/.config/jinko/config.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Jinko API base URL (default: https://api.jinko.ai)")
	rootCmd.PersistentFlags().StringVar(&flagProjectID, "project", "", "Project ID")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "API key")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// resolveConfig merges flags over the layered configuration.
func resolveConfig() *cliconfig.ClientConfig {
	return cliconfig.ResolveClientConfig(flagBaseURL, flagProjectID, flagAPIKey)
}

// newClient builds an API client from the resolved configuration.
func newClient() (*jinko.Client, error) {
	cfg := resolveConfig()
	if cfg.ProjectID == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("missing credentials: set --project and --api-key, JINKO_PROJECT_ID and JINKO_API_KEY, or a config file")
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if verbose {
		level = logging.LevelDebug
	}

	return jinko.New(cfg.ProjectID, cfg.APIKey,
		jinko.WithBaseURL(cfg.BaseURL),
		jinko.WithLogger(logging.NewWithLevel(level)),
	)
}
