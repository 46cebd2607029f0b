package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novainsilico/jinkoctl/pkg/cliconfig"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and where each value came from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cliconfig.LoadAll()
		if err != nil {
			return err
		}

		type entry struct {
			Key    string `json:"key"`
			Value  string `json:"value"`
			Source string `json:"source"`
		}
		entries := []entry{
			{"baseUrl", cfg.BaseURL, cfg.Sources["baseUrl"]},
			{"projectId", cfg.ProjectID, cfg.Sources["projectId"]},
			{"apiKey", maskKey(cfg.APIKey), cfg.Sources["apiKey"]},
			{"logLevel", cfg.LogLevel, cfg.Sources["logLevel"]},
		}
		for i := range entries {
			if entries[i].Source == "" {
				entries[i].Source = cliconfig.SourceDefault
			}
		}

		return printResult(entries, func() {
			w := table()
			fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, e.Value, e.Source)
			}
			_ = w.Flush()
		})
	},
}

// maskKey hides all but the last four characters of an API key.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
}
