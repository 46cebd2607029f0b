package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := struct {
			Version   string `json:"version"`
			Commit    string `json:"commit"`
			BuildDate string `json:"buildDate"`
			GoVersion string `json:"goVersion"`
		}{Version, Commit, BuildDate, runtime.Version()}

		return printResult(info, func() {
			fmt.Printf("jinkoctl %s (commit %s, built %s, %s)\n", info.Version, info.Commit, info.BuildDate, info.GoVersion)
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
