package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var vpopMeta metaFlags

var vpopCmd = &cobra.Command{
	Use:   "vpop",
	Short: "Manage virtual populations",
}

var vpopUploadCmd = &cobra.Command{
	Use:   "upload CSV_FILE",
	Short: "Upload a virtual population from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read vpop: %w", err)
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		id, err := client.PostVpopCSV(cmd.Context(), string(data), vpopMeta.meta())
		if err != nil {
			return fmt.Errorf("%s", FormatConnectionError(err))
		}
		return printItemID(id)
	},
}

func init() {
	vpopMeta.register(vpopUploadCmd)
	vpopCmd.AddCommand(vpopUploadCmd)
	rootCmd.AddCommand(vpopCmd)
}
