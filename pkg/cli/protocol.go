package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var protocolMeta metaFlags

var protocolCmd = &cobra.Command{
	Use:   "protocol",
	Short: "Manage protocol designs",
}

var protocolUploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Upload a protocol design from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read protocol: %w", err)
		}
		if !json.Valid(data) {
			return fmt.Errorf("%s is not valid JSON", args[0])
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		id, err := client.PostProtocol(cmd.Context(), json.RawMessage(data), protocolMeta.meta())
		if err != nil {
			return fmt.Errorf("%s", FormatConnectionError(err))
		}
		return printItemID(id)
	},
}

func init() {
	protocolMeta.register(protocolUploadCmd)
	protocolCmd.AddCommand(protocolUploadCmd)
	rootCmd.AddCommand(protocolCmd)
}
