package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	modelMeta       metaFlags
	modelFile       string
	solvingOptsFile string
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage computational models",
}

var modelUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a computational model with its solving options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := os.ReadFile(modelFile)
		if err != nil {
			return fmt.Errorf("read model: %w", err)
		}
		var solving json.RawMessage
		if solvingOptsFile != "" {
			data, err := os.ReadFile(solvingOptsFile)
			if err != nil {
				return fmt.Errorf("read solving options: %w", err)
			}
			solving = json.RawMessage(data)
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		id, err := client.PostModel(cmd.Context(), json.RawMessage(model), solving, modelMeta.meta())
		if err != nil {
			return fmt.Errorf("%s", FormatConnectionError(err))
		}
		return printItemID(id)
	},
}

func init() {
	modelUploadCmd.Flags().StringVarP(&modelFile, "model", "m", "", "Model JSON file (required)")
	modelUploadCmd.Flags().StringVar(&solvingOptsFile, "solving-options", "", "Solving options JSON file")
	_ = modelUploadCmd.MarkFlagRequired("model")
	modelMeta.register(modelUploadCmd)

	modelCmd.AddCommand(modelUploadCmd)
	rootCmd.AddCommand(modelCmd)
}
