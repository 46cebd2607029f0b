package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/novainsilico/jinkoctl/pkg/validation"
)

var (
	validateFile string
	validateKind string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a resource file locally before uploading it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(validateFile)
		if err != nil {
			return err
		}

		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("%s: %w", validateFile, err)
		}

		if err := validation.Validate(validation.Kind(validateKind), doc); err != nil {
			return err
		}
		return printResult(map[string]string{"file": validateFile, "type": validateKind, "status": "valid"}, func() {
			fmt.Printf("%s is a valid %s payload\n", validateFile, validateKind)
		})
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Resource JSON file (required)")
	validateCmd.Flags().StringVarP(&validateKind, "type", "t", "", "Resource type: "+strings.Join(validation.Kinds(), ", "))
	_ = validateCmd.MarkFlagRequired("file")
	_ = validateCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(validateCmd)
}
