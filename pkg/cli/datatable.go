package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/novainsilico/jinkoctl/pkg/datatable"
)

var dataTableMeta metaFlags

var dataTableCmd = &cobra.Command{
	Use:   "datatable",
	Short: "Manage data tables",
}

var dataTableUploadCmd = &cobra.Command{
	Use:   "upload CSV_FILE",
	Short: "Convert a CSV data table to SQLite and upload it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encoded, err := datatable.Encode(args[0])
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		id, err := client.PostDataTable(cmd.Context(), encoded, dataTableMeta.meta())
		if err != nil {
			return fmt.Errorf("%s", FormatConnectionError(err))
		}
		return printItemID(id)
	},
}

var dataTableConvertCmd = &cobra.Command{
	Use:   "convert CSV_FILE",
	Short: "Convert a CSV data table to SQLite locally, without uploading",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sqlitePath, err := datatable.EncodeToFile(args[0])
		if err != nil {
			return err
		}
		return printResult(map[string]string{"sqlite": sqlitePath}, func() {
			fmt.Fprintln(os.Stderr, "Wrote", sqlitePath)
		})
	},
}

func init() {
	dataTableMeta.register(dataTableUploadCmd)
	dataTableCmd.AddCommand(dataTableUploadCmd)
	dataTableCmd.AddCommand(dataTableConvertCmd)
	rootCmd.AddCommand(dataTableCmd)
}
