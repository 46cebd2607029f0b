package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var itemRevision int

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Inspect project items",
}

var itemGetCmd = &cobra.Command{
	Use:   "get SHORT_ID",
	Short: "Get a project item by its short ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		item, err := client.GetProjectItem(cmd.Context(), args[0], itemRevision)
		if err != nil {
			return fmt.Errorf("%s", FormatConnectionError(err))
		}

		return printResult(item, func() {
			w := table()
			fmt.Fprintln(w, "FIELD\tVALUE")
			fmt.Fprintf(w, "name\t%s\n", item.Name)
			fmt.Fprintf(w, "type\t%s\n", item.Type)
			fmt.Fprintf(w, "sid\t%s\n", item.SID)
			fmt.Fprintf(w, "coreId\t%s\n", item.CoreID)
			if item.Revision > 0 {
				fmt.Fprintf(w, "revision\t%d\n", item.Revision)
			}
			_ = w.Flush()
		})
	},
}

var itemURLCmd = &cobra.Command{
	Use:   "url CORE_ITEM_ID",
	Short: "Get the shareable URL of a project item by its CoreItemId",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		itemURL, err := client.ProjectItemURL(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("%s", FormatConnectionError(err))
		}
		if itemURL == "" {
			return fmt.Errorf("item %s has no shareable URL", args[0])
		}

		return printResult(map[string]string{"url": itemURL}, func() {
			fmt.Println(itemURL)
		})
	},
}

func init() {
	itemGetCmd.Flags().IntVar(&itemRevision, "revision", 0, "Item revision (0 = latest)")
	itemCmd.AddCommand(itemGetCmd)
	itemCmd.AddCommand(itemURLCmd)
	rootCmd.AddCommand(itemCmd)
}
