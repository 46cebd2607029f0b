package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Check that the configured credentials are accepted by the API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		type authResult struct {
			Status    string `json:"status"`
			BaseURL   string `json:"baseUrl"`
			ProjectID string `json:"projectId"`
		}
		result := authResult{
			BaseURL:   client.BaseURL(),
			ProjectID: resolveConfig().ProjectID,
		}

		if !client.CheckAuthentication(cmd.Context()) {
			result.Status = "failed"
			if jsonOutput {
				_ = printJSON(result)
			} else {
				fmt.Fprintf(os.Stderr, "Authentication failed for project %s\n", result.ProjectID)
			}
			return errors.New("authentication failed")
		}

		result.Status = "ok"
		return printResult(result, func() {
			fmt.Println("Authentication successful")
		})
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
