package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novainsilico/jinkoctl/pkg/logging"
	"github.com/novainsilico/jinkoctl/pkg/trialrun"
)

var (
	runTrialResources string
	runTrialFolder    string
	runTrialSize      int
	runTrialOverrides string
	runTrialSelect    []string
)

var runTrialCmd = &cobra.Command{
	Use:   "run-trial",
	Short: "Run the full worked example: model, vpop, protocol, data table, trial, results",
	Long: `run-trial chains the whole workflow against the API using the fixed resource
file set (computational_model.json, solving_options.json, vpop.csv,
protocol.json, data_table.csv) from the resources directory:

  1. upload the computational model
  2. build a vpop design from its baseline descriptors
  3. generate a virtual population
  4. upload the CSV virtual population
  5. upload the protocol design
  6. convert and upload the data table
  7. create and start the trial
  8. check its status and preview the tumorBurden time series

The status check is a single poll; rerun 'jinkoctl trial status' to follow a
long run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if !client.CheckAuthentication(cmd.Context()) {
			return fmt.Errorf("authentication failed for project %s", resolveConfig().ProjectID)
		}

		overrides := trialrun.DefaultOverrides()
		if runTrialOverrides != "" {
			if overrides, err = trialrun.LoadOverrides(runTrialOverrides); err != nil {
				return err
			}
		}

		level := logging.LevelInfo
		if verbose {
			level = logging.LevelDebug
		}

		runner := &trialrun.Runner{
			Client:     client,
			Resources:  runTrialResources,
			FolderID:   runTrialFolder,
			VpopSize:   runTrialSize,
			Overrides:  overrides,
			TimeSeries: runTrialSelect,
			Log:        logging.NewWithLevel(level),
		}
		result, err := runner.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s", FormatConnectionError(err))
		}

		if jsonOutput {
			return printJSON(result)
		}
		trialURL, err := client.ProjectItemURL(cmd.Context(), result.Trial.CoreItemID)
		if err != nil {
			warn("could not resolve the trial URL: %v", err)
			return nil
		}
		if trialURL != "" {
			fmt.Println("Trial:", trialURL)
		}
		return nil
	},
}

func init() {
	runTrialCmd.Flags().StringVar(&runTrialResources, "resources", "resources/run_a_trial", "Directory holding the resource files")
	runTrialCmd.Flags().StringVar(&runTrialFolder, "folder", "", "Folder UUID for created items")
	runTrialCmd.Flags().IntVar(&runTrialSize, "size", trialrun.DefaultVpopSize, "Virtual population size")
	runTrialCmd.Flags().StringVar(&runTrialOverrides, "overrides", "", "YAML file with distribution overrides per descriptor id")
	runTrialCmd.Flags().StringSliceVar(&runTrialSelect, "select", []string{"tumorBurden"}, "Time series ids to retrieve")
	rootCmd.AddCommand(runTrialCmd)
}
