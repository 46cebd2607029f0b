package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/novainsilico/jinkoctl/pkg/jinko"
	"github.com/novainsilico/jinkoctl/pkg/timeseries"
)

var (
	timeseriesSelect []string
	timeseriesOut    string
)

var trialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Run trials and fetch their results",
}

// trialID parses the positional CORE_ITEM_ID SNAPSHOT_ID pair.
func trialID(args []string) jinko.ItemID {
	return jinko.ItemID{CoreItemID: args[0], SnapshotID: args[1]}
}

var trialRunCmd = &cobra.Command{
	Use:   "run CORE_ITEM_ID SNAPSHOT_ID",
	Short: "Start a trial run",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.RunTrial(cmd.Context(), trialID(args)); err != nil {
			return fmt.Errorf("%s", FormatConnectionError(err))
		}
		return printResult(map[string]string{"status": "started"}, func() {
			fmt.Println("Trial run started.")
		})
	},
}

var trialStatusCmd = &cobra.Command{
	Use:   "status CORE_ITEM_ID SNAPSHOT_ID",
	Short: "Show the run status and per-arm summary of a trial",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		status, err := client.TrialStatus(cmd.Context(), trialID(args))
		if err != nil {
			return fmt.Errorf("%s", FormatConnectionError(err))
		}

		return printResult(status, func() {
			if status.IsRunning {
				fmt.Println("Trial is running.")
			} else {
				fmt.Println("Trial run finished.")
			}
			if len(status.PerArmSummary) == 0 {
				fmt.Println("No per-arm summary available yet.")
				return
			}
			fieldSet := make(map[string]bool)
			for _, summary := range status.PerArmSummary {
				for field := range summary {
					fieldSet[field] = true
				}
			}
			fields := make([]string, 0, len(fieldSet))
			for field := range fieldSet {
				fields = append(fields, field)
			}
			sort.Strings(fields)

			w := table()
			header := "ARM"
			for _, field := range fields {
				header += "\t" + field
			}
			fmt.Fprintln(w, header)
			for _, arm := range status.Arms() {
				line := arm
				for _, field := range fields {
					line += "\t" + string(status.PerArmSummary[arm][field])
				}
				fmt.Fprintln(w, line)
			}
			_ = w.Flush()
		})
	},
}

var trialOutputsCmd = &cobra.Command{
	Use:   "outputs CORE_ITEM_ID SNAPSHOT_ID",
	Short: "List the time series available from a trial",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		outputIDs, err := client.TrialOutputIDs(cmd.Context(), trialID(args))
		if err != nil {
			return fmt.Errorf("%s", FormatConnectionError(err))
		}
		fmt.Println(string(outputIDs))
		return nil
	},
}

var trialTimeSeriesCmd = &cobra.Command{
	Use:   "timeseries CORE_ITEM_ID SNAPSHOT_ID",
	Short: "Retrieve selected trial time series as CSV",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		archive, err := client.TimeSeriesSummary(cmd.Context(), jinko.TimeSeriesQuery{
			Select:  timeseriesSelect,
			TrialID: trialID(args),
		})
		if err != nil {
			return fmt.Errorf("%s", FormatConnectionError(err))
		}

		series, err := timeseries.Parse(archive)
		if err != nil {
			return err
		}

		out := os.Stdout
		if timeseriesOut != "" {
			f, err := os.Create(timeseriesOut)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer func() { _ = f.Close() }()
			out = f
			fmt.Fprintf(os.Stderr, "%d points from %d patients -> %s\n",
				len(series.Points), len(series.PatientIDs()), timeseriesOut)
		}
		return series.WriteCSV(out)
	},
}

func init() {
	trialTimeSeriesCmd.Flags().StringSliceVar(&timeseriesSelect, "select", []string{"tumorBurden"}, "Time series ids to retrieve")
	trialTimeSeriesCmd.Flags().StringVarP(&timeseriesOut, "out", "o", "", "Write CSV to a file instead of stdout")

	trialCmd.AddCommand(trialRunCmd)
	trialCmd.AddCommand(trialStatusCmd)
	trialCmd.AddCommand(trialOutputsCmd)
	trialCmd.AddCommand(trialTimeSeriesCmd)
	rootCmd.AddCommand(trialCmd)
}
