// Package trialrun drives the full run-a-trial workflow against the Jinko
// API: upload a model, design and generate a virtual population, upload a
// protocol and a data table, assemble a trial, run it, and fetch results.
//
// It is the worked example of the API, kept as a straight-line sequence of
// calls. Each step feeds the identifiers of the previous one; any failure
// aborts the run.
package trialrun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/novainsilico/jinkoctl/pkg/datatable"
	"github.com/novainsilico/jinkoctl/pkg/jinko"
	"github.com/novainsilico/jinkoctl/pkg/logging"
	"github.com/novainsilico/jinkoctl/pkg/timeseries"
)

// Resource file names expected under the resources directory.
const (
	ModelFile          = "computational_model.json"
	SolvingOptionsFile = "solving_options.json"
	VpopFile           = "vpop.csv"
	ProtocolFile       = "protocol.json"
	DataTableFile      = "data_table.csv"
)

// DefaultVpopSize is the population size used when none is configured.
const DefaultVpopSize = 10

// Runner executes the workflow. Zero-value fields fall back to defaults.
type Runner struct {
	Client *jinko.Client

	// Resources is the directory holding the fixed resource file set.
	Resources string

	// FolderID places created items into a project folder when set.
	FolderID string

	// VpopSize is the number of virtual patients to generate.
	VpopSize int

	// Overrides replaces baseline distributions per descriptor id.
	// Nil means DefaultOverrides.
	Overrides Overrides

	// TimeSeries selects which series to retrieve after the run.
	TimeSeries []string

	Log *slog.Logger
	Out io.Writer
}

// Result collects everything the workflow produced.
type Result struct {
	Model      jinko.ItemID `json:"model"`
	VpopDesign jinko.ItemID `json:"vpopDesign"`
	Vpop       jinko.ItemID `json:"vpop"`
	VpopCSV    jinko.ItemID `json:"vpopCsv"`
	Protocol   jinko.ItemID `json:"protocol"`
	DataTable  jinko.ItemID `json:"dataTable"`
	Trial      jinko.ItemID `json:"trial"`

	Status    *jinko.TrialStatus `json:"status,omitempty"`
	OutputIDs json.RawMessage    `json:"outputIds,omitempty"`

	Series *timeseries.Table `json:"-"`
}

// Run executes the whole workflow and returns its result. The returned error
// names the step that failed.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.Log == nil {
		r.Log = logging.Nop()
	}
	if r.Out == nil {
		r.Out = os.Stdout
	}
	if r.VpopSize <= 0 {
		r.VpopSize = DefaultVpopSize
	}
	if r.Overrides == nil {
		r.Overrides = DefaultOverrides()
	}
	if len(r.TimeSeries) == 0 {
		r.TimeSeries = []string{"tumorBurden"}
	}

	result := &Result{}

	if err := r.uploadModel(ctx, result); err != nil {
		return nil, fmt.Errorf("upload model: %w", err)
	}
	if err := r.designVpop(ctx, result); err != nil {
		return nil, fmt.Errorf("design vpop: %w", err)
	}
	if err := r.generateVpop(ctx, result); err != nil {
		return nil, fmt.Errorf("generate vpop: %w", err)
	}
	if err := r.uploadVpopCSV(ctx, result); err != nil {
		return nil, fmt.Errorf("upload csv vpop: %w", err)
	}
	if err := r.uploadProtocol(ctx, result); err != nil {
		return nil, fmt.Errorf("upload protocol: %w", err)
	}
	if err := r.uploadDataTable(ctx, result); err != nil {
		return nil, fmt.Errorf("upload data table: %w", err)
	}
	if err := r.createTrial(ctx, result); err != nil {
		return nil, fmt.Errorf("create trial: %w", err)
	}
	if err := r.Client.RunTrial(ctx, result.Trial); err != nil {
		return nil, fmt.Errorf("run trial: %w", err)
	}
	r.Log.Info("trial started", "coreItemId", result.Trial.CoreItemID)

	if err := r.reportStatus(ctx, result); err != nil {
		return nil, fmt.Errorf("trial status: %w", err)
	}
	if err := r.fetchResults(ctx, result); err != nil {
		return nil, fmt.Errorf("fetch results: %w", err)
	}
	return result, nil
}

func (r *Runner) meta(name string) *jinko.ItemMeta {
	return &jinko.ItemMeta{Name: name, FolderID: r.FolderID}
}

func (r *Runner) resource(name string) string {
	return filepath.Join(r.Resources, name)
}

func readJSONFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s is not valid JSON", path)
	}
	return json.RawMessage(data), nil
}

func (r *Runner) uploadModel(ctx context.Context, result *Result) error {
	model, err := readJSONFile(r.resource(ModelFile))
	if err != nil {
		return err
	}
	solving, err := readJSONFile(r.resource(SolvingOptionsFile))
	if err != nil {
		return err
	}
	result.Model, err = r.Client.PostModel(ctx, model, solving, nil)
	if err != nil {
		return err
	}
	r.Log.Info("model uploaded", "coreItemId", result.Model.CoreItemID, "snapshotId", result.Model.SnapshotID)
	return nil
}

func (r *Runner) designVpop(ctx context.Context, result *Result) error {
	descriptors, err := r.Client.BaselineDescriptors(ctx, result.Model)
	if err != nil {
		return err
	}
	marginals := BuildMarginals(descriptors, r.Overrides)
	r.Log.Info("vpop design built", "descriptors", len(descriptors.NumericDescriptors), "marginals", len(marginals))

	result.VpopDesign, err = r.Client.PostVpopDesign(ctx, result.Model, marginals, r.meta("vpop design for simple tumor model"))
	return err
}

func (r *Runner) generateVpop(ctx context.Context, result *Result) error {
	var err error
	result.Vpop, err = r.Client.GenerateVpop(ctx, result.VpopDesign, result.Model, r.VpopSize, r.meta("vpop for simple tumor model"))
	if err != nil {
		return err
	}
	r.Log.Info("vpop generated", "size", r.VpopSize, "coreItemId", result.Vpop.CoreItemID)
	return nil
}

// uploadVpopCSV posts the hand-written CSV population alongside the generated
// one, exercising the raw CSV upload path.
func (r *Runner) uploadVpopCSV(ctx context.Context, result *Result) error {
	data, err := os.ReadFile(r.resource(VpopFile))
	if err != nil {
		return err
	}
	result.VpopCSV, err = r.Client.PostVpopCSV(ctx, string(data), r.meta("vpop for simple tumor model"))
	return err
}

func (r *Runner) uploadProtocol(ctx context.Context, result *Result) error {
	protocol, err := readJSONFile(r.resource(ProtocolFile))
	if err != nil {
		return err
	}
	result.Protocol, err = r.Client.PostProtocol(ctx, protocol, r.meta("protocol for simple tumor model"))
	return err
}

func (r *Runner) uploadDataTable(ctx context.Context, result *Result) error {
	encoded, err := datatable.Encode(r.resource(DataTableFile))
	if err != nil {
		return err
	}
	result.DataTable, err = r.Client.PostDataTable(ctx, encoded, r.meta("data table for simple tumor model"))
	return err
}

func (r *Runner) createTrial(ctx context.Context, result *Result) error {
	trial := jinko.Trial{
		ComputationalModelID: result.Model,
		ProtocolDesignID:     result.Protocol,
		VpopID:               result.Vpop,
		DataTableDesigns: []jinko.DataTableDesign{
			{
				DataTableID: result.DataTable,
				Options: jinko.DataTableOptions{
					LogTransformWideBounds: []string{},
					Label:                  "data_table_simple_tumor",
				},
				Include: true,
			},
		},
	}
	var err error
	result.Trial, err = r.Client.PostTrial(ctx, trial, r.meta("trial for simple tumor model"))
	return err
}

// reportStatus performs a single status check and prints the per-arm summary.
// It is one poll, not a wait loop: a freshly started trial will usually still
// be running.
func (r *Runner) reportStatus(ctx context.Context, result *Result) error {
	status, err := r.Client.TrialStatus(ctx, result.Trial)
	if err != nil {
		return err
	}
	result.Status = status

	if status.IsRunning {
		fmt.Fprintln(r.Out, "Trial is running.")
	} else {
		fmt.Fprintln(r.Out, "Trial run finished.")
	}

	if len(status.PerArmSummary) == 0 {
		fmt.Fprintln(r.Out, "No per-arm summary available yet.")
		return nil
	}

	// Collect the union of summary fields so every arm prints the same
	// columns.
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

	w := tabwriter.NewWriter(r.Out, 0, 0, 2, ' ', 0)
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
	return w.Flush()
}

func (r *Runner) fetchResults(ctx context.Context, result *Result) error {
	outputIDs, err := r.Client.TrialOutputIDs(ctx, result.Trial)
	if err != nil {
		return err
	}
	result.OutputIDs = outputIDs
	fmt.Fprintf(r.Out, "Available time series: %s\n", string(outputIDs))

	archive, err := r.Client.TimeSeriesSummary(ctx, jinko.TimeSeriesQuery{
		Select:  r.TimeSeries,
		TrialID: result.Trial,
	})
	if err != nil {
		return err
	}
	table, err := timeseries.Parse(archive)
	if err != nil {
		return err
	}
	result.Series = table
	r.Log.Info("time series retrieved", "file", table.Filename, "points", len(table.Points), "patients", len(table.PatientIDs()))

	patients := table.PatientIDs()
	if len(patients) == 0 {
		fmt.Fprintln(r.Out, "No patient data found.")
		return nil
	}

	// Preview the first patient's series; full data is in result.Series.
	points := table.FilterPatient(patients[0])
	fmt.Fprintf(r.Out, "Patient %s: %d samples\n", patients[0], len(points))
	w := tabwriter.NewWriter(r.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ARM\tTIME\tVALUE")
	for i, p := range points {
		if i >= 5 {
			break
		}
		fmt.Fprintf(w, "%s\t%g\t%g\n", p.Arm, p.Time, p.Value)
	}
	return w.Flush()
}
