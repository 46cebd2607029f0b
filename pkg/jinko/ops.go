package jinko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Resource paths under the core API.
const (
	pathModel         = "/core/v2/model_manager/jinko_model"
	pathVpopGenerator = "/core/v2/vpop_manager/vpop_generator"
	pathVpop          = "/core/v2/vpop_manager/vpop"
	pathProtocol      = "/core/v2/scenario_manager/protocol_design"
	pathDataTable     = "/core/v2/data_table_manager/data_table"
	pathTrial         = "/core/v2/trial_manager/trial"
	pathTimeSeries    = "/core/v2/result_manager/timeseries_summary"
)

// snapshotPath builds the per-snapshot path for a versioned resource.
func snapshotPath(base string, id ItemID, suffix string) string {
	return base + "/" + url.PathEscape(id.CoreItemID) + "/snapshots/" + url.PathEscape(id.SnapshotID) + suffix
}

// PostModel uploads a computational model together with its solving options.
func (c *Client) PostModel(ctx context.Context, model, solvingOptions json.RawMessage, meta *ItemMeta) (ItemID, error) {
	payload := struct {
		Model          json.RawMessage `json:"model"`
		SolvingOptions json.RawMessage `json:"solvingOptions,omitempty"`
	}{Model: model, SolvingOptions: solvingOptions}
	return c.postItem(ctx, pathModel, payload, meta)
}

// BaselineDescriptors fetches the baseline patient descriptors of a model
// snapshot.
func (c *Client) BaselineDescriptors(ctx context.Context, modelID ItemID) (*BaselineDescriptors, error) {
	var out BaselineDescriptors
	if err := c.getJSON(ctx, snapshotPath(pathModel, modelID, "/baseline_descriptors"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostVpopDesign creates a virtual population design from marginal
// distributions over a model snapshot.
func (c *Client) PostVpopDesign(ctx context.Context, modelID ItemID, marginals []MarginalDistribution, meta *ItemMeta) (ItemID, error) {
	payload := struct {
		Contents struct {
			ComputationalModelID  ItemID                 `json:"computationalModelId"`
			Correlations          []json.RawMessage      `json:"correlations"`
			MarginalCategoricals  []json.RawMessage      `json:"marginalCategoricals"`
			MarginalDistributions []MarginalDistribution `json:"marginalDistributions"`
		} `json:"contents"`
		Tag string `json:"tag"`
	}{Tag: "VpopGeneratorFromDesign"}
	payload.Contents.ComputationalModelID = modelID
	payload.Contents.Correlations = []json.RawMessage{}
	payload.Contents.MarginalCategoricals = []json.RawMessage{}
	payload.Contents.MarginalDistributions = marginals
	return c.postItem(ctx, pathVpopGenerator, payload, meta)
}

// GenerateVpop samples a virtual population of the given size from a design.
func (c *Client) GenerateVpop(ctx context.Context, designID, modelID ItemID, size int, meta *ItemMeta) (ItemID, error) {
	payload := struct {
		Contents struct {
			ComputationalModelID ItemID `json:"computationalModelId"`
			Size                 int    `json:"size"`
		} `json:"contents"`
		Tag string `json:"tag"`
	}{Tag: "VpopGeneratorOptionsForVpopDesign"}
	payload.Contents.ComputationalModelID = modelID
	payload.Contents.Size = size
	return c.postItem(ctx, snapshotPath(pathVpopGenerator, designID, "/vpop"), payload, meta)
}

// PostVpopCSV uploads a virtual population given directly as CSV.
func (c *Client) PostVpopCSV(ctx context.Context, csvData string, meta *ItemMeta) (ItemID, error) {
	var id ItemID
	opts := []ReqOption{WithCSV(csvData)}
	if meta != nil {
		opts = append(opts, WithMeta(meta))
	}
	if err := c.postJSON(ctx, pathVpop, &id, opts...); err != nil {
		return ItemID{}, fmt.Errorf("post vpop csv: %w", err)
	}
	return id, nil
}

// PostProtocol uploads a protocol design.
func (c *Client) PostProtocol(ctx context.Context, protocol json.RawMessage, meta *ItemMeta) (ItemID, error) {
	return c.postItem(ctx, pathProtocol, protocol, meta)
}

// PostDataTable uploads a base64-encoded SQLite data table.
func (c *Client) PostDataTable(ctx context.Context, rawData string, meta *ItemMeta) (ItemID, error) {
	payload := struct {
		Mappings []json.RawMessage `json:"mappings"`
		RawData  string            `json:"rawData"`
	}{Mappings: []json.RawMessage{}, RawData: rawData}
	return c.postItem(ctx, pathDataTable, payload, meta)
}

// PostTrial creates a trial from its component snapshots.
func (c *Client) PostTrial(ctx context.Context, trial Trial, meta *ItemMeta) (ItemID, error) {
	return c.postItem(ctx, pathTrial, trial, meta)
}

// RunTrial starts a trial run. The run is asynchronous; poll TrialStatus for
// progress.
func (c *Client) RunTrial(ctx context.Context, trialID ItemID) error {
	resp, err := c.Do(ctx, http.MethodPost, snapshotPath(pathTrial, trialID, "/run"))
	if err != nil {
		return fmt.Errorf("run trial: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

// TrialStatus fetches the current run status and per-arm summary of a trial.
func (c *Client) TrialStatus(ctx context.Context, trialID ItemID) (*TrialStatus, error) {
	var status TrialStatus
	if err := c.getJSON(ctx, snapshotPath(pathTrial, trialID, "/status"), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// TrialOutputIDs lists the time series available from a finished trial. The
// response shape is owned by the server, so it is returned undecoded.
func (c *Client) TrialOutputIDs(ctx context.Context, trialID ItemID) (json.RawMessage, error) {
	resp, err := c.Do(ctx, http.MethodGet, snapshotPath(pathTrial, trialID, "/output_ids"))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return json.RawMessage(data), nil
}

// TimeSeriesSummary fetches selected trial time series. The response is a zip
// archive containing one CSV file; see the timeseries package for decoding.
func (c *Client) TimeSeriesSummary(ctx context.Context, q TimeSeriesQuery) ([]byte, error) {
	resp, err := c.Do(ctx, http.MethodPost, pathTimeSeries, WithJSON(q))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read time series archive: %w", err)
	}
	return data, nil
}

// postItem posts a project item payload and decodes the returned id pair.
func (c *Client) postItem(ctx context.Context, path string, payload any, meta *ItemMeta) (ItemID, error) {
	var id ItemID
	opts := []ReqOption{WithJSON(payload)}
	if meta != nil {
		opts = append(opts, WithMeta(meta))
	}
	if err := c.postJSON(ctx, path, &id, opts...); err != nil {
		return ItemID{}, err
	}
	return id, nil
}
