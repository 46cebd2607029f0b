package jinko

import (
	"encoding/json"
	"sort"
)

// ItemID identifies one immutable snapshot of a versioned resource.
// Every project-item POST returns one of these pairs, and every follow-up
// operation on the resource takes it back.
type ItemID struct {
	CoreItemID string `json:"coreItemId"`
	SnapshotID string `json:"snapshotId"`
}

// IsZero reports whether the pair is unset.
func (id ItemID) IsZero() bool {
	return id.CoreItemID == "" && id.SnapshotID == ""
}

// ProjectItem is the app-level view of a resource inside a project.
type ProjectItem struct {
	CoreID      string `json:"coreId"`
	SID         string `json:"sid"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Revision    int    `json:"revision,omitempty"`
}

// Distribution describes a marginal distribution for one patient descriptor.
// Baseline descriptors come back with bounds; overrides are usually
// parameterized (mean/stdev/base). Pointer fields keep absent values out of
// the payload.
type Distribution struct {
	Tag       string   `json:"tag" yaml:"tag"`
	Mean      *float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Stdev     *float64 `json:"stdev,omitempty" yaml:"stdev,omitempty"`
	Base      *float64 `json:"base,omitempty" yaml:"base,omitempty"`
	LowBound  *float64 `json:"lowBound,omitempty" yaml:"lowBound,omitempty"`
	HighBound *float64 `json:"highBound,omitempty" yaml:"highBound,omitempty"`
}

// NumericDescriptor is one numeric patient descriptor of a computational
// model, as returned by the baseline_descriptors endpoint.
type NumericDescriptor struct {
	ID           string       `json:"id"`
	InputTag     []string     `json:"inputTag"`
	Distribution Distribution `json:"distribution"`
}

// BaselineDescriptors is the response of the baseline_descriptors endpoint.
type BaselineDescriptors struct {
	NumericDescriptors []NumericDescriptor `json:"numericDescriptors"`
}

// MarginalDistribution pairs a descriptor id with the distribution to sample
// it from in a virtual population design.
type MarginalDistribution struct {
	ID           string       `json:"id"`
	Distribution Distribution `json:"distribution"`
}

// DataTableOptions configures how one data table participates in a trial.
type DataTableOptions struct {
	LogTransformWideBounds []string `json:"logTransformWideBounds"`
	Label                  string   `json:"label"`
}

// DataTableDesign attaches a data table snapshot to a trial.
type DataTableDesign struct {
	DataTableID ItemID           `json:"dataTableId"`
	Options     DataTableOptions `json:"options"`
	Include     bool             `json:"include"`
}

// Trial is the payload for creating a trial: a model, a protocol, a virtual
// population, and any number of data tables.
type Trial struct {
	ComputationalModelID ItemID            `json:"computationalModelId"`
	ProtocolDesignID     ItemID            `json:"protocolDesignId"`
	VpopID               ItemID            `json:"vpopId"`
	DataTableDesigns     []DataTableDesign `json:"dataTableDesigns"`
}

// TrialStatus is the response of the trial status endpoint. PerArmSummary
// holds one free-form summary record per trial arm; its fields are owned by
// the server.
type TrialStatus struct {
	IsRunning     bool                                  `json:"isRunning"`
	PerArmSummary map[string]map[string]json.RawMessage `json:"perArmSummary"`
}

// Arms returns the arm names in sorted order.
func (s *TrialStatus) Arms() []string {
	arms := make([]string, 0, len(s.PerArmSummary))
	for arm := range s.PerArmSummary {
		arms = append(arms, arm)
	}
	sort.Strings(arms)
	return arms
}

// TimeSeriesQuery selects time series from a finished trial.
type TimeSeriesQuery struct {
	Select  []string `json:"select"`
	TrialID ItemID   `json:"trialId"`
}
