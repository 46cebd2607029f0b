package trialrun

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/novainsilico/jinkoctl/pkg/jinko"
)

// patientTags are the input tags marking a numeric descriptor as a patient
// descriptor. Only those take part in the virtual population design.
var patientTags = []string{
	"PatientDescriptorKnown",
	"PatientDescriptorUnknown",
	"PatientDescriptorPartiallyKnown",
}

// Overrides maps descriptor ids to replacement distributions.
type Overrides map[string]jinko.Distribution

// DefaultOverrides returns the tumor-model distribution settings used by the
// worked example.
func DefaultOverrides() Overrides {
	logNormal := func(mean, stdev, base float64) jinko.Distribution {
		return jinko.Distribution{Tag: "LogNormal", Mean: &mean, Stdev: &stdev, Base: &base}
	}
	return Overrides{
		"initialTumorBurden":  logNormal(1.8, 0.08, 10),
		"kccCancerCell":       logNormal(12, 0.5, 10),
		"kGrowthCancerCell":   logNormal(-3, 0.05, 10),
		"vmaxCancerCellDeath": logNormal(-1, 0.05, 10),
		"ec50Drug":            logNormal(-3.5, 0.05, 10),
	}
}

// LoadOverrides reads distribution overrides from a YAML file keyed by
// descriptor id.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	var overrides Overrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse overrides %s: %w", path, err)
	}
	return overrides, nil
}

// BuildMarginals derives the marginal distributions of a vpop design from a
// model's baseline descriptors. Descriptors not tagged as patient descriptors
// are skipped; the rest keep their baseline bounds unless an override
// replaces the whole distribution.
func BuildMarginals(desc *jinko.BaselineDescriptors, overrides Overrides) []jinko.MarginalDistribution {
	var marginals []jinko.MarginalDistribution
	for _, nd := range desc.NumericDescriptors {
		if !isPatientDescriptor(nd.InputTag) {
			continue
		}
		dist := jinko.Distribution{
			Tag:       nd.Distribution.Tag,
			LowBound:  nd.Distribution.LowBound,
			HighBound: nd.Distribution.HighBound,
		}
		if override, ok := overrides[nd.ID]; ok {
			dist = override
		}
		marginals = append(marginals, jinko.MarginalDistribution{ID: nd.ID, Distribution: dist})
	}
	return marginals
}

func isPatientDescriptor(inputTags []string) bool {
	for _, tag := range inputTags {
		for _, patientTag := range patientTags {
			if tag == patientTag {
				return true
			}
		}
	}
	return false
}
