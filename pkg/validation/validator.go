// Package validation checks local resource files before upload, so a
// malformed model or protocol fails fast instead of round-tripping to the
// server.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind names a validatable resource type.
type Kind string

// Supported resource kinds.
const (
	KindModel      Kind = "model"
	KindProtocol   Kind = "protocol"
	KindVpopDesign Kind = "vpop-design"
	KindTrial      Kind = "trial"
)

// Kinds returns the supported kinds in stable order.
func Kinds() []string {
	kinds := make([]string, 0, len(schemas))
	for k := range schemas {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return kinds
}

// The schemas are deliberately loose: they pin down the envelope each
// endpoint requires and leave the scientific content to the server.
var schemas = map[Kind]string{
	KindModel: `{
		"type": "object",
		"required": ["model"],
		"properties": {
			"model": {"type": "object"},
			"solvingOptions": {"type": "object"}
		}
	}`,
	KindProtocol: `{
		"type": "object"
	}`,
	KindVpopDesign: `{
		"type": "object",
		"required": ["contents", "tag"],
		"properties": {
			"contents": {
				"type": "object",
				"required": ["computationalModelId", "marginalDistributions"],
				"properties": {
					"computationalModelId": {
						"type": "object",
						"required": ["coreItemId", "snapshotId"]
					},
					"marginalDistributions": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["id", "distribution"]
						}
					}
				}
			},
			"tag": {"type": "string"}
		}
	}`,
	KindTrial: `{
		"type": "object",
		"required": ["computationalModelId", "protocolDesignId", "vpopId"],
		"properties": {
			"computationalModelId": {"type": "object", "required": ["coreItemId", "snapshotId"]},
			"protocolDesignId": {"type": "object", "required": ["coreItemId", "snapshotId"]},
			"vpopId": {"type": "object", "required": ["coreItemId", "snapshotId"]},
			"dataTableDesigns": {"type": "array"}
		}
	}`,
}

var (
	compiled     map[Kind]*jsonschema.Schema
	compiledErr  error
	compiledOnce sync.Once
)

func compile() {
	compiled = make(map[Kind]*jsonschema.Schema, len(schemas))
	for kind, source := range schemas {
		c := jsonschema.NewCompiler()
		url := "jinkoctl://" + string(kind) + ".schema.json"
		if err := c.AddResource(url, strings.NewReader(source)); err != nil {
			compiledErr = fmt.Errorf("add %s schema: %w", kind, err)
			return
		}
		schema, err := c.Compile(url)
		if err != nil {
			compiledErr = fmt.Errorf("compile %s schema: %w", kind, err)
			return
		}
		compiled[kind] = schema
	}
}

// Validate checks a decoded JSON document against the schema for kind.
// Unknown kinds are an error.
func Validate(kind Kind, doc any) error {
	compiledOnce.Do(compile)
	if compiledErr != nil {
		return compiledErr
	}
	schema, ok := compiled[kind]
	if !ok {
		return fmt.Errorf("unknown resource kind %q (valid: %s)", kind, strings.Join(Kinds(), ", "))
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%s validation failed: %w", kind, err)
	}
	return nil
}
