package plan

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// DocumentSchema returns the JSON Schema for the exported plan document.
// CI tooling validates exported plans against it; this is the machine
// contract behind the Schema Validity metric.
func DocumentSchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	return reflector.Reflect(&EvaluationPlan{})
}

// DocumentSchemaJSON renders the schema as indented JSON.
func DocumentSchemaJSON() (string, error) {
	data, err := json.MarshalIndent(DocumentSchema(), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal plan schema")
	}
	return string(data), nil
}
