package render

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/BayramAnnakov/eval-coach/pkg/plan"
)

// JSON renders the plan as an indented JSON document. This is the export
// format validated by the schema the `evalcoach schema` command emits.
func JSON(p *plan.EvaluationPlan) (string, error) {
	if p == nil {
		return "", errors.New("cannot render a nil plan")
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal plan")
	}
	return string(data) + "\n", nil
}
