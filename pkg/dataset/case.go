// Package dataset expands a compiled plan's dataset composition into
// concrete starter test cases and persists them in the local SQLite
// evaluation store. The scaffolded cases are stubs an operator fills in;
// the category split and the mandatory probes come from the plan.
package dataset

import (
	"time"

	"github.com/BayramAnnakov/eval-coach/pkg/plan"
)

// Case is a single evaluation test case. Inputs are what the agent
// receives; Expectations are the simple field checks the automated
// evaluators run against its output.
type Case struct {
	ID           string            `json:"id"`
	PlanName     string            `json:"planName"`
	Name         string            `json:"name"`
	Category     plan.Category     `json:"category"`
	Inputs       map[string]string `json:"inputs"`
	Expectations Expectations      `json:"expectations"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// Expectations are cheap, deterministic checks on the agent output.
type Expectations struct {
	ExpectedFields       []string `json:"expectedFields,omitempty"`
	ShouldMention        []string `json:"shouldMention,omitempty"`
	ShouldNotContain     []string `json:"shouldNotContain,omitempty"`
	MinResponseLength    int      `json:"minResponseLength,omitempty"`
	HandleGracefully     bool     `json:"handleGracefully,omitempty"`
	SurfaceContradiction bool     `json:"surfaceContradiction,omitempty"`
}
