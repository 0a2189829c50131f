package plan

import "fmt"

// Validation failures always name the offending field and the constraint
// violated. A generic "invalid input" is exactly the kind of unspecific
// failure this tool exists to prevent.

// InvalidDistributionError reports a dataset distribution override that
// violates a composition constraint.
type InvalidDistributionError struct {
	Field  string
	Reason string
}

func (e *InvalidDistributionError) Error() string {
	return fmt.Sprintf("invalid distribution: %s: %s", e.Field, e.Reason)
}

// UnknownAgentTypeError reports an agent type outside the enumerated set
// when no explicit "other" fallback was requested.
type UnknownAgentTypeError struct {
	Value string
}

func (e *UnknownAgentTypeError) Error() string {
	return fmt.Sprintf("unknown agent type %q: expected one of coding, conversational, research, computer-use, or an explicit other", e.Value)
}

// EmptyMetricSetError reports an override that attempts to remove a
// mandatory metric. Overrides may add metrics or adjust thresholds, never
// drop the first-line-of-defense checks.
type EmptyMetricSetError struct {
	Metric string
}

func (e *EmptyMetricSetError) Error() string {
	return fmt.Sprintf("metric set override removes mandatory metric %q: mandatory metrics cannot be dropped", e.Metric)
}
