package plan

import (
	"strings"
	"time"
)

// Rule tables for the compiler. These are plain immutable lookups: each
// rule is data, not dispatch. Changing evaluation policy means editing a
// table here, never the generation algorithm.

const (
	// DefaultTotalCases is the dataset size used when the brief does not
	// specify one.
	DefaultTotalCases = 20

	// DefaultLatencyBound caps the mandatory latency metric at p95.
	DefaultLatencyBound = 30 * time.Second

	// DefaultLatencyPercentile is the percentile for the latency bar.
	DefaultLatencyPercentile = 95

	// prTierBudget is the aggregate wall-clock budget for the PR tier.
	// Performance metrics whose bound fits inside it run synchronously in
	// PR; slower ones move to pre-deploy.
	prTierBudget = 5 * time.Minute
)

// MetricSchemaValidity and MetricInputDataConsistency are metric names the
// compiler guarantees by rule; downstream tooling keys off them.
const (
	MetricSchemaValidity       = "Schema Validity"
	MetricLatency              = "Response Latency"
	MetricInputDataConsistency = "InputDataConsistency"
)

// defaultRatios is the rule-of-thumb dataset split: 50% happy path, 35%
// edge case, 15% adversarial.
var defaultRatios = map[Category]float64{
	CategoryHappyPath:   0.50,
	CategoryEdgeCase:    0.35,
	CategoryAdversarial: 0.15,
}

// allocationPriority orders categories for distributing rounding
// remainders. Adversarial cases are the scarcest and most valuable, so
// rounding favors them first.
var allocationPriority = []Category{CategoryAdversarial, CategoryEdgeCase, CategoryHappyPath}

// silentFailureKeywords flag failure modes that indicate the agent may
// silently reconcile contradictory inputs. Matched case-insensitively as
// substrings; "reconcil" covers reconcile/reconciled/reconciliation.
var silentFailureKeywords = []string{"mismatch", "contradict", "reconcil", "silent"}

// adversarialRequired lists agent types whose datasets must carry at
// least one adversarial case even under explicit overrides.
var adversarialRequired = map[AgentType]bool{
	AgentTypeResearch:       true,
	AgentTypeConversational: true,
}

// mandatoryMetrics are the zero-cost first line of defense. Present in
// every plan regardless of agent type; overrides cannot remove them.
func mandatoryMetrics(latencyBound time.Duration) []MetricSpec {
	return []MetricSpec{
		{
			Name:      MetricSchemaValidity,
			Kind:      KindAutomated,
			Method:    "Validate output against the expected JSON schema",
			Threshold: PercentThreshold(100),
		},
		{
			Name:      MetricLatency,
			Kind:      KindAutomated,
			Method:    "Measure end-to-end response time per case",
			Threshold: LatencyThreshold(DefaultLatencyPercentile, latencyBound),
		},
	}
}

// graderRules maps each agent type to its type-specific metrics. The
// lookup is exhaustive over the enumerated types; there is no fallback.
var graderRules = map[AgentType][]MetricSpec{
	AgentTypeCoding: {
		{
			Name:      "Outcome Correctness",
			Kind:      KindAutomated,
			Method:    "Run the produced code against the reference test suite",
			Threshold: PercentThreshold(100),
		},
	},
	AgentTypeConversational: {
		{
			Name:      "Response Quality",
			Kind:      KindLLMJudge,
			Method:    "LLM judge grades helpfulness and tone against the rubric",
			Threshold: ScoreThreshold(4.0, 5.0),
		},
		{
			Name:      "Task Outcome",
			Kind:      KindAutomated,
			Method:    "Check the conversation reached the expected end state",
			Threshold: PercentThreshold(95),
		},
	},
	AgentTypeResearch: {
		{
			Name:      "Source Coverage",
			Kind:      KindAutomated,
			Method:    "Count required sources and keywords present in the report",
			Threshold: PercentThreshold(90),
		},
		{
			Name:      "Groundedness",
			Kind:      KindLLMJudge,
			Method:    "LLM judge verifies every claim traces to a provided source",
			Threshold: ScoreThreshold(4.0, 5.0),
		},
	},
	AgentTypeComputerUse: {
		{
			Name:      "UI State Match",
			Kind:      KindAutomated,
			Method:    "Compare final UI state against the expected screen state",
			Threshold: PercentThreshold(100),
		},
		{
			Name:      "Backend State Match",
			Kind:      KindAutomated,
			Method:    "Compare backend records against the expected state",
			Threshold: PercentThreshold(100),
		},
	},
	// Other gets only the mandatory schema/length metrics plus a warning
	// that metric selection needs a human.
	AgentTypeOther: {},
}

// consistencyMetric is added whenever a failure mode matches the silent
// failure keywords. Pass/fail, never graded: an agent that reconciles
// contradictory data without disclosure fails outright.
func consistencyMetric() MetricSpec {
	return MetricSpec{
		Name:      MetricInputDataConsistency,
		Kind:      KindLLMJudge,
		Method:    "LLM judge checks contradictory inputs are surfaced, not silently reconciled",
		Threshold: PercentThreshold(100),
	}
}

// defaultSampling is the production tier directive: sample a slice of
// live traffic on a fixed cadence independent of specific metrics.
var defaultSampling = SamplingDirective{Rate: 0.05, Cadence: "weekly"}

// matchesSilentFailure reports whether any declared failure mode hits the
// silent-failure keyword set.
func matchesSilentFailure(failureModes []string) bool {
	for _, mode := range failureModes {
		lower := strings.ToLower(mode)
		for _, kw := range silentFailureKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
