// Package plan implements the evaluation plan compiler: a deterministic
// transformation from an agent profile into a complete evaluation plan
// (dataset composition, metric table, CI tier assignment). All selection
// rules are plain lookup tables; Generate performs no I/O and holds no
// state between calls.
package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// AgentType classifies the agent being evaluated. The type drives grader
// selection, so unknown values are rejected rather than defaulted;
// AgentTypeOther must be requested explicitly.
type AgentType string

const (
	AgentTypeCoding         AgentType = "coding"
	AgentTypeConversational AgentType = "conversational"
	AgentTypeResearch       AgentType = "research"
	AgentTypeComputerUse    AgentType = "computer-use"
	AgentTypeOther          AgentType = "other"
)

// ParseAgentType maps a user-supplied string to an AgentType. It accepts
// a few common spellings but never falls back to AgentTypeOther on its own.
func ParseAgentType(s string) (AgentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "coding", "code":
		return AgentTypeCoding, nil
	case "conversational", "chat", "chatbot":
		return AgentTypeConversational, nil
	case "research":
		return AgentTypeResearch, nil
	case "computer-use", "computer_use", "browser":
		return AgentTypeComputerUse, nil
	case "other":
		return AgentTypeOther, nil
	default:
		return "", &UnknownAgentTypeError{Value: s}
	}
}

// AgentProfile describes the agent under evaluation. It is assembled once
// from operator input (however many interaction rounds that takes) and is
// immutable after submission.
type AgentProfile struct {
	Name            string    `json:"name,omitempty"`
	AgentType       AgentType `json:"agentType"`
	PrimaryGoal     string    `json:"primaryGoal"`
	SuccessCriteria []string  `json:"successCriteria,omitempty"`
	FailureModes    []string  `json:"failureModes,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// Category buckets test cases by intent.
type Category string

const (
	CategoryHappyPath   Category = "happy_path"
	CategoryEdgeCase    Category = "edge_case"
	CategoryAdversarial Category = "adversarial"
)

// Categories lists all dataset categories in presentation order. Iterate
// this instead of ranging over Distribution maps so output stays stable.
var Categories = []Category{CategoryHappyPath, CategoryEdgeCase, CategoryAdversarial}

// DatasetSpec is the dataset composition: how many cases total and how
// they split across categories. Counts always sum to TotalCases.
type DatasetSpec struct {
	TotalCases   int              `json:"totalCases"`
	Distribution map[Category]int `json:"distribution"`
}

// MetricKind distinguishes how a metric is evaluated and therefore which
// CI tier it lands in.
type MetricKind string

const (
	KindAutomated   MetricKind = "automated"
	KindLLMJudge    MetricKind = "llm_judge"
	KindHuman       MetricKind = "human"
	KindPerformance MetricKind = "performance"
)

// Threshold is the pass bar for a metric. Exactly one of the three forms
// is set: a percentage, a graded score with a scale, or a latency bound
// at a percentile.
type Threshold struct {
	Percent *float64      `json:"percent,omitempty"`
	Score   *GradedScore  `json:"score,omitempty"`
	Latency *LatencyBound `json:"latency,omitempty"`
}

// GradedScore is a rubric score bar, e.g. 4.0 out of 5.0.
type GradedScore struct {
	Value float64 `json:"value"`
	Scale float64 `json:"scale"`
}

// LatencyBound is a percentile latency bar, e.g. p95 under 30s.
type LatencyBound struct {
	Percentile int           `json:"percentile"`
	Bound      time.Duration `json:"bound"`
}

// PercentThreshold builds a percentage threshold.
func PercentThreshold(pct float64) Threshold {
	return Threshold{Percent: &pct}
}

// ScoreThreshold builds a graded rubric threshold.
func ScoreThreshold(value, scale float64) Threshold {
	return Threshold{Score: &GradedScore{Value: value, Scale: scale}}
}

// LatencyThreshold builds a percentile latency threshold.
func LatencyThreshold(percentile int, bound time.Duration) Threshold {
	return Threshold{Latency: &LatencyBound{Percentile: percentile, Bound: bound}}
}

// IsPassFail reports whether the threshold is a strict 100% bar.
func (t Threshold) IsPassFail() bool {
	return t.Percent != nil && *t.Percent == 100
}

func (t Threshold) String() string {
	switch {
	case t.Percent != nil:
		return fmt.Sprintf("%g%%", *t.Percent)
	case t.Score != nil:
		return fmt.Sprintf("avg >= %.1f/%.1f", t.Score.Value, t.Score.Scale)
	case t.Latency != nil:
		return fmt.Sprintf("p%d < %s", t.Latency.Percentile, t.Latency.Bound)
	default:
		return "unset"
	}
}

// MetricSpec is one row of the evaluation methods table. Ordering within
// a plan is significant: presentation order matches selection order.
type MetricSpec struct {
	Name      string     `json:"name"`
	Kind      MetricKind `json:"kind"`
	Method    string     `json:"method"`
	Threshold Threshold  `json:"threshold"`
}

// TierLevel identifies a CI/CD pipeline stage.
type TierLevel string

const (
	TierPR         TierLevel = "pr"
	TierPreDeploy  TierLevel = "pre_deploy"
	TierProduction TierLevel = "production"
)

// GatePolicy is what a tier does when a metric misses its threshold.
type GatePolicy string

const (
	GateBlockOnFailure GatePolicy = "block_on_failure"
	GateWarnOnly       GatePolicy = "warn_only"
)

// SamplingDirective configures production traffic sampling for the
// production tier.
type SamplingDirective struct {
	Rate    float64 `json:"rate"`
	Cadence string  `json:"cadence"`
}

// CITier assigns a subset of the plan's metrics to a pipeline stage.
// Metrics and AdvisoryMetrics are indices into EvaluationPlan.Metrics;
// advisory metrics run in the tier but only warn, regardless of Gate.
type CITier struct {
	Level           TierLevel          `json:"level"`
	Metrics         []int              `json:"metrics"`
	AdvisoryMetrics []int              `json:"advisoryMetrics,omitempty"`
	MaxDuration     time.Duration      `json:"maxDuration,omitempty"`
	Gate            GatePolicy         `json:"gate"`
	Sampling        *SamplingDirective `json:"sampling,omitempty"`
}

// EvaluationPlan is the complete compiled plan. It exclusively owns its
// profile, dataset, and metrics; tiers reference metrics by index.
// Constructed once by Generate and immutable thereafter.
type EvaluationPlan struct {
	Profile   AgentProfile `json:"profile"`
	Dataset   DatasetSpec  `json:"dataset"`
	Metrics   []MetricSpec `json:"metrics"`
	Tiers     []CITier     `json:"tiers"`
	NextSteps []string     `json:"nextSteps"`
	Warnings  []string     `json:"warnings,omitempty"`
}

// MetricByName returns the metric with the given name, or an error when
// the plan does not carry it.
func (p *EvaluationPlan) MetricByName(name string) (MetricSpec, error) {
	for _, m := range p.Metrics {
		if m.Name == name {
			return m, nil
		}
	}
	return MetricSpec{}, errors.Errorf("plan has no metric named %q", name)
}

// Tier returns the tier at the given level, or an error when absent.
func (p *EvaluationPlan) Tier(level TierLevel) (CITier, error) {
	for _, t := range p.Tiers {
		if t.Level == level {
			return t, nil
		}
	}
	return CITier{}, errors.Errorf("plan has no %s tier", level)
}
