package plan

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Overrides adjusts the compiled plan without touching the rule tables.
// Overrides may add metrics or change thresholds; they can never remove
// the mandatory first-line-of-defense metrics.
type Overrides struct {
	// TotalCases replaces DefaultTotalCases when > 0.
	TotalCases int
	// Distribution replaces the default ratio allocation. Counts must be
	// non-negative and sum to the effective total.
	Distribution map[Category]int
	// LatencyBound replaces DefaultLatencyBound when > 0.
	LatencyBound time.Duration
	// Thresholds rebases the pass bar for named metrics. Fixed pass/fail
	// bars (Schema Validity, InputDataConsistency) ignore this with a
	// warning.
	Thresholds map[string]Threshold
	// ExtraMetrics appends operator-defined metrics after the rule-derived
	// ones.
	ExtraMetrics []MetricSpec
	// DropMetrics removes rule-derived metrics by name. Dropping a
	// mandatory metric fails with EmptyMetricSetError.
	DropMetrics []string
}

// Generate compiles an AgentProfile plus optional overrides into a
// complete EvaluationPlan. It is a pure function of its inputs and the
// fixed rule tables: identical inputs always produce an identical plan,
// so regenerating a plan for audit purposes is reliable. It either
// returns a complete, internally consistent plan or fails with a typed
// validation error naming the offending field.
func Generate(profile AgentProfile, overrides *Overrides) (*EvaluationPlan, error) {
	if _, known := graderRules[profile.AgentType]; !known {
		return nil, &UnknownAgentTypeError{Value: string(profile.AgentType)}
	}

	var o Overrides
	if overrides != nil {
		o = *overrides
	}

	totalCases := DefaultTotalCases
	if o.TotalCases > 0 {
		totalCases = o.TotalCases
	} else if o.TotalCases < 0 {
		return nil, &InvalidDistributionError{
			Field:  "totalCases",
			Reason: fmt.Sprintf("got %d, expected >= 1", o.TotalCases),
		}
	}

	dataset, err := buildDataset(profile.AgentType, totalCases, o.Distribution)
	if err != nil {
		return nil, err
	}

	silentFailureRisk := matchesSilentFailure(profile.FailureModes)

	metrics, warnings, err := buildMetrics(profile, &o, silentFailureRisk)
	if err != nil {
		return nil, err
	}

	p := &EvaluationPlan{
		Profile:  copyProfile(profile),
		Dataset:  dataset,
		Metrics:  metrics,
		Warnings: warnings,
	}
	p.Tiers = buildTiers(metrics)
	p.NextSteps = buildNextSteps(p, silentFailureRisk)

	return p, nil
}

// buildDataset validates an override distribution or allocates the
// default ratios across totalCases.
func buildDataset(agentType AgentType, totalCases int, override map[Category]int) (DatasetSpec, error) {
	if totalCases < 1 {
		return DatasetSpec{}, &InvalidDistributionError{
			Field:  "totalCases",
			Reason: fmt.Sprintf("got %d, expected >= 1", totalCases),
		}
	}

	if override == nil {
		return DatasetSpec{TotalCases: totalCases, Distribution: allocate(totalCases)}, nil
	}

	// Keys sorted so validation reports the same field on every run.
	cats := make([]Category, 0, len(override))
	for cat := range override {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	dist := make(map[Category]int, len(Categories))
	sum := 0
	for _, cat := range cats {
		count := override[cat]
		switch cat {
		case CategoryHappyPath, CategoryEdgeCase, CategoryAdversarial:
		default:
			return DatasetSpec{}, &InvalidDistributionError{
				Field:  fmt.Sprintf("distribution[%s]", cat),
				Reason: "unknown category",
			}
		}
		if count < 0 {
			return DatasetSpec{}, &InvalidDistributionError{
				Field:  fmt.Sprintf("distribution[%s]", cat),
				Reason: fmt.Sprintf("got %d, expected >= 0", count),
			}
		}
		dist[cat] = count
		sum += count
	}

	if sum != totalCases {
		return DatasetSpec{}, &InvalidDistributionError{
			Field:  "distribution",
			Reason: fmt.Sprintf("counts sum to %d, expected totalCases=%d", sum, totalCases),
		}
	}

	// Research and conversational agents fail silently in ways only
	// adversarial cases surface, so their datasets cannot skip them.
	if adversarialRequired[agentType] && dist[CategoryAdversarial] == 0 {
		return DatasetSpec{}, &InvalidDistributionError{
			Field:  fmt.Sprintf("distribution[%s]", CategoryAdversarial),
			Reason: fmt.Sprintf("%s agents require at least one adversarial case", agentType),
		}
	}

	// Absent categories count as zero.
	for _, cat := range Categories {
		if _, ok := dist[cat]; !ok {
			dist[cat] = 0
		}
	}

	return DatasetSpec{TotalCases: totalCases, Distribution: dist}, nil
}

// allocate splits totalCases across categories by the default ratios.
// Integer counts come from flooring each quota; the remainder is handed
// out one case at a time in allocation priority order, adversarial
// first, so rounding never erodes the scarcest categories. Matches the
// documented worked example: 21 cases split 10/7/4.
func allocate(totalCases int) map[Category]int {
	dist := make(map[Category]int, len(Categories))
	assigned := 0
	for _, cat := range Categories {
		quota := defaultRatios[cat] * float64(totalCases)
		count := int(math.Floor(quota + 1e-9))
		dist[cat] = count
		assigned += count
	}

	for i := 0; assigned < totalCases; i++ {
		dist[allocationPriority[i%len(allocationPriority)]]++
		assigned++
	}

	// Floor guarantee: with three or more cases the adversarial bucket is
	// never empty.
	if totalCases >= 3 && dist[CategoryAdversarial] == 0 {
		largest := CategoryHappyPath
		if dist[CategoryEdgeCase] > dist[largest] {
			largest = CategoryEdgeCase
		}
		dist[largest]--
		dist[CategoryAdversarial] = 1
	}

	return dist
}

// buildMetrics assembles the metric table: mandatory metrics, the
// agent-type grader set, the silent-failure consistency check, then
// operator extras, with drops and threshold overrides applied.
func buildMetrics(profile AgentProfile, o *Overrides, silentFailureRisk bool) ([]MetricSpec, []string, error) {
	var warnings []string

	if len(profile.FailureModes) == 0 {
		warnings = append(warnings, "no failure modes declared; failure-mode elicitation is a required step of the method, revisit before trusting this plan")
	}
	if profile.AgentType == AgentTypeOther {
		warnings = append(warnings, "agent type is \"other\": only schema and latency metrics were selected, manual metric review is required")
	}

	latencyBound := DefaultLatencyBound
	if o.LatencyBound > 0 {
		latencyBound = o.LatencyBound
	}

	metrics := mandatoryMetrics(latencyBound)
	metrics = append(metrics, graderRules[profile.AgentType]...)
	if silentFailureRisk {
		metrics = append(metrics, consistencyMetric())
	}
	metrics = append(metrics, o.ExtraMetrics...)

	for _, name := range o.DropMetrics {
		if isMandatory(name, silentFailureRisk) {
			return nil, nil, &EmptyMetricSetError{Metric: name}
		}
		kept := metrics[:0]
		for _, m := range metrics {
			if m.Name != name {
				kept = append(kept, m)
			}
		}
		metrics = kept
	}

	// Sorted so warning order is deterministic.
	names := make([]string, 0, len(o.Thresholds))
	for name := range o.Thresholds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == MetricSchemaValidity || name == MetricInputDataConsistency {
			warnings = append(warnings, fmt.Sprintf("threshold for %q is fixed at 100%%; override ignored", name))
			continue
		}
		found := false
		for i := range metrics {
			if metrics[i].Name == name {
				metrics[i].Threshold = o.Thresholds[name]
				found = true
			}
		}
		if !found {
			warnings = append(warnings, fmt.Sprintf("threshold override for unknown metric %q ignored", name))
		}
	}

	return metrics, warnings, nil
}

// isMandatory reports whether a metric name is protected from drops. The
// consistency check becomes mandatory once the silent-failure rule fires:
// dropping it would reproduce the incident the rule exists to prevent.
func isMandatory(name string, silentFailureRisk bool) bool {
	if name == MetricSchemaValidity || name == MetricLatency {
		return true
	}
	return silentFailureRisk && name == MetricInputDataConsistency
}

// buildTiers assigns every metric to a pipeline stage. Automated metrics
// gate PRs; LLM-judge metrics gate deploys; human metrics ride along
// pre-deploy as advisory; performance metrics run wherever their bound
// fits. The production tier always carries the sampling directive.
func buildTiers(metrics []MetricSpec) []CITier {
	pr := CITier{Level: TierPR, Gate: GateBlockOnFailure, MaxDuration: prTierBudget}
	preDeploy := CITier{Level: TierPreDeploy, Gate: GateBlockOnFailure}

	for i, m := range metrics {
		switch m.Kind {
		case KindAutomated:
			pr.Metrics = append(pr.Metrics, i)
		case KindLLMJudge:
			preDeploy.Metrics = append(preDeploy.Metrics, i)
		case KindHuman:
			preDeploy.AdvisoryMetrics = append(preDeploy.AdvisoryMetrics, i)
		case KindPerformance:
			if m.Threshold.Latency != nil && m.Threshold.Latency.Bound <= prTierBudget {
				pr.Metrics = append(pr.Metrics, i)
			} else {
				preDeploy.Metrics = append(preDeploy.Metrics, i)
			}
		}
	}

	sampling := defaultSampling
	production := CITier{
		Level:    TierProduction,
		Gate:     GateWarnOnly,
		Sampling: &sampling,
	}

	return []CITier{pr, preDeploy, production}
}

// buildNextSteps renders the ordered follow-up list from what the plan
// actually contains.
func buildNextSteps(p *EvaluationPlan, silentFailureRisk bool) []string {
	dist := p.Dataset.Distribution
	steps := []string{
		fmt.Sprintf("Create the evaluation dataset: %d cases (%d happy path, %d edge case, %d adversarial)",
			p.Dataset.TotalCases, dist[CategoryHappyPath], dist[CategoryEdgeCase], dist[CategoryAdversarial]),
	}

	if silentFailureRisk {
		steps = append(steps, "Add an adversarial case that feeds contradictory source data and expects the contradiction to be surfaced, not silently reconciled")
	}

	steps = append(steps, "Implement the automated evaluators and wire them into the PR tier")

	hasJudge, hasHuman := false, false
	for _, m := range p.Metrics {
		switch m.Kind {
		case KindLLMJudge:
			hasJudge = true
		case KindHuman:
			hasHuman = true
		}
	}
	if hasJudge {
		steps = append(steps, "Write the LLM judge rubrics and calibrate them against a handful of manually graded outputs")
	}
	if hasHuman {
		steps = append(steps, "Schedule human review for the advisory metrics in the pre-deploy tier")
	}

	steps = append(steps,
		"Configure the CI pipeline gates for each tier",
		fmt.Sprintf("Enable production sampling at %g%% of traffic on a %s cadence",
			defaultSampling.Rate*100, defaultSampling.Cadence),
	)

	return steps
}

// copyProfile deep-copies the profile so the returned plan shares no
// mutable state with the caller's input.
func copyProfile(p AgentProfile) AgentProfile {
	out := p
	if p.SuccessCriteria != nil {
		out.SuccessCriteria = append([]string(nil), p.SuccessCriteria...)
	}
	if p.FailureModes != nil {
		out.FailureModes = append([]string(nil), p.FailureModes...)
	}
	return out
}
