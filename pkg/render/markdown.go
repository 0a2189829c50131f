// Package render serializes a compiled evaluation plan into its
// presentation forms: the fixed-section markdown report reviewed by
// humans and the JSON document consumed by CI tooling. Rendering is pure
// serialization; no decision logic lives here.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"

	"github.com/BayramAnnakov/eval-coach/pkg/plan"
)

// The report always carries these five sections in this order. Downstream
// review tooling keys off the headings, so the order is part of the
// contract.
const markdownTemplate = `# Evaluation Plan{{if .Profile.Name}}: {{.Profile.Name}}{{end}}
{{- range .Warnings}}
> ⚠ {{.}}
{{- end}}

## Business Objectives

- **Agent type**: {{.Profile.AgentType}}
- **Primary goal**: {{.Profile.PrimaryGoal}}
{{- if .Profile.SuccessCriteria}}
- **Success criteria**:
{{- range .Profile.SuccessCriteria}}
  - {{.}}
{{- end}}
{{- end}}
{{- if .Profile.FailureModes}}
- **Known failure modes**:
{{- range .Profile.FailureModes}}
  - {{.}}
{{- end}}
{{- end}}
{{- if .Profile.Notes}}

{{.Profile.Notes}}
{{- end}}

## Dataset Strategy

{{.Dataset.TotalCases}} test cases total:

| Category | Cases | Share |
|----------|-------|-------|
{{- range $cat := categories}}
| {{categoryLabel $cat}} | {{index $.Dataset.Distribution $cat}} | {{share $.Dataset $cat}} |
{{- end}}

## Evaluation Methods

| Metric | Type | Method | Threshold |
|--------|------|--------|-----------|
{{- range .Metrics}}
| {{.Name}} | {{kindLabel .Kind}} | {{.Method}} | {{.Threshold}} |
{{- end}}

## CI/CD Integration

{{range .Tiers}}### {{tierLabel .Level}}

- **Gate**: {{gateLabel .Gate}}
{{- if .MaxDuration}}
- **Time budget**: {{duration .MaxDuration}}
{{- end}}
{{- if .Sampling}}
- **Sampling**: {{samplingLabel .Sampling}}
{{- end}}
{{- if .Metrics}}
- **Metrics**: {{metricList $ .Metrics}}
{{- end}}
{{- if .AdvisoryMetrics}}
- **Advisory (warn only)**: {{metricList $ .AdvisoryMetrics}}
{{- end}}

{{end -}}
## Next Steps

{{range $i, $step := .NextSteps}}{{add1 $i}}. {{$step}}
{{end}}`

var categoryLabels = map[plan.Category]string{
	plan.CategoryHappyPath:   "Happy path",
	plan.CategoryEdgeCase:    "Edge case",
	plan.CategoryAdversarial: "Adversarial",
}

var kindLabels = map[plan.MetricKind]string{
	plan.KindAutomated:   "Automated",
	plan.KindLLMJudge:    "LLM judge",
	plan.KindHuman:       "Human",
	plan.KindPerformance: "Performance",
}

var tierLabels = map[plan.TierLevel]string{
	plan.TierPR:         "Tier 1: Pull Request",
	plan.TierPreDeploy:  "Tier 2: Pre-Deploy",
	plan.TierProduction: "Tier 3: Production",
}

var gateLabels = map[plan.GatePolicy]string{
	plan.GateBlockOnFailure: "block on failure",
	plan.GateWarnOnly:       "warn only",
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"categories":    func() []plan.Category { return plan.Categories },
	"categoryLabel": func(c plan.Category) string { return categoryLabels[c] },
	"kindLabel":     func(k plan.MetricKind) string { return kindLabels[k] },
	"tierLabel":     func(l plan.TierLevel) string { return tierLabels[l] },
	"gateLabel":     func(g plan.GatePolicy) string { return gateLabels[g] },
	"add1":          func(i int) int { return i + 1 },
	"duration":      formatDuration,
	"share":         share,
	"samplingLabel": samplingLabel,
	"metricList":    metricList,
}).Parse(markdownTemplate))

// Markdown renders the five-section plan report.
func Markdown(p *plan.EvaluationPlan) (string, error) {
	if p == nil {
		return "", errors.New("cannot render a nil plan")
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, p); err != nil {
		return "", errors.Wrap(err, "failed to render plan report")
	}
	return buf.String(), nil
}

func share(ds plan.DatasetSpec, cat plan.Category) string {
	if ds.TotalCases == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(ds.Distribution[cat])/float64(ds.TotalCases)*100)
}

func formatDuration(d time.Duration) string {
	return d.String()
}

func samplingLabel(s *plan.SamplingDirective) string {
	return fmt.Sprintf("%g%% of traffic, %s", s.Rate*100, s.Cadence)
}

func metricList(p *plan.EvaluationPlan, indices []int) string {
	names := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(p.Metrics) {
			names = append(names, p.Metrics[idx].Name)
		}
	}
	return strings.Join(names, ", ")
}
