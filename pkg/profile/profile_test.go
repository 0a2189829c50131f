package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BayramAnnakov/eval-coach/pkg/plan"
)

func writeBrief(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMarkdownBrief(t *testing.T) {
	path := writeBrief(t, "brief.md", `---
name: market-researcher
agent_type: research
primary_goal: Produce grounded market research reports
success_criteria:
  - Reports cite every source
failure_modes:
  - silent reconciliation of contradictory data
  - hallucinated sources
total_cases: 21
---

# Market Researcher

The agent pulls analyst reports from three providers and merges them.
`)

	brief, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "market-researcher", brief.Profile.Name)
	assert.Equal(t, plan.AgentTypeResearch, brief.Profile.AgentType)
	assert.Equal(t, "Produce grounded market research reports", brief.Profile.PrimaryGoal)
	assert.Equal(t, []string{"Reports cite every source"}, brief.Profile.SuccessCriteria)
	assert.Len(t, brief.Profile.FailureModes, 2)
	assert.Contains(t, brief.Profile.Notes, "# Market Researcher")
	assert.Contains(t, brief.Profile.Notes, "three providers")

	require.NotNil(t, brief.Overrides)
	assert.Equal(t, 21, brief.Overrides.TotalCases)
}

func TestLoadYAMLBrief(t *testing.T) {
	path := writeBrief(t, "brief.yaml", `name: support-bot
agent_type: conversational
primary_goal: Resolve support tickets without escalation
failure_modes:
  - rude tone
total_cases: 30
distribution:
  happy_path: 15
  edge_case: 10
  adversarial: 5
latency_bound: 10s
`)

	brief, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, plan.AgentTypeConversational, brief.Profile.AgentType)
	require.NotNil(t, brief.Overrides)
	assert.Equal(t, 30, brief.Overrides.TotalCases)
	assert.Equal(t, 15, brief.Overrides.Distribution[plan.CategoryHappyPath])
	assert.Equal(t, 5, brief.Overrides.Distribution[plan.CategoryAdversarial])
	assert.Equal(t, 10*time.Second, brief.Overrides.LatencyBound)
}

func TestLoadBriefEndToEnd(t *testing.T) {
	path := writeBrief(t, "brief.yaml", `agent_type: research
primary_goal: Research reports
failure_modes:
  - data mismatch across sources
total_cases: 21
`)

	brief, err := Load(path)
	require.NoError(t, err)

	p, err := plan.Generate(brief.Profile, brief.Overrides)
	require.NoError(t, err)
	assert.Equal(t, 21, p.Dataset.TotalCases)
	assert.Equal(t, 4, p.Dataset.Distribution[plan.CategoryAdversarial])

	_, err = p.MetricByName(plan.MetricInputDataConsistency)
	assert.NoError(t, err)
}

func TestLoadBriefWithoutOverrides(t *testing.T) {
	path := writeBrief(t, "brief.yaml", `agent_type: coding
primary_goal: Fix bugs
`)

	brief, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, brief.Overrides)
}

func TestLoadBriefValidation(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		errText string
	}{
		{
			name:    "missing agent type",
			file:    "b.yaml",
			content: "primary_goal: g\n",
			errText: "agent_type",
		},
		{
			name:    "unknown agent type",
			file:    "b.yaml",
			content: "agent_type: quantum-agent\nprimary_goal: g\n",
			errText: "quantum-agent",
		},
		{
			name:    "missing primary goal",
			file:    "b.yaml",
			content: "agent_type: coding\n",
			errText: "primary_goal",
		},
		{
			name:    "unknown distribution category",
			file:    "b.yaml",
			content: "agent_type: coding\nprimary_goal: g\ndistribution:\n  chaos: 3\n",
			errText: "chaos",
		},
		{
			name:    "bad latency bound",
			file:    "b.yaml",
			content: "agent_type: coding\nprimary_goal: g\nlatency_bound: fast\n",
			errText: "latency_bound",
		},
		{
			name:    "markdown without frontmatter",
			file:    "b.md",
			content: "# Just a heading\n",
			errText: "frontmatter",
		},
		{
			name:    "unsupported extension",
			file:    "b.txt",
			content: "agent_type: coding\n",
			errText: "unsupported brief format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeBrief(t, tt.file, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read brief")
}
