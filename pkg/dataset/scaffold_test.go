package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BayramAnnakov/eval-coach/pkg/plan"
)

func researchPlan(t *testing.T) *plan.EvaluationPlan {
	t.Helper()
	p, err := plan.Generate(plan.AgentProfile{
		Name:         "market-researcher",
		AgentType:    plan.AgentTypeResearch,
		PrimaryGoal:  "Research reports",
		FailureModes: []string{"silent reconciliation of contradictory data"},
	}, &plan.Overrides{TotalCases: 21})
	require.NoError(t, err)
	return p
}

func TestScaffoldCounts(t *testing.T) {
	p := researchPlan(t)
	cases, err := Scaffold(p, time.Now())
	require.NoError(t, err)
	require.Len(t, cases, 21)

	counts := map[plan.Category]int{}
	for _, c := range cases {
		counts[c.Category]++
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, "market-researcher", c.PlanName)
		assert.NotEmpty(t, c.Inputs)
	}
	assert.Equal(t, 10, counts[plan.CategoryHappyPath])
	assert.Equal(t, 7, counts[plan.CategoryEdgeCase])
	assert.Equal(t, 4, counts[plan.CategoryAdversarial])
}

func TestScaffoldContradictionProbe(t *testing.T) {
	cases, err := Scaffold(researchPlan(t), time.Now())
	require.NoError(t, err)

	var probe *Case
	for i := range cases {
		if cases[i].Name == "adversarial_contradiction_probe" {
			probe = &cases[i]
		}
	}
	require.NotNil(t, probe, "plan with InputDataConsistency metric must scaffold a contradiction probe")
	assert.Equal(t, plan.CategoryAdversarial, probe.Category)
	assert.True(t, probe.Expectations.SurfaceContradiction)
	assert.NotEqual(t, probe.Inputs["source_a"], probe.Inputs["source_b"])
}

func TestScaffoldNoProbeWithoutConsistencyMetric(t *testing.T) {
	p, err := plan.Generate(plan.AgentProfile{
		AgentType:    plan.AgentTypeCoding,
		PrimaryGoal:  "Fix bugs",
		FailureModes: []string{"slow"},
	}, nil)
	require.NoError(t, err)

	cases, err := Scaffold(p, time.Now())
	require.NoError(t, err)

	for _, c := range cases {
		assert.NotEqual(t, "adversarial_contradiction_probe", c.Name)
		assert.False(t, c.Expectations.SurfaceContradiction)
	}
}

func TestScaffoldNamesFollowCategoryOrder(t *testing.T) {
	cases, err := Scaffold(researchPlan(t), time.Now())
	require.NoError(t, err)

	assert.Equal(t, "happy_path_1", cases[0].Name)
	assert.Equal(t, plan.CategoryHappyPath, cases[0].Category)
	assert.Equal(t, "edge_case_1", cases[10].Name)
	assert.Equal(t, plan.CategoryEdgeCase, cases[10].Category)
}

func TestScaffoldNilPlan(t *testing.T) {
	_, err := Scaffold(nil, time.Now())
	assert.Error(t, err)
}

func TestScaffoldAdversarialInjectionCase(t *testing.T) {
	cases, err := Scaffold(researchPlan(t), time.Now())
	require.NoError(t, err)

	var injection *Case
	for i := range cases {
		if cases[i].Name == "adversarial_2" {
			injection = &cases[i]
		}
	}
	require.NotNil(t, injection)
	assert.Contains(t, injection.Inputs["query"], "Ignore previous instructions")
	assert.NotEmpty(t, injection.Expectations.ShouldNotContain)
	assert.True(t, injection.Expectations.HandleGracefully)
}
