package dataset

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BayramAnnakov/eval-coach/pkg/db"
	"github.com/BayramAnnakov/eval-coach/pkg/db/migrations"
	"github.com/BayramAnnakov/eval-coach/pkg/plan"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "eval.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	runner := db.NewMigrationRunner(database)
	require.NoError(t, runner.Run(ctx, migrations.All()))

	return NewStore(database)
}

func TestStoreSaveAndList(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	cases, err := Scaffold(researchPlan(t), time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, store.SaveCases(ctx, cases))

	all, err := store.ListCases(ctx, "market-researcher", "")
	require.NoError(t, err)
	assert.Len(t, all, 21)

	adversarial, err := store.ListCases(ctx, "market-researcher", plan.CategoryAdversarial)
	require.NoError(t, err)
	assert.Len(t, adversarial, 4)
	for _, c := range adversarial {
		assert.Equal(t, plan.CategoryAdversarial, c.Category)
	}
}

func TestStoreRoundTripPreservesCase(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	original := Case{
		ID:       "case-1",
		PlanName: "p",
		Name:     "happy_path_1",
		Category: plan.CategoryHappyPath,
		Inputs:   map[string]string{"query": "q", "context": "c"},
		Expectations: Expectations{
			ExpectedFields:    []string{"response"},
			ShouldMention:     []string{"keyword"},
			MinResponseLength: 100,
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveCases(ctx, []Case{original}))

	listed, err := store.ListCases(ctx, "p", "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, original.Inputs, listed[0].Inputs)
	assert.Equal(t, original.Expectations, listed[0].Expectations)
}

func TestStoreUpsertRefreshesWithoutDuplicating(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	c := Case{
		ID: "a", PlanName: "p", Name: "happy_path_1",
		Category:  plan.CategoryHappyPath,
		Inputs:    map[string]string{"query": "v1"},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveCases(ctx, []Case{c}))

	c.ID = "b"
	c.Inputs = map[string]string{"query": "v2"}
	require.NoError(t, store.SaveCases(ctx, []Case{c}))

	listed, err := store.ListCases(ctx, "p", "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "v2", listed[0].Inputs["query"])
}

func TestStorePlanNames(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	now := time.Now().UTC()
	require.NoError(t, store.SaveCases(ctx, []Case{
		{ID: "1", PlanName: "beta", Name: "c1", Category: plan.CategoryHappyPath, Inputs: map[string]string{}, CreatedAt: now},
		{ID: "2", PlanName: "alpha", Name: "c1", Category: plan.CategoryHappyPath, Inputs: map[string]string{}, CreatedAt: now},
	}))

	names, err := store.PlanNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)
}

func TestStoreExportJSON(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	cases, err := Scaffold(researchPlan(t), time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, store.SaveCases(ctx, cases))

	out, err := store.ExportJSON(ctx, "market-researcher")
	require.NoError(t, err)
	assert.Contains(t, out, `"adversarial_contradiction_probe"`)
	assert.Contains(t, out, `"surfaceContradiction": true`)

	_, err = store.ExportJSON(ctx, "missing-plan")
	assert.Error(t, err)
}
