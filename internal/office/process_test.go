package office

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docket/pkg/types"
)

func TestSeedCaseStagesOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	n, err := f.office.Process.SeedCaseStages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	n, err = f.office.Process.SeedCaseStages(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	stages := f.office.Process.Stages(ctx)
	require.Len(t, stages, 7)
	assert.Equal(t, "Açılış", stages[0].Name)
	assert.Equal(t, "1", stages[0].ID)
	assert.Equal(t, types.FinalStage, stages[6].Name)
	assert.Equal(t, "7", stages[6].ID)
}

func TestAdvanceToFinalStageClosesCase(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.office.Process.SeedCaseStages(ctx)
	require.NoError(t, err)
	c, err := f.office.Cases.Create(ctx, lawyer, sampleCase())
	require.NoError(t, err)

	_, err = f.office.Process.Advance(ctx, lawyer, c.ID, "99", "")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = f.office.Process.Advance(ctx, lawyer, "nope", "1", "")
	assert.ErrorIs(t, err, types.ErrNotFound)

	step, err := f.office.Process.Advance(ctx, lawyer, c.ID, "4", "ilk duruşma")
	require.NoError(t, err)
	assert.Equal(t, "Duruşma", step.StageName)
	got, _ := f.office.Cases.Get(ctx, c.ID)
	assert.Equal(t, "Open", got.Status)

	_, err = f.office.Process.Advance(ctx, lawyer, c.ID, "7", "karar kesinleşti")
	require.NoError(t, err)
	got, _ = f.office.Cases.Get(ctx, c.ID)
	assert.Equal(t, types.CaseClosed, got.Status)

	hist := f.office.Process.History(ctx, c.ID)
	require.Len(t, hist, 2)
	assert.Equal(t, "Duruşma", hist[0].StageName)
	assert.Equal(t, "ilk duruşma", hist[0].Note)
	assert.Equal(t, types.FinalStage, hist[1].StageName)

	logs := f.logs(t)
	require.Len(t, logs, 3)
	assert.Equal(t, "Dava aşaması eklendi: Sonuç", logs[2].ActionDescription)
}
