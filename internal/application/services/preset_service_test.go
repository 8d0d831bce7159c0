package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/core/internal/ports"
)

func TestPresetLifecycle(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.presets.CreatePreset(env.ctx, ports.CreatePresetRequest{
		Name:     "my urgent tasks",
		Filters:  `{"priority_ids":["x"]}`,
		SortKeys: `[{"column":"updatedAt","direction":"desc"}]`,
	})
	require.NoError(t, err)

	name := "urgent, mine"
	require.NoError(t, env.presets.UpdatePreset(env.ctx, id, ports.UpdatePresetRequest{Name: &name}))

	presets, err := env.presets.ListPresets(env.ctx)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "urgent, mine", presets[0].Name)
	assert.Equal(t, `{"priority_ids":["x"]}`, presets[0].Filters)
	assert.Equal(t, env.alice.ID, presets[0].CreatedBy)

	require.NoError(t, env.presets.RemovePreset(env.ctx, id))
	require.NoError(t, env.presets.RemovePreset(env.ctx, id))

	presets, err = env.presets.ListPresets(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, presets)
}

func TestPresetWritesLeaveNoAuditTrail(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.presets.CreatePreset(env.ctx, ports.CreatePresetRequest{
		Name: "scratch", Filters: "{}", SortKeys: "[]",
	})
	require.NoError(t, err)

	entries, err := env.audit.List(env.ctx, "")
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, env.presets.RemovePreset(env.ctx, id))
}

func TestPresetReadsDegradeUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	presets, err := env.presets.ListPresets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, presets)

	_, err = env.presets.CreatePreset(context.Background(), ports.CreatePresetRequest{
		Name: "nope", Filters: "{}", SortKeys: "[]",
	})
	assert.Error(t, err)
}
