package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/ports"
)

func TestCreateStateAppendsToOrder(t *testing.T) {
	env := newTestEnv(t)
	env.mustSeed(t)

	id, err := env.workflow.CreateState(env.ctx, ports.CreateLookupRequest{Name: "Review"})
	require.NoError(t, err)

	states, err := env.workflow.ListStates(env.ctx)
	require.NoError(t, err)
	require.Len(t, states, 5)
	last := states[len(states)-1]
	assert.Equal(t, id, last.ID)
	assert.Equal(t, 4, last.Order)
}

func TestReorderStatesAssignsDenseOrder(t *testing.T) {
	env := newTestEnv(t)
	states, _ := env.mustSeed(t)

	// Reverse the seeded order, with one unknown id mixed in.
	ids := []uuid.UUID{uuid.New()}
	for i := len(states) - 1; i >= 0; i-- {
		ids = append(ids, states[i].ID)
	}
	require.NoError(t, env.workflow.ReorderStates(env.ctx, ids))

	reordered, err := env.workflow.ListStates(env.ctx)
	require.NoError(t, err)
	require.Len(t, reordered, len(states))
	for i, st := range reordered {
		assert.Equal(t, i, st.Order)
		assert.Equal(t, states[len(states)-1-i].ID, st.ID)
	}

	// The reorder is recorded against the collection itself, addressable by
	// the entity type.
	entries, err := env.audit.ListForEntity(env.ctx, entities.EntityTaskState, entities.EntityTaskState)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.ActionReorder, entries[0].Action)
}

func TestCreateStateAfterRemovalKeepsOrderUnique(t *testing.T) {
	env := newTestEnv(t)
	states, _ := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")

	// Removing the order-0 row leaves a gap; the next create must still land
	// above the highest surviving order, not on a length-based collision.
	require.NoError(t, env.workflow.RemoveState(env.ctx, todo.ID))

	id, err := env.workflow.CreateState(env.ctx, ports.CreateLookupRequest{Name: "Review"})
	require.NoError(t, err)

	remaining, err := env.workflow.ListStates(env.ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 4)
	seen := make(map[int]string, len(remaining))
	for _, st := range remaining {
		other, dup := seen[st.Order]
		require.False(t, dup, "order %d shared by %q and %q", st.Order, other, st.Name)
		seen[st.Order] = st.Name
	}
	last := remaining[len(remaining)-1]
	assert.Equal(t, id, last.ID)
	assert.Equal(t, 4, last.Order)
}

func TestRemoveStateInUse(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")

	id := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "holds state", StateID: todo.ID, PriorityID: priorities[0].ID,
	})

	assert.ErrorIs(t, env.workflow.RemoveState(env.ctx, todo.ID), entities.ErrInUse)

	// The guard covers archived tasks too.
	require.NoError(t, env.tasks.ArchiveTask(env.ctx, id))
	assert.ErrorIs(t, env.workflow.RemoveState(env.ctx, todo.ID), entities.ErrInUse)

	require.NoError(t, env.tasks.RemoveTask(env.ctx, id))
	require.NoError(t, env.workflow.RemoveState(env.ctx, todo.ID))

	// Removing a missing state is a no-op.
	require.NoError(t, env.workflow.RemoveState(env.ctx, uuid.New()))
}

func TestRemovePriorityInUse(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")
	urgent := priorities[0]

	env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "holds priority", StateID: todo.ID, PriorityID: urgent.ID,
	})

	assert.ErrorIs(t, env.workflow.RemovePriority(env.ctx, urgent.ID), entities.ErrInUse)
	require.NoError(t, env.workflow.RemovePriority(env.ctx, priorities[1].ID))
}

func TestUpdateStateAuditsNameChange(t *testing.T) {
	env := newTestEnv(t)
	states, _ := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")

	name := "Backlog"
	require.NoError(t, env.workflow.UpdateState(env.ctx, todo.ID, ports.UpdateLookupRequest{Name: &name}))

	entries, err := env.audit.ListForEntity(env.ctx, entities.EntityTaskState, todo.ID.String())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.ActionUpdate, entries[0].Action)
	assert.Equal(t, "To Do", entries[0].Changes["name"].Old)
	assert.Equal(t, "Backlog", entries[0].Changes["name"].New)
}

func TestWorkflowReadsDegradeUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	env.mustSeed(t)

	states, err := env.workflow.ListStates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, states)

	priorities, err := env.workflow.ListPriorities(context.Background())
	require.NoError(t, err)
	assert.Empty(t, priorities)

	_, err = env.workflow.CreateState(context.Background(), ports.CreateLookupRequest{Name: "nope"})
	assert.ErrorIs(t, err, entities.ErrNotAuthenticated)
}

func TestSeedDefaultsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	states, priorities := env.mustSeed(t)
	require.Len(t, states, 4)
	require.Len(t, priorities, 4)
	assert.Equal(t, "To Do", states[0].Name)
	assert.Equal(t, "Urgent", priorities[0].Name)

	// A second run leaves populated collections untouched.
	again, againPriorities := env.mustSeed(t)
	assert.Len(t, again, 4)
	assert.Len(t, againPriorities, 4)
	assert.Equal(t, states[0].ID, again[0].ID)
}
