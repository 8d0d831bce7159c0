package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/ports"
)

func TestCreateUpdateRequiresTask(t *testing.T) {
	env := newTestEnv(t)
	env.mustSeed(t)

	_, err := env.updates.CreateUpdate(env.ctx, ports.CreateUpdateRequest{
		TaskID: uuid.New(),
		Body:   "orphan comment",
	})
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestListForTaskResolvesAuthors(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")

	taskID := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "discussed", StateID: todo.ID, PriorityID: priorities[0].ID,
	})

	first, err := env.updates.CreateUpdate(env.ctx, ports.CreateUpdateRequest{TaskID: taskID, Body: "started work"})
	require.NoError(t, err)
	env.advance(time.Minute)
	second, err := env.updates.CreateUpdate(env.ctx, ports.CreateUpdateRequest{TaskID: taskID, Body: "blocked on review"})
	require.NoError(t, err)

	views, err := env.updates.ListForTask(env.ctx, taskID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second, views[0].ID)
	assert.Equal(t, first, views[1].ID)
	require.NotNil(t, views[0].User)
	assert.Equal(t, env.alice.Email, views[0].User.Email)

	// Comment activity lands on the task's audit trail.
	entries, err := env.audit.ListForEntity(env.ctx, entities.EntityTask, taskID.String())
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, entities.ActionAddUpdate, entries[0].Action)
	assert.Equal(t, "blocked on review", entries[0].Metadata["body"])
}

func TestRemoveUpdateNoopOnMissing(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")

	taskID := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "commented", StateID: todo.ID, PriorityID: priorities[0].ID,
	})
	id, err := env.updates.CreateUpdate(env.ctx, ports.CreateUpdateRequest{TaskID: taskID, Body: "done"})
	require.NoError(t, err)

	env.advance(time.Minute)
	require.NoError(t, env.updates.RemoveUpdate(env.ctx, id))
	views, err := env.updates.ListForTask(env.ctx, taskID)
	require.NoError(t, err)
	assert.Empty(t, views)

	require.NoError(t, env.updates.RemoveUpdate(env.ctx, id))

	entries, err := env.audit.ListForEntity(env.ctx, entities.EntityTask, taskID.String())
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, entities.ActionRemoveUpdate, entries[0].Action)
}
