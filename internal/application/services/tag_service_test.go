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

func TestRemoveTagCascadesToTasks(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")

	urgentTag, err := env.tags.CreateTag(env.ctx, ports.CreateTagRequest{Name: "urgent", Color: "#ff0000"})
	require.NoError(t, err)
	keepTag, err := env.tags.CreateTag(env.ctx, ports.CreateTagRequest{Name: "keep", Color: "#00ff00"})
	require.NoError(t, err)

	tagged := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "tagged", StateID: todo.ID, PriorityID: priorities[0].ID,
		TagIDs: []uuid.UUID{urgentTag, keepTag},
	})
	archived := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "archived tagged", StateID: todo.ID, PriorityID: priorities[0].ID,
		TagIDs: []uuid.UUID{urgentTag},
	})
	untouched := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "plain", StateID: todo.ID, PriorityID: priorities[0].ID,
	})
	require.NoError(t, env.tasks.ArchiveTask(env.ctx, archived))

	env.advance(time.Hour)
	require.NoError(t, env.tags.RemoveTag(env.ctx, urgentTag))

	first, err := env.tasks.GetTask(env.ctx, tagged)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{keepTag}, first.TagIDs)
	assert.Equal(t, entities.Millis(env.clock), first.UpdatedAt)

	second, err := env.tasks.GetTask(env.ctx, archived)
	require.NoError(t, err)
	assert.Empty(t, second.TagIDs)
	assert.True(t, second.Archived)

	third, err := env.tasks.GetTask(env.ctx, untouched)
	require.NoError(t, err)
	assert.NotEqual(t, entities.Millis(env.clock), third.UpdatedAt)

	tags, err := env.tags.ListTags(env.ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, keepTag, tags[0].ID)

	entries, err := env.audit.ListForEntity(env.ctx, entities.EntityTag, urgentTag.String())
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, entities.ActionDelete, entries[0].Action)
	assert.Equal(t, 2, entries[0].Metadata["detached_tasks"])
}

func TestRemoveTagMissingIsNoop(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.tags.RemoveTag(env.ctx, uuid.New()))
}

func TestUpdateTagAuditsChangedFields(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.tags.CreateTag(env.ctx, ports.CreateTagRequest{Name: "infra", Color: "#336699"})
	require.NoError(t, err)

	env.advance(time.Minute)

	color := "#993366"
	sameName := "infra"
	require.NoError(t, env.tags.UpdateTag(env.ctx, id, ports.UpdateTagRequest{Name: &sameName, Color: &color}))

	entries, err := env.audit.ListForEntity(env.ctx, entities.EntityTag, id.String())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	update := entries[0]
	assert.Equal(t, entities.ActionUpdate, update.Action)
	require.Len(t, update.Changes, 1)
	assert.Equal(t, "#336699", update.Changes["color"].Old)
	assert.Equal(t, "#993366", update.Changes["color"].New)
}
