package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/ports"
)

func TestAuditListFiltersByEntityType(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")

	env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "first", StateID: todo.ID, PriorityID: priorities[0].ID,
	})
	env.advance(time.Minute)
	_, err := env.projects.CreateProject(env.ctx, ports.CreateProjectRequest{Name: "side"})
	require.NoError(t, err)

	all, err := env.audit.List(env.ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Newest first.
	assert.Equal(t, entities.EntityProject, all[0].EntityType)
	assert.Equal(t, entities.EntityTask, all[1].EntityType)

	tasksOnly, err := env.audit.List(env.ctx, entities.EntityTask)
	require.NoError(t, err)
	require.Len(t, tasksOnly, 1)
	assert.Equal(t, entities.ActionCreate, tasksOnly[0].Action)
}

func TestAuditEntriesCarryActingUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.projects.CreateProject(env.ctx, ports.CreateProjectRequest{Name: "attributed"})
	require.NoError(t, err)

	entries, err := env.audit.List(env.ctx, entities.EntityProject)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].User)
	assert.Equal(t, env.alice.Email, entries[0].User.Email)
	assert.Equal(t, env.alice.ID, entries[0].UserID)
}

func TestAuditTimestampTiesBreakOnIDDescending(t *testing.T) {
	env := newTestEnv(t)

	// Two entries in the same millisecond: ordering must not depend on
	// insertion order, only on the id tiebreak.
	env.audit.Record(env.ctx, env.alice.ID, entities.ActionCreate, entities.EntityProject, "p1", nil, nil)
	env.audit.Record(env.ctx, env.alice.ID, entities.ActionCreate, entities.EntityProject, "p2", nil, nil)

	entries, err := env.audit.List(env.ctx, entities.EntityProject)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].Timestamp, entries[1].Timestamp)
	assert.Greater(t, entries[0].ID.String(), entries[1].ID.String())
}

func TestAuditReadsDegradeUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.projects.CreateProject(env.ctx, ports.CreateProjectRequest{Name: "hidden"})
	require.NoError(t, err)

	entries, err := env.audit.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
