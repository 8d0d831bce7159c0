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

func TestProjectArchivePartitionsListing(t *testing.T) {
	env := newTestEnv(t)

	active, err := env.projects.CreateProject(env.ctx, ports.CreateProjectRequest{Name: "active"})
	require.NoError(t, err)
	dormant, err := env.projects.CreateProject(env.ctx, ports.CreateProjectRequest{Name: "dormant"})
	require.NoError(t, err)
	require.NoError(t, env.projects.ArchiveProject(env.ctx, dormant))

	activeList, err := env.projects.ListProjects(env.ctx, false)
	require.NoError(t, err)
	require.Len(t, activeList, 1)
	assert.Equal(t, active, activeList[0].ID)

	archivedList, err := env.projects.ListProjects(env.ctx, true)
	require.NoError(t, err)
	require.Len(t, archivedList, 1)
	assert.Equal(t, dormant, archivedList[0].ID)
}

func TestProjectArchiveIdempotentNoAudit(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.projects.CreateProject(env.ctx, ports.CreateProjectRequest{Name: "side project"})
	require.NoError(t, err)

	env.advance(time.Minute)
	require.NoError(t, env.projects.ArchiveProject(env.ctx, id))
	before, err := env.audit.ListForEntity(env.ctx, entities.EntityProject, id.String())
	require.NoError(t, err)

	// Re-archiving an archived project changes nothing and records nothing.
	env.advance(time.Minute)
	require.NoError(t, env.projects.ArchiveProject(env.ctx, id))
	after, err := env.audit.ListForEntity(env.ctx, entities.EntityProject, id.String())
	require.NoError(t, err)
	assert.Len(t, after, len(before))

	project, err := env.projects.GetProject(env.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.True(t, project.Archived)

	env.advance(time.Minute)
	require.NoError(t, env.projects.UnarchiveProject(env.ctx, id))
	project, err = env.projects.GetProject(env.ctx, id)
	require.NoError(t, err)
	assert.False(t, project.Archived)
}

func TestGetProjectMissingReturnsNil(t *testing.T) {
	env := newTestEnv(t)

	project, err := env.projects.GetProject(env.ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, project)
}

func TestUpdateProjectAuditsDescription(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.projects.CreateProject(env.ctx, ports.CreateProjectRequest{Name: "launch"})
	require.NoError(t, err)

	env.advance(time.Minute)
	desc := "Q3 launch checklist"
	require.NoError(t, env.projects.UpdateProject(env.ctx, id, ports.UpdateProjectRequest{Description: &desc}))

	entries, err := env.audit.ListForEntity(env.ctx, entities.EntityProject, id.String())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entities.ActionUpdate, entries[0].Action)
	// A previously unset optional field diffs from nil, not from "".
	assert.Nil(t, entries[0].Changes["description"].Old)
	assert.Equal(t, desc, entries[0].Changes["description"].New)
}
