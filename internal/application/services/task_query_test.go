package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/core/internal/ports"
)

func TestListTasksFiltersByDimension(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")
	done := stateNamed(t, states, "Done")

	inTodo := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "write report", StateID: todo.ID, PriorityID: priorities[0].ID,
	})
	inDone := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "ship release", StateID: done.ID, PriorityID: priorities[1].ID,
	})

	// Include: only the matching state comes back.
	result, err := env.tasks.ListTasks(env.ctx, ports.TaskListFilter{
		StateIDs: []uuid.UUID{todo.ID},
	})
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, inTodo, result.Tasks[0].ID)

	// Exclude: the matching state is removed.
	result, err = env.tasks.ListTasks(env.ctx, ports.TaskListFilter{
		ExcludeStateIDs: []uuid.UUID{todo.ID},
	})
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, inDone, result.Tasks[0].ID)

	// Include and exclude on the same dimension are a conjunction.
	result, err = env.tasks.ListTasks(env.ctx, ports.TaskListFilter{
		StateIDs:        []uuid.UUID{todo.ID, done.ID},
		ExcludeStateIDs: []uuid.UUID{done.ID},
	})
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, inTodo, result.Tasks[0].ID)
}

func TestListTasksAssigneeIntersection(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")
	bob := env.addUser(t, "Bob", "bob@example.com")

	mine := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "mine", StateID: todo.ID, PriorityID: priorities[0].ID,
		Assignees: []uuid.UUID{env.alice.ID},
	})
	shared := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "shared", StateID: todo.ID, PriorityID: priorities[0].ID,
		Assignees: []uuid.UUID{env.alice.ID, bob.ID},
	})
	unassigned := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "unassigned", StateID: todo.ID, PriorityID: priorities[0].ID,
	})

	// Any overlap with the inclusion set matches.
	result, err := env.tasks.ListTasks(env.ctx, ports.TaskListFilter{
		AssigneeIDs: []uuid.UUID{bob.ID},
	})
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, shared, result.Tasks[0].ID)

	// Any overlap with the exclusion set removes.
	result, err = env.tasks.ListTasks(env.ctx, ports.TaskListFilter{
		ExcludeAssigneeIDs: []uuid.UUID{bob.ID},
	})
	require.NoError(t, err)
	ids := taskIDs(result)
	assert.ElementsMatch(t, []uuid.UUID{mine, unassigned}, ids)
}

func TestListTasksProjectEdgeCases(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")

	projectID, err := env.projects.CreateProject(env.ctx, ports.CreateProjectRequest{Name: "Launch"})
	require.NoError(t, err)

	inProject := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "planned", StateID: todo.ID, PriorityID: priorities[0].ID, ProjectID: &projectID,
	})
	noProject := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "floating", StateID: todo.ID, PriorityID: priorities[0].ID,
	})

	// A task with no project never matches a project inclusion.
	result, err := env.tasks.ListTasks(env.ctx, ports.TaskListFilter{
		ProjectIDs: []uuid.UUID{projectID},
	})
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, inProject, result.Tasks[0].ID)

	// A task with no project always passes a project exclusion.
	result, err = env.tasks.ListTasks(env.ctx, ports.TaskListFilter{
		ExcludeProjectIDs: []uuid.UUID{projectID},
	})
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, noProject, result.Tasks[0].ID)
}

func TestListTasksTotalCountBeforeLimit(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")

	for i := 0; i < 5; i++ {
		env.mustCreateTask(t, ports.CreateTaskRequest{
			Title: "task", StateID: todo.ID, PriorityID: priorities[0].ID,
		})
		env.advance(time.Millisecond)
	}

	result, err := env.tasks.ListTasks(env.ctx, ports.TaskListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Tasks, 2)
	assert.Equal(t, 5, result.TotalCount)
}

func TestListTasksPaginationMonotonic(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")

	for i := 0; i < 6; i++ {
		env.mustCreateTask(t, ports.CreateTaskRequest{
			Title: "task", StateID: todo.ID, PriorityID: priorities[0].ID,
		})
		env.advance(time.Millisecond)
	}

	small, err := env.tasks.ListTasks(env.ctx, ports.TaskListFilter{Limit: 3})
	require.NoError(t, err)
	large, err := env.tasks.ListTasks(env.ctx, ports.TaskListFilter{Limit: 6})
	require.NoError(t, err)

	// Growing the limit extends the page without reshuffling the prefix.
	require.Len(t, small.Tasks, 3)
	require.Len(t, large.Tasks, 6)
	for i, v := range small.Tasks {
		assert.Equal(t, large.Tasks[i].ID, v.ID)
	}
	// Newest first.
	for i := 1; i < len(large.Tasks); i++ {
		assert.GreaterOrEqual(t, large.Tasks[i-1].CreatedAt, large.Tasks[i].CreatedAt)
	}
}

func TestListTasksPartitionsArchived(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")

	active := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "active", StateID: todo.ID, PriorityID: priorities[0].ID,
	})
	archived := env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "archived", StateID: todo.ID, PriorityID: priorities[0].ID,
	})
	require.NoError(t, env.tasks.ArchiveTask(env.ctx, archived))

	result, err := env.tasks.ListTasks(env.ctx, ports.TaskListFilter{Archived: false})
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, active, result.Tasks[0].ID)

	result, err = env.tasks.ListTasks(env.ctx, ports.TaskListFilter{Archived: true})
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, archived, result.Tasks[0].ID)
}

func TestListTasksDenormalizes(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")

	tagID, err := env.tags.CreateTag(env.ctx, ports.CreateTagRequest{Name: "backend", Color: "#ff0000"})
	require.NoError(t, err)

	env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "tagged", StateID: todo.ID, PriorityID: priorities[0].ID,
		Assignees: []uuid.UUID{env.alice.ID},
		TagIDs:    []uuid.UUID{tagID},
	})

	result, err := env.tasks.ListTasks(env.ctx, ports.TaskListFilter{})
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)

	view := result.Tasks[0]
	require.NotNil(t, view.State)
	assert.Equal(t, "To Do", view.State.Name)
	require.NotNil(t, view.Priority)
	require.Len(t, view.AssigneeUsers, 1)
	assert.Equal(t, "alice@example.com", view.AssigneeUsers[0].Email)
	require.Len(t, view.TagList, 1)
	assert.Equal(t, "backend", view.TagList[0].Name)
	assert.Nil(t, view.Project)
}

func TestListTasksUnauthorizedEmpty(t *testing.T) {
	env := newTestEnv(t)
	states, priorities := env.mustSeed(t)
	todo := stateNamed(t, states, "To Do")
	env.mustCreateTask(t, ports.CreateTaskRequest{
		Title: "hidden", StateID: todo.ID, PriorityID: priorities[0].ID,
	})

	result, err := env.tasks.ListTasks(context.Background(), ports.TaskListFilter{})
	require.NoError(t, err)
	assert.Empty(t, result.Tasks)
	assert.Zero(t, result.TotalCount)

	view, err := env.tasks.GetTask(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, view)
}

func taskIDs(result *TaskListResult) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(result.Tasks))
	for _, t := range result.Tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
