package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/ports"
)

// TaskListResult is one page of denormalized tasks plus the size of the full
// filtered set before the limit was applied.
type TaskListResult struct {
	Tasks      []*entities.TaskView `json:"tasks"`
	TotalCount int                  `json:"total_count"`
}

// ListTasks runs the task query engine: partition selection, five-dimension
// include/exclude filtering, creation-time-descending ordering, prefix limit
// and denormalization. Unauthorized callers get an empty page, never an
// error.
func (s *TaskService) ListTasks(ctx context.Context, filter ports.TaskListFilter) (*TaskListResult, error) {
	userID, err := s.authz.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return &TaskListResult{Tasks: []*entities.TaskView{}}, nil
	}

	// The repository returns exactly one partition, newest first with id as
	// tiebreak, which is what makes growing-limit pagination monotonic.
	tasks, err := s.taskRepo.ListByArchived(ctx, filter.Archived)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	matched := make([]*entities.Task, 0, len(tasks))
	for _, t := range tasks {
		if matchesFilter(t, filter) {
			matched = append(matched, t)
		}
	}

	totalCount := len(matched)

	limit := filter.Limit
	if limit <= 0 {
		limit = ports.DefaultTaskListLimit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	views, err := s.denormalizeTasks(ctx, matched)
	if err != nil {
		return nil, err
	}

	return &TaskListResult{Tasks: views, TotalCount: totalCount}, nil
}

// GetTask returns one denormalized task, or nil when the task does not exist
// or the caller is not authorized.
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*entities.TaskView, error) {
	userID, err := s.authz.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return nil, nil
	}

	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return nil, nil
		}
		return nil, err
	}

	views, err := s.denormalizeTasks(ctx, []*entities.Task{task})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// matchesFilter applies all five dimensions as a conjunction. Within a
// dimension an empty set passes everything; when both sets are non-empty the
// task must satisfy both predicates.
func matchesFilter(t *entities.Task, f ports.TaskListFilter) bool {
	if !matchesScalar(&t.StateID, f.StateIDs, f.ExcludeStateIDs) {
		return false
	}
	if !matchesScalar(&t.PriorityID, f.PriorityIDs, f.ExcludePriorityIDs) {
		return false
	}
	// A task with no project is never matched by project inclusion (there is
	// no "unassigned" sentinel) and trivially passes project exclusion.
	if !matchesScalar(t.ProjectID, f.ProjectIDs, f.ExcludeProjectIDs) {
		return false
	}
	if !matchesMulti(t.Assignees, f.AssigneeIDs, f.ExcludeAssigneeIDs) {
		return false
	}
	if !matchesMulti(t.TagIDs, f.TagIDs, f.ExcludeTagIDs) {
		return false
	}
	return true
}

func matchesScalar(value *uuid.UUID, include, exclude []uuid.UUID) bool {
	if len(include) > 0 {
		if value == nil || !containsUUID(include, *value) {
			return false
		}
	}
	if len(exclude) > 0 {
		if value != nil && containsUUID(exclude, *value) {
			return false
		}
	}
	return true
}

func matchesMulti(values, include, exclude []uuid.UUID) bool {
	if len(include) > 0 && !intersects(values, include) {
		return false
	}
	if len(exclude) > 0 && intersects(values, exclude) {
		return false
	}
	return true
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func intersects(a, b []uuid.UUID) bool {
	for _, id := range a {
		if containsUUID(b, id) {
			return true
		}
	}
	return false
}

// denormalizeTasks batch-loads every referenced collection once and joins in
// memory. Missing references resolve to nil; missing assignees and tags are
// dropped from their lists.
func (s *TaskService) denormalizeTasks(ctx context.Context, tasks []*entities.Task) ([]*entities.TaskView, error) {
	states, err := s.stateRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load states: %w", err)
	}
	priorities, err := s.priorityRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load priorities: %w", err)
	}
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	stateMap := make(map[uuid.UUID]*entities.TaskState, len(states))
	for _, st := range states {
		stateMap[st.ID] = st
	}
	priorityMap := make(map[uuid.UUID]*entities.Priority, len(priorities))
	for _, p := range priorities {
		priorityMap[p.ID] = p
	}
	projectMap := make(map[uuid.UUID]*entities.Project, len(projects))
	for _, p := range projects {
		projectMap[p.ID] = p
	}
	userMap := make(map[uuid.UUID]*entities.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}
	tagMap := make(map[uuid.UUID]*entities.Tag, len(tags))
	for _, t := range tags {
		tagMap[t.ID] = t
	}

	views := make([]*entities.TaskView, 0, len(tasks))
	for _, task := range tasks {
		view := &entities.TaskView{
			Task:          *task.Clone(),
			State:         stateMap[task.StateID],
			Priority:      priorityMap[task.PriorityID],
			AssigneeUsers: []*entities.User{},
			TagList:       []*entities.Tag{},
		}
		if task.ProjectID != nil {
			view.Project = projectMap[*task.ProjectID]
		}
		for _, id := range task.Assignees {
			if u, ok := userMap[id]; ok {
				view.AssigneeUsers = append(view.AssigneeUsers, u)
			}
		}
		for _, id := range task.TagIDs {
			if tg, ok := tagMap[id]; ok {
				view.TagList = append(view.TagList, tg)
			}
		}
		views = append(views, view)
	}
	return views, nil
}
