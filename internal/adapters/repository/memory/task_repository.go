package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskboard/core/internal/domain/entities"
)

type taskRepository struct {
	store *store
}

func (r *taskRepository) Create(ctx context.Context, task *entities.Task) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.tasks[task.ID] = task.Clone()
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	task, ok := r.store.tasks[id]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	return task.Clone(), nil
}

func (r *taskRepository) Update(ctx context.Context, task *entities.Task) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tasks[task.ID]; !ok {
		return entities.ErrTaskNotFound
	}
	r.store.tasks[task.ID] = task.Clone()
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tasks[id]; !ok {
		return entities.ErrTaskNotFound
	}
	delete(r.store.tasks, id)
	return nil
}

func (r *taskRepository) ListByArchived(ctx context.Context, archived bool) ([]*entities.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	tasks := make([]*entities.Task, 0, len(r.store.tasks))
	for _, t := range r.store.tasks {
		if t.Archived == archived {
			tasks = append(tasks, t.Clone())
		}
	}
	sortTasksNewestFirst(tasks)
	return tasks, nil
}

func (r *taskRepository) ListByTag(ctx context.Context, tagID uuid.UUID) ([]*entities.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	tasks := make([]*entities.Task, 0)
	for _, t := range r.store.tasks {
		if t.HasTag(tagID) {
			tasks = append(tasks, t.Clone())
		}
	}
	sortTasksNewestFirst(tasks)
	return tasks, nil
}

func (r *taskRepository) ExistsWithState(ctx context.Context, stateID uuid.UUID) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, t := range r.store.tasks {
		if t.StateID == stateID {
			return true, nil
		}
	}
	return false, nil
}

func (r *taskRepository) ExistsWithPriority(ctx context.Context, priorityID uuid.UUID) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, t := range r.store.tasks {
		if t.PriorityID == priorityID {
			return true, nil
		}
	}
	return false, nil
}
