package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/taskboard/core/internal/domain/entities"
)

type stateRepository struct {
	store *store
}

func (r *stateRepository) Create(ctx context.Context, state *entities.TaskState) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *state
	r.store.states[state.ID] = &c
	return nil
}

func (r *stateRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TaskState, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	state, ok := r.store.states[id]
	if !ok {
		return nil, entities.ErrStateNotFound
	}
	c := *state
	return &c, nil
}

func (r *stateRepository) Update(ctx context.Context, state *entities.TaskState) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.states[state.ID]; !ok {
		return entities.ErrStateNotFound
	}
	c := *state
	r.store.states[state.ID] = &c
	return nil
}

func (r *stateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.states[id]; !ok {
		return entities.ErrStateNotFound
	}
	delete(r.store.states, id)
	return nil
}

func (r *stateRepository) List(ctx context.Context) ([]*entities.TaskState, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	states := make([]*entities.TaskState, 0, len(r.store.states))
	for _, st := range r.store.states {
		c := *st
		states = append(states, &c)
	}
	sort.Slice(states, func(i, j int) bool {
		if states[i].Order != states[j].Order {
			return states[i].Order < states[j].Order
		}
		return states[i].ID.String() < states[j].ID.String()
	})
	return states, nil
}

type priorityRepository struct {
	store *store
}

func (r *priorityRepository) Create(ctx context.Context, priority *entities.Priority) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *priority
	r.store.priorities[priority.ID] = &c
	return nil
}

func (r *priorityRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Priority, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	priority, ok := r.store.priorities[id]
	if !ok {
		return nil, entities.ErrPriorityNotFound
	}
	c := *priority
	return &c, nil
}

func (r *priorityRepository) Update(ctx context.Context, priority *entities.Priority) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.priorities[priority.ID]; !ok {
		return entities.ErrPriorityNotFound
	}
	c := *priority
	r.store.priorities[priority.ID] = &c
	return nil
}

func (r *priorityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.priorities[id]; !ok {
		return entities.ErrPriorityNotFound
	}
	delete(r.store.priorities, id)
	return nil
}

func (r *priorityRepository) List(ctx context.Context) ([]*entities.Priority, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	priorities := make([]*entities.Priority, 0, len(r.store.priorities))
	for _, p := range r.store.priorities {
		c := *p
		priorities = append(priorities, &c)
	}
	sort.Slice(priorities, func(i, j int) bool {
		if priorities[i].Order != priorities[j].Order {
			return priorities[i].Order < priorities[j].Order
		}
		return priorities[i].ID.String() < priorities[j].ID.String()
	})
	return priorities, nil
}

type tagRepository struct {
	store *store
}

func (r *tagRepository) Create(ctx context.Context, tag *entities.Tag) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *tag
	r.store.tags[tag.ID] = &c
	return nil
}

func (r *tagRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Tag, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	tag, ok := r.store.tags[id]
	if !ok {
		return nil, entities.ErrTagNotFound
	}
	c := *tag
	return &c, nil
}

func (r *tagRepository) Update(ctx context.Context, tag *entities.Tag) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tags[tag.ID]; !ok {
		return entities.ErrTagNotFound
	}
	c := *tag
	r.store.tags[tag.ID] = &c
	return nil
}

func (r *tagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tags[id]; !ok {
		return entities.ErrTagNotFound
	}
	delete(r.store.tags, id)
	return nil
}

func (r *tagRepository) List(ctx context.Context) ([]*entities.Tag, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	tags := make([]*entities.Tag, 0, len(r.store.tags))
	for _, t := range r.store.tags {
		c := *t
		tags = append(tags, &c)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}
