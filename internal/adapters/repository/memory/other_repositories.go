package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/taskboard/core/internal/domain/entities"
)

type projectRepository struct {
	store *store
}

func (r *projectRepository) Create(ctx context.Context, project *entities.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *project
	r.store.projects[project.ID] = &c
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	project, ok := r.store.projects[id]
	if !ok {
		return nil, entities.ErrProjectNotFound
	}
	c := *project
	return &c, nil
}

func (r *projectRepository) Update(ctx context.Context, project *entities.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.projects[project.ID]; !ok {
		return entities.ErrProjectNotFound
	}
	c := *project
	r.store.projects[project.ID] = &c
	return nil
}

func (r *projectRepository) List(ctx context.Context) ([]*entities.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	projects := make([]*entities.Project, 0, len(r.store.projects))
	for _, p := range r.store.projects {
		c := *p
		projects = append(projects, &c)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].CreatedAt != projects[j].CreatedAt {
			return projects[i].CreatedAt > projects[j].CreatedAt
		}
		return projects[i].ID.String() > projects[j].ID.String()
	})
	return projects, nil
}

type userRepository struct {
	store *store
}

func (r *userRepository) Create(ctx context.Context, user *entities.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *user
	r.store.users[user.ID] = &c
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	c := *user
	return &c, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *userRepository) List(ctx context.Context) ([]*entities.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	users := make([]*entities.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		c := *u
		users = append(users, &c)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

type updateRepository struct {
	store *store
}

func (r *updateRepository) Create(ctx context.Context, update *entities.TaskUpdate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *update
	r.store.updates[update.ID] = &c
	return nil
}

func (r *updateRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TaskUpdate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	update, ok := r.store.updates[id]
	if !ok {
		return nil, entities.ErrTaskUpdateNotFound
	}
	c := *update
	return &c, nil
}

func (r *updateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.updates[id]; !ok {
		return entities.ErrTaskUpdateNotFound
	}
	delete(r.store.updates, id)
	return nil
}

func (r *updateRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*entities.TaskUpdate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	updates := make([]*entities.TaskUpdate, 0)
	for _, u := range r.store.updates {
		if u.TaskID == taskID {
			c := *u
			updates = append(updates, &c)
		}
	}
	sort.Slice(updates, func(i, j int) bool {
		if updates[i].CreatedAt != updates[j].CreatedAt {
			return updates[i].CreatedAt > updates[j].CreatedAt
		}
		return updates[i].ID.String() > updates[j].ID.String()
	})
	return updates, nil
}

func (r *updateRepository) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, u := range r.store.updates {
		if u.TaskID == taskID {
			delete(r.store.updates, id)
		}
	}
	return nil
}

type presetRepository struct {
	store *store
}

func (r *presetRepository) Create(ctx context.Context, preset *entities.FilterPreset) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *preset
	r.store.presets[preset.ID] = &c
	return nil
}

func (r *presetRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.FilterPreset, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	preset, ok := r.store.presets[id]
	if !ok {
		return nil, entities.ErrPresetNotFound
	}
	c := *preset
	return &c, nil
}

func (r *presetRepository) Update(ctx context.Context, preset *entities.FilterPreset) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.presets[preset.ID]; !ok {
		return entities.ErrPresetNotFound
	}
	c := *preset
	r.store.presets[preset.ID] = &c
	return nil
}

func (r *presetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.presets[id]; !ok {
		return entities.ErrPresetNotFound
	}
	delete(r.store.presets, id)
	return nil
}

func (r *presetRepository) List(ctx context.Context) ([]*entities.FilterPreset, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	presets := make([]*entities.FilterPreset, 0, len(r.store.presets))
	for _, p := range r.store.presets {
		c := *p
		presets = append(presets, &c)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, nil
}

type auditRepository struct {
	store *store
}

func (r *auditRepository) Append(ctx context.Context, entry *entities.AuditEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *entry
	r.store.audit = append(r.store.audit, &c)
	return nil
}

func (r *auditRepository) List(ctx context.Context, entityType string) ([]*entities.AuditEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	entries := make([]*entities.AuditEntry, 0)
	for _, e := range r.store.audit {
		if entityType == "" || e.EntityType == entityType {
			c := *e
			entries = append(entries, &c)
		}
	}
	sortAuditNewestFirst(entries)
	return entries, nil
}

func (r *auditRepository) ListForEntity(ctx context.Context, entityType, entityID string) ([]*entities.AuditEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	entries := make([]*entities.AuditEntry, 0)
	for _, e := range r.store.audit {
		if e.EntityType == entityType && e.EntityID == entityID {
			c := *e
			entries = append(entries, &c)
		}
	}
	sortAuditNewestFirst(entries)
	return entries, nil
}

func sortAuditNewestFirst(entries []*entities.AuditEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp > entries[j].Timestamp
		}
		return entries[i].ID.String() > entries[j].ID.String()
	})
}
