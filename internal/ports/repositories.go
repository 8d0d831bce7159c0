package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskboard/core/internal/domain/entities"
)

// TaskRepository defines the interface for task data operations. Listings are
// ordered by creation time descending with id as a deterministic tiebreak.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByArchived(ctx context.Context, archived bool) ([]*entities.Task, error)
	ListByTag(ctx context.Context, tagID uuid.UUID) ([]*entities.Task, error)
	ExistsWithState(ctx context.Context, stateID uuid.UUID) (bool, error)
	ExistsWithPriority(ctx context.Context, priorityID uuid.UUID) (bool, error)
}

// TaskStateRepository defines the interface for workflow state operations.
// List returns states ordered by their manual sort order ascending.
type TaskStateRepository interface {
	Create(ctx context.Context, state *entities.TaskState) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TaskState, error)
	Update(ctx context.Context, state *entities.TaskState) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*entities.TaskState, error)
}

// PriorityRepository defines the interface for priority operations. List
// returns priorities ordered by their manual sort order ascending.
type PriorityRepository interface {
	Create(ctx context.Context, priority *entities.Priority) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Priority, error)
	Update(ctx context.Context, priority *entities.Priority) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*entities.Priority, error)
}

// TagRepository defines the interface for tag operations.
type TagRepository interface {
	Create(ctx context.Context, tag *entities.Tag) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Tag, error)
	Update(ctx context.Context, tag *entities.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*entities.Tag, error)
}

// ProjectRepository defines the interface for project operations. There is no
// Delete: projects are only archived.
type ProjectRepository interface {
	Create(ctx context.Context, project *entities.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Project, error)
	Update(ctx context.Context, project *entities.Project) error
	List(ctx context.Context) ([]*entities.Project, error)
}

// UserRepository defines the interface for user records. Users are provisioned
// on first sign-in and read-only afterwards.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	List(ctx context.Context) ([]*entities.User, error)
}

// TaskUpdateRepository defines the interface for task comments.
type TaskUpdateRepository interface {
	Create(ctx context.Context, update *entities.TaskUpdate) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TaskUpdate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*entities.TaskUpdate, error)
	DeleteByTask(ctx context.Context, taskID uuid.UUID) error
}

// FilterPresetRepository defines the interface for saved filter presets.
type FilterPresetRepository interface {
	Create(ctx context.Context, preset *entities.FilterPreset) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.FilterPreset, error)
	Update(ctx context.Context, preset *entities.FilterPreset) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*entities.FilterPreset, error)
}

// AuditRepository defines the interface for the append-only audit log.
// Entries are never updated or deleted. Listings are newest-first.
type AuditRepository interface {
	Append(ctx context.Context, entry *entities.AuditEntry) error
	List(ctx context.Context, entityType string) ([]*entities.AuditEntry, error)
	ListForEntity(ctx context.Context, entityType, entityID string) ([]*entities.AuditEntry, error)
}

// Repositories bundles every repository port; both the Postgres and the
// in-memory adapters provide the full set.
type Repositories struct {
	Tasks       TaskRepository
	States      TaskStateRepository
	Priorities  PriorityRepository
	Tags        TagRepository
	Projects    ProjectRepository
	Users       UserRepository
	TaskUpdates TaskUpdateRepository
	Presets     FilterPresetRepository
	Audit       AuditRepository
}
