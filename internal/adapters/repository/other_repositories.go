package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/ports"
)

// NewRepositories wires every Postgres repository into one bundle.
func NewRepositories(db *sqlx.DB) ports.Repositories {
	return ports.Repositories{
		Tasks:       NewTaskRepository(db),
		States:      NewTaskStateRepository(db),
		Priorities:  NewPriorityRepository(db),
		Tags:        NewTagRepository(db),
		Projects:    NewProjectRepository(db),
		Users:       NewUserRepository(db),
		TaskUpdates: NewTaskUpdateRepository(db),
		Presets:     NewFilterPresetRepository(db),
		Audit:       NewAuditRepository(db),
	}
}

// ProjectRepositoryImpl implements the ProjectRepository interface
type ProjectRepositoryImpl struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sqlx.DB) ports.ProjectRepository {
	return &ProjectRepositoryImpl{db: db}
}

func (r *ProjectRepositoryImpl) Create(ctx context.Context, project *entities.Project) error {
	query := `
		INSERT INTO projects (id, name, description, archived, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		project.ID, project.Name, project.Description, project.Archived,
		project.CreatedBy, project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *ProjectRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Project, error) {
	query := `
		SELECT id, name, description, archived, created_by, created_at, updated_at
		FROM projects
		WHERE id = $1`

	var project entities.Project
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project by id: %w", err)
	}
	return &project, nil
}

func (r *ProjectRepositoryImpl) Update(ctx context.Context, project *entities.Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, archived = $4, updated_at = $5
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		project.ID, project.Name, project.Description, project.Archived, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if rows == 0 {
		return entities.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepositoryImpl) List(ctx context.Context) ([]*entities.Project, error) {
	query := `
		SELECT id, name, description, archived, created_by, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC, id DESC`

	var projects []*entities.Project
	if err := r.db.SelectContext(ctx, &projects, query); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if projects == nil {
		projects = []*entities.Project{}
	}
	return projects, nil
}

// UserRepositoryImpl implements the UserRepository interface
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	query := `SELECT id, name, email, created_at FROM users WHERE id = $1`

	var user entities.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := `SELECT id, name, email, created_at FROM users WHERE email = $1`

	var user entities.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context) ([]*entities.User, error) {
	query := `SELECT id, name, email, created_at FROM users ORDER BY email ASC`

	var users []*entities.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*entities.User{}
	}
	return users, nil
}

// TaskUpdateRepositoryImpl implements the TaskUpdateRepository interface
type TaskUpdateRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskUpdateRepository creates a new task update repository
func NewTaskUpdateRepository(db *sqlx.DB) ports.TaskUpdateRepository {
	return &TaskUpdateRepositoryImpl{db: db}
}

func (r *TaskUpdateRepositoryImpl) Create(ctx context.Context, update *entities.TaskUpdate) error {
	query := `
		INSERT INTO task_updates (id, task_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		update.ID, update.TaskID, update.UserID, update.Body, update.CreatedAt)
	if err != nil {
		return fmt.Errorf("create task update: %w", err)
	}
	return nil
}

func (r *TaskUpdateRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.TaskUpdate, error) {
	query := `SELECT id, task_id, user_id, body, created_at FROM task_updates WHERE id = $1`

	var update entities.TaskUpdate
	if err := r.db.GetContext(ctx, &update, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTaskUpdateNotFound
		}
		return nil, fmt.Errorf("get task update by id: %w", err)
	}
	return &update, nil
}

func (r *TaskUpdateRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM task_updates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task update: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task update: %w", err)
	}
	if rows == 0 {
		return entities.ErrTaskUpdateNotFound
	}
	return nil
}

func (r *TaskUpdateRepositoryImpl) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*entities.TaskUpdate, error) {
	query := `
		SELECT id, task_id, user_id, body, created_at
		FROM task_updates
		WHERE task_id = $1
		ORDER BY created_at DESC, id DESC`

	var updates []*entities.TaskUpdate
	if err := r.db.SelectContext(ctx, &updates, query, taskID); err != nil {
		return nil, fmt.Errorf("list task updates: %w", err)
	}
	if updates == nil {
		updates = []*entities.TaskUpdate{}
	}
	return updates, nil
}

func (r *TaskUpdateRepositoryImpl) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_updates WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("delete task updates by task: %w", err)
	}
	return nil
}

// FilterPresetRepositoryImpl implements the FilterPresetRepository interface
type FilterPresetRepositoryImpl struct {
	db *sqlx.DB
}

// NewFilterPresetRepository creates a new filter preset repository
func NewFilterPresetRepository(db *sqlx.DB) ports.FilterPresetRepository {
	return &FilterPresetRepositoryImpl{db: db}
}

func (r *FilterPresetRepositoryImpl) Create(ctx context.Context, preset *entities.FilterPreset) error {
	query := `
		INSERT INTO filter_presets (id, name, filters, sort_keys, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		preset.ID, preset.Name, preset.Filters, preset.SortKeys,
		preset.CreatedBy, preset.CreatedAt, preset.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create filter preset: %w", err)
	}
	return nil
}

func (r *FilterPresetRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.FilterPreset, error) {
	query := `
		SELECT id, name, filters, sort_keys, created_by, created_at, updated_at
		FROM filter_presets
		WHERE id = $1`

	var preset entities.FilterPreset
	if err := r.db.GetContext(ctx, &preset, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrPresetNotFound
		}
		return nil, fmt.Errorf("get filter preset by id: %w", err)
	}
	return &preset, nil
}

func (r *FilterPresetRepositoryImpl) Update(ctx context.Context, preset *entities.FilterPreset) error {
	query := `
		UPDATE filter_presets
		SET name = $2, filters = $3, sort_keys = $4, updated_at = $5
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		preset.ID, preset.Name, preset.Filters, preset.SortKeys, preset.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update filter preset: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update filter preset: %w", err)
	}
	if rows == 0 {
		return entities.ErrPresetNotFound
	}
	return nil
}

func (r *FilterPresetRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM filter_presets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete filter preset: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete filter preset: %w", err)
	}
	if rows == 0 {
		return entities.ErrPresetNotFound
	}
	return nil
}

func (r *FilterPresetRepositoryImpl) List(ctx context.Context) ([]*entities.FilterPreset, error) {
	query := `
		SELECT id, name, filters, sort_keys, created_by, created_at, updated_at
		FROM filter_presets
		ORDER BY name ASC`

	var presets []*entities.FilterPreset
	if err := r.db.SelectContext(ctx, &presets, query); err != nil {
		return nil, fmt.Errorf("list filter presets: %w", err)
	}
	if presets == nil {
		presets = []*entities.FilterPreset{}
	}
	return presets, nil
}

// AuditRepositoryImpl implements the AuditRepository interface. Change diffs
// and metadata are stored as JSONB.
type AuditRepositoryImpl struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sqlx.DB) ports.AuditRepository {
	return &AuditRepositoryImpl{db: db}
}

type auditRow struct {
	ID         uuid.UUID `db:"id"`
	UserID     uuid.UUID `db:"user_id"`
	Action     string    `db:"action"`
	EntityType string    `db:"entity_type"`
	EntityID   string    `db:"entity_id"`
	Changes    []byte    `db:"changes"`
	Metadata   []byte    `db:"metadata"`
	Timestamp  int64     `db:"timestamp"`
}

func (row *auditRow) toEntity() (*entities.AuditEntry, error) {
	entry := &entities.AuditEntry{
		ID:         row.ID,
		UserID:     row.UserID,
		Action:     entities.AuditAction(row.Action),
		EntityType: row.EntityType,
		EntityID:   row.EntityID,
		Timestamp:  row.Timestamp,
	}
	if len(row.Changes) > 0 {
		if err := json.Unmarshal(row.Changes, &entry.Changes); err != nil {
			return nil, fmt.Errorf("unmarshal audit changes: %w", err)
		}
	}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
		}
	}
	return entry, nil
}

func (r *AuditRepositoryImpl) Append(ctx context.Context, entry *entities.AuditEntry) error {
	var changes, metadata []byte
	var err error
	if entry.Changes != nil {
		if changes, err = json.Marshal(entry.Changes); err != nil {
			return fmt.Errorf("marshal audit changes: %w", err)
		}
	}
	if entry.Metadata != nil {
		if metadata, err = json.Marshal(entry.Metadata); err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_log (id, user_id, action, entity_type, entity_id, changes, metadata, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, string(entry.Action), entry.EntityType, entry.EntityID,
		changes, metadata, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepositoryImpl) List(ctx context.Context, entityType string) ([]*entities.AuditEntry, error) {
	query := `
		SELECT id, user_id, action, entity_type, entity_id, changes, metadata, timestamp
		FROM audit_log
		WHERE ($1 = '' OR entity_type = $1)
		ORDER BY timestamp DESC, id DESC`

	var rows []auditRow
	if err := r.db.SelectContext(ctx, &rows, query, entityType); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return auditRowsToEntities(rows)
}

func (r *AuditRepositoryImpl) ListForEntity(ctx context.Context, entityType, entityID string) ([]*entities.AuditEntry, error) {
	query := `
		SELECT id, user_id, action, entity_type, entity_id, changes, metadata, timestamp
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY timestamp DESC, id DESC`

	var rows []auditRow
	if err := r.db.SelectContext(ctx, &rows, query, entityType, entityID); err != nil {
		return nil, fmt.Errorf("list audit entries for entity: %w", err)
	}
	return auditRowsToEntities(rows)
}

func auditRowsToEntities(rows []auditRow) ([]*entities.AuditEntry, error) {
	entries := make([]*entities.AuditEntry, 0, len(rows))
	for i := range rows {
		entry, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
