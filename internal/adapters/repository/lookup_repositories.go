package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/ports"
)

// TaskStateRepositoryImpl implements the TaskStateRepository interface
type TaskStateRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskStateRepository creates a new task state repository
func NewTaskStateRepository(db *sqlx.DB) ports.TaskStateRepository {
	return &TaskStateRepositoryImpl{db: db}
}

func (r *TaskStateRepositoryImpl) Create(ctx context.Context, state *entities.TaskState) error {
	query := `
		INSERT INTO task_states (id, name, color, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		state.ID, state.Name, state.Color, state.Order, state.CreatedAt, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task state: %w", err)
	}
	return nil
}

func (r *TaskStateRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.TaskState, error) {
	query := `
		SELECT id, name, color, sort_order, created_at, updated_at
		FROM task_states
		WHERE id = $1`

	var state entities.TaskState
	if err := r.db.GetContext(ctx, &state, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrStateNotFound
		}
		return nil, fmt.Errorf("get task state by id: %w", err)
	}
	return &state, nil
}

func (r *TaskStateRepositoryImpl) Update(ctx context.Context, state *entities.TaskState) error {
	query := `
		UPDATE task_states
		SET name = $2, color = $3, sort_order = $4, updated_at = $5
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		state.ID, state.Name, state.Color, state.Order, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update task state: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task state: %w", err)
	}
	if rows == 0 {
		return entities.ErrStateNotFound
	}
	return nil
}

func (r *TaskStateRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM task_states WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task state: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task state: %w", err)
	}
	if rows == 0 {
		return entities.ErrStateNotFound
	}
	return nil
}

func (r *TaskStateRepositoryImpl) List(ctx context.Context) ([]*entities.TaskState, error) {
	query := `
		SELECT id, name, color, sort_order, created_at, updated_at
		FROM task_states
		ORDER BY sort_order ASC, id ASC`

	var states []*entities.TaskState
	if err := r.db.SelectContext(ctx, &states, query); err != nil {
		return nil, fmt.Errorf("list task states: %w", err)
	}
	if states == nil {
		states = []*entities.TaskState{}
	}
	return states, nil
}

// PriorityRepositoryImpl implements the PriorityRepository interface
type PriorityRepositoryImpl struct {
	db *sqlx.DB
}

// NewPriorityRepository creates a new priority repository
func NewPriorityRepository(db *sqlx.DB) ports.PriorityRepository {
	return &PriorityRepositoryImpl{db: db}
}

func (r *PriorityRepositoryImpl) Create(ctx context.Context, priority *entities.Priority) error {
	query := `
		INSERT INTO priorities (id, name, color, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		priority.ID, priority.Name, priority.Color, priority.Order, priority.CreatedAt, priority.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create priority: %w", err)
	}
	return nil
}

func (r *PriorityRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Priority, error) {
	query := `
		SELECT id, name, color, sort_order, created_at, updated_at
		FROM priorities
		WHERE id = $1`

	var priority entities.Priority
	if err := r.db.GetContext(ctx, &priority, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrPriorityNotFound
		}
		return nil, fmt.Errorf("get priority by id: %w", err)
	}
	return &priority, nil
}

func (r *PriorityRepositoryImpl) Update(ctx context.Context, priority *entities.Priority) error {
	query := `
		UPDATE priorities
		SET name = $2, color = $3, sort_order = $4, updated_at = $5
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		priority.ID, priority.Name, priority.Color, priority.Order, priority.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update priority: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update priority: %w", err)
	}
	if rows == 0 {
		return entities.ErrPriorityNotFound
	}
	return nil
}

func (r *PriorityRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM priorities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete priority: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete priority: %w", err)
	}
	if rows == 0 {
		return entities.ErrPriorityNotFound
	}
	return nil
}

func (r *PriorityRepositoryImpl) List(ctx context.Context) ([]*entities.Priority, error) {
	query := `
		SELECT id, name, color, sort_order, created_at, updated_at
		FROM priorities
		ORDER BY sort_order ASC, id ASC`

	var priorities []*entities.Priority
	if err := r.db.SelectContext(ctx, &priorities, query); err != nil {
		return nil, fmt.Errorf("list priorities: %w", err)
	}
	if priorities == nil {
		priorities = []*entities.Priority{}
	}
	return priorities, nil
}

// TagRepositoryImpl implements the TagRepository interface
type TagRepositoryImpl struct {
	db *sqlx.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *sqlx.DB) ports.TagRepository {
	return &TagRepositoryImpl{db: db}
}

func (r *TagRepositoryImpl) Create(ctx context.Context, tag *entities.Tag) error {
	query := `
		INSERT INTO tags (id, name, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		tag.ID, tag.Name, tag.Color, tag.CreatedAt, tag.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

func (r *TagRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Tag, error) {
	query := `
		SELECT id, name, color, created_at, updated_at
		FROM tags
		WHERE id = $1`

	var tag entities.Tag
	if err := r.db.GetContext(ctx, &tag, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTagNotFound
		}
		return nil, fmt.Errorf("get tag by id: %w", err)
	}
	return &tag, nil
}

func (r *TagRepositoryImpl) Update(ctx context.Context, tag *entities.Tag) error {
	query := `
		UPDATE tags
		SET name = $2, color = $3, updated_at = $4
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, tag.ID, tag.Name, tag.Color, tag.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	if rows == 0 {
		return entities.ErrTagNotFound
	}
	return nil
}

func (r *TagRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if rows == 0 {
		return entities.ErrTagNotFound
	}
	return nil
}

func (r *TagRepositoryImpl) List(ctx context.Context) ([]*entities.Tag, error) {
	query := `
		SELECT id, name, color, created_at, updated_at
		FROM tags
		ORDER BY name ASC`

	var tags []*entities.Tag
	if err := r.db.SelectContext(ctx, &tags, query); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if tags == nil {
		tags = []*entities.Tag{}
	}
	return tags, nil
}
