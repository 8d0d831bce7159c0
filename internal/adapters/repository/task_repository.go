package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/ports"
)

// TaskRepositoryImpl implements the TaskRepository interface on Postgres.
// Assignees and tags are stored as uuid[] columns on the tasks row itself,
// mirroring the document shape the rest of the system works with.
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

type taskRow struct {
	ID          uuid.UUID      `db:"id"`
	Title       string         `db:"title"`
	Description *string        `db:"description"`
	StateID     uuid.UUID      `db:"state_id"`
	PriorityID  uuid.UUID      `db:"priority_id"`
	ProjectID   *uuid.UUID     `db:"project_id"`
	Assignees   pq.StringArray `db:"assignees"`
	TagIDs      pq.StringArray `db:"tag_ids"`
	CreatorID   uuid.UUID      `db:"creator_id"`
	Archived    bool           `db:"archived"`
	ArchivedAt  *int64         `db:"archived_at"`
	CreatedAt   int64          `db:"created_at"`
	UpdatedAt   int64          `db:"updated_at"`
}

func (row *taskRow) toEntity() (*entities.Task, error) {
	assignees, err := parseUUIDs(row.Assignees)
	if err != nil {
		return nil, fmt.Errorf("parse assignees: %w", err)
	}
	tagIDs, err := parseUUIDs(row.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("parse tag ids: %w", err)
	}
	return &entities.Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		StateID:     row.StateID,
		PriorityID:  row.PriorityID,
		ProjectID:   row.ProjectID,
		Assignees:   assignees,
		TagIDs:      tagIDs,
		CreatorID:   row.CreatorID,
		Archived:    row.Archived,
		ArchivedAt:  row.ArchivedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func parseUUIDs(values pq.StringArray) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatUUIDs(ids []uuid.UUID) pq.StringArray {
	values := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}
	return values
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, state_id, priority_id, project_id,
			assignees, tag_ids, creator_id, archived, archived_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.StateID, task.PriorityID, task.ProjectID,
		formatUUIDs(task.Assignees), formatUUIDs(task.TagIDs), task.CreatorID,
		task.Archived, task.ArchivedAt, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	query := `
		SELECT id, title, description, state_id, priority_id, project_id,
			assignees, tag_ids, creator_id, archived, archived_at, created_at, updated_at
		FROM tasks
		WHERE id = $1`

	var row taskRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}
	return row.toEntity()
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, state_id = $4, priority_id = $5, project_id = $6,
			assignees = $7, tag_ids = $8, archived = $9, archived_at = $10, updated_at = $11
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.StateID, task.PriorityID, task.ProjectID,
		formatUUIDs(task.Assignees), formatUUIDs(task.TagIDs),
		task.Archived, task.ArchivedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if rows == 0 {
		return entities.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if rows == 0 {
		return entities.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) ListByArchived(ctx context.Context, archived bool) ([]*entities.Task, error) {
	query := `
		SELECT id, title, description, state_id, priority_id, project_id,
			assignees, tag_ids, creator_id, archived, archived_at, created_at, updated_at
		FROM tasks
		WHERE archived = $1
		ORDER BY created_at DESC, id DESC`

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, archived); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return rowsToTasks(rows)
}

func (r *TaskRepositoryImpl) ListByTag(ctx context.Context, tagID uuid.UUID) ([]*entities.Task, error) {
	query := `
		SELECT id, title, description, state_id, priority_id, project_id,
			assignees, tag_ids, creator_id, archived, archived_at, created_at, updated_at
		FROM tasks
		WHERE $1 = ANY(tag_ids)
		ORDER BY created_at DESC, id DESC`

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, tagID.String()); err != nil {
		return nil, fmt.Errorf("list tasks by tag: %w", err)
	}
	return rowsToTasks(rows)
}

func (r *TaskRepositoryImpl) ExistsWithState(ctx context.Context, stateID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM tasks WHERE state_id = $1)`, stateID)
	if err != nil {
		return false, fmt.Errorf("check state usage: %w", err)
	}
	return exists, nil
}

func (r *TaskRepositoryImpl) ExistsWithPriority(ctx context.Context, priorityID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM tasks WHERE priority_id = $1)`, priorityID)
	if err != nil {
		return false, fmt.Errorf("check priority usage: %w", err)
	}
	return exists, nil
}

func rowsToTasks(rows []taskRow) ([]*entities.Task, error) {
	tasks := make([]*entities.Task, 0, len(rows))
	for i := range rows {
		task, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
