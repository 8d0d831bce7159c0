package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/infrastructure/logger"
	"github.com/taskboard/core/internal/ports"
)

// UpdateService manages free-text comments on tasks.
type UpdateService struct {
	updateRepo ports.TaskUpdateRepository
	taskRepo   ports.TaskRepository
	userRepo   ports.UserRepository
	audit      *AuditService
	authz      *AuthzService
	logger     *logger.Logger
	now        func() time.Time
}

func NewUpdateService(repos ports.Repositories, audit *AuditService, authz *AuthzService, logger *logger.Logger, now func() time.Time) *UpdateService {
	if now == nil {
		now = time.Now
	}
	return &UpdateService{
		updateRepo: repos.TaskUpdates,
		taskRepo:   repos.Tasks,
		userRepo:   repos.Users,
		audit:      audit,
		authz:      authz,
		logger:     logger.WithComponent("update_service"),
		now:        now,
	}
}

// ListForTask returns a task's comments newest first with authors resolved.
// Unauthorized callers get an empty slice.
func (s *UpdateService) ListForTask(ctx context.Context, taskID uuid.UUID) ([]*entities.TaskUpdateView, error) {
	userID, err := s.authz.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return []*entities.TaskUpdateView{}, nil
	}

	updates, err := s.updateRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task updates: %w", err)
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	userMap := make(map[uuid.UUID]*entities.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}

	views := make([]*entities.TaskUpdateView, 0, len(updates))
	for _, u := range updates {
		views = append(views, &entities.TaskUpdateView{
			TaskUpdate: *u,
			User:       userMap[u.UserID],
		})
	}
	return views, nil
}

// CreateUpdate attaches a comment to an existing task.
func (s *UpdateService) CreateUpdate(ctx context.Context, req ports.CreateUpdateRequest) (uuid.UUID, error) {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	if _, err := s.taskRepo.GetByID(ctx, req.TaskID); err != nil {
		return uuid.Nil, err
	}

	update := &entities.TaskUpdate{
		ID:        uuid.New(),
		TaskID:    req.TaskID,
		UserID:    userID,
		Body:      req.Body,
		CreatedAt: entities.Millis(s.now()),
	}
	if err := s.updateRepo.Create(ctx, update); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create task update: %w", err)
	}

	s.audit.Record(ctx, userID, entities.ActionAddUpdate, entities.EntityTask, req.TaskID.String(), nil, map[string]any{"body": req.Body})
	return update.ID, nil
}

// RemoveUpdate deletes a comment. Missing comments are a no-op.
func (s *UpdateService) RemoveUpdate(ctx context.Context, id uuid.UUID) error {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return err
	}

	update, err := s.updateRepo.GetByID(ctx, id)
	if err != nil {
		if err == entities.ErrTaskUpdateNotFound {
			return nil
		}
		return err
	}

	if err := s.updateRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task update: %w", err)
	}

	s.audit.Record(ctx, userID, entities.ActionRemoveUpdate, entities.EntityTask, update.TaskID.String(), nil, map[string]any{"body": update.Body})
	return nil
}
