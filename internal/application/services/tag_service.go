package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/infrastructure/logger"
	"github.com/taskboard/core/internal/ports"
)

// TagService manages tags. Unlike states and priorities, deleting a tag is
// never refused: it cascades, stripping the tag from every task that carries
// it.
type TagService struct {
	tagRepo  ports.TagRepository
	taskRepo ports.TaskRepository
	audit    *AuditService
	authz    *AuthzService
	logger   *logger.Logger
	now      func() time.Time
}

func NewTagService(repos ports.Repositories, audit *AuditService, authz *AuthzService, logger *logger.Logger, now func() time.Time) *TagService {
	if now == nil {
		now = time.Now
	}
	return &TagService{
		tagRepo:  repos.Tags,
		taskRepo: repos.Tasks,
		audit:    audit,
		authz:    authz,
		logger:   logger.WithComponent("tag_service"),
		now:      now,
	}
}

// ListTags returns all tags. Unauthorized callers get an empty slice.
func (s *TagService) ListTags(ctx context.Context) ([]*entities.Tag, error) {
	userID, err := s.authz.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return []*entities.Tag{}, nil
	}
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) CreateTag(ctx context.Context, req ports.CreateTagRequest) (uuid.UUID, error) {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	now := entities.Millis(s.now())
	tag := &entities.Tag{
		ID:        uuid.New(),
		Name:      req.Name,
		Color:     req.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create tag: %w", err)
	}

	s.audit.Record(ctx, userID, entities.ActionCreate, entities.EntityTag, tag.ID.String(), nil, map[string]any{"name": tag.Name})
	return tag.ID, nil
}

func (s *TagService) UpdateTag(ctx context.Context, id uuid.UUID, req ports.UpdateTagRequest) error {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return err
	}

	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	changes := make(map[string]entities.FieldChange)
	if req.Name != nil && *req.Name != tag.Name {
		changes["name"] = entities.FieldChange{Old: tag.Name, New: *req.Name}
		tag.Name = *req.Name
	}
	if req.Color != nil && *req.Color != tag.Color {
		changes["color"] = entities.FieldChange{Old: tag.Color, New: *req.Color}
		tag.Color = *req.Color
	}

	tag.UpdatedAt = entities.Millis(s.now())
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}

	if len(changes) > 0 {
		s.audit.Record(ctx, userID, entities.ActionUpdate, entities.EntityTag, tag.ID.String(), changes, map[string]any{"name": tag.Name})
	}
	return nil
}

// RemoveTag deletes a tag and strips it from every task that references it,
// archived tasks included. Each touched task gets its updated timestamp
// refreshed.
func (s *TagService) RemoveTag(ctx context.Context, id uuid.UUID) error {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return err
	}

	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrTagNotFound) {
			return nil
		}
		return err
	}

	tasks, err := s.taskRepo.ListByTag(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list tagged tasks: %w", err)
	}

	now := entities.Millis(s.now())
	for _, task := range tasks {
		task.TagIDs = removeUUID(task.TagIDs, id)
		task.UpdatedAt = now
		if err := s.taskRepo.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to detach tag from task: %w", err)
		}
	}

	if err := s.tagRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	s.audit.Record(ctx, userID, entities.ActionDelete, entities.EntityTag, id.String(), nil, map[string]any{
		"name":           tag.Name,
		"detached_tasks": len(tasks),
	})
	return nil
}

func removeUUID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
