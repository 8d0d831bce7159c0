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

// WorkflowService manages the two ordered lookup collections, task states and
// priorities. Both share the same lifecycle: manual ordering appended at the
// end on create, dense reindexing on reorder, and a referential guard that
// refuses deletion while any task still points at the row.
type WorkflowService struct {
	stateRepo    ports.TaskStateRepository
	priorityRepo ports.PriorityRepository
	taskRepo     ports.TaskRepository
	audit        *AuditService
	authz        *AuthzService
	logger       *logger.Logger
	now          func() time.Time
}

func NewWorkflowService(repos ports.Repositories, audit *AuditService, authz *AuthzService, logger *logger.Logger, now func() time.Time) *WorkflowService {
	if now == nil {
		now = time.Now
	}
	return &WorkflowService{
		stateRepo:    repos.States,
		priorityRepo: repos.Priorities,
		taskRepo:     repos.Tasks,
		audit:        audit,
		authz:        authz,
		logger:       logger.WithComponent("workflow_service"),
		now:          now,
	}
}

// States

// ListStates returns all workflow states in manual order. Unauthorized
// callers get an empty slice.
func (s *WorkflowService) ListStates(ctx context.Context) ([]*entities.TaskState, error) {
	userID, err := s.authz.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return []*entities.TaskState{}, nil
	}
	states, err := s.stateRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	return states, nil
}

// CreateState appends a new state at the end of the manual order.
func (s *WorkflowService) CreateState(ctx context.Context, req ports.CreateLookupRequest) (uuid.UUID, error) {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	states, err := s.stateRepo.List(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to list states: %w", err)
	}

	order := 0
	for _, st := range states {
		if st.Order >= order {
			order = st.Order + 1
		}
	}

	now := entities.Millis(s.now())
	state := &entities.TaskState{
		ID:        uuid.New(),
		Name:      req.Name,
		Color:     req.Color,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.stateRepo.Create(ctx, state); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create state: %w", err)
	}

	s.audit.Record(ctx, userID, entities.ActionCreate, entities.EntityTaskState, state.ID.String(), nil, map[string]any{"name": state.Name})
	return state.ID, nil
}

// UpdateState patches a state's name and color. Order is only changed through
// ReorderStates.
func (s *WorkflowService) UpdateState(ctx context.Context, id uuid.UUID, req ports.UpdateLookupRequest) error {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return err
	}

	state, err := s.stateRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	changes := make(map[string]entities.FieldChange)
	if req.Name != nil && *req.Name != state.Name {
		changes["name"] = entities.FieldChange{Old: state.Name, New: *req.Name}
		state.Name = *req.Name
	}
	if req.Color != nil && !equalStringPtr(req.Color, state.Color) {
		changes["color"] = entities.FieldChange{Old: stringPtrValue(state.Color), New: *req.Color}
		state.Color = req.Color
	}

	state.UpdatedAt = entities.Millis(s.now())
	if err := s.stateRepo.Update(ctx, state); err != nil {
		return fmt.Errorf("failed to update state: %w", err)
	}

	if len(changes) > 0 {
		s.audit.Record(ctx, userID, entities.ActionUpdate, entities.EntityTaskState, state.ID.String(), changes, map[string]any{"name": state.Name})
	}
	return nil
}

// RemoveState deletes a state. The delete is refused with ErrInUse while any
// task, archived or not, still references it.
func (s *WorkflowService) RemoveState(ctx context.Context, id uuid.UUID) error {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return err
	}

	state, err := s.stateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrStateNotFound) {
			return nil
		}
		return err
	}

	inUse, err := s.taskRepo.ExistsWithState(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check state usage: %w", err)
	}
	if inUse {
		return entities.ErrInUse
	}

	if err := s.stateRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}

	s.audit.Record(ctx, userID, entities.ActionDelete, entities.EntityTaskState, id.String(), nil, map[string]any{"name": state.Name})
	return nil
}

// ReorderStates assigns dense zero-based order values following the given id
// sequence. Ids not present in the collection are skipped; states absent from
// the sequence keep their rows but sort after the reordered ones.
func (s *WorkflowService) ReorderStates(ctx context.Context, ids []uuid.UUID) error {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return err
	}

	states, err := s.stateRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list states: %w", err)
	}
	byID := make(map[uuid.UUID]*entities.TaskState, len(states))
	for _, st := range states {
		byID[st.ID] = st
	}

	now := entities.Millis(s.now())
	next := 0
	for _, id := range ids {
		st, ok := byID[id]
		if !ok {
			continue
		}
		if st.Order != next {
			st.Order = next
			st.UpdatedAt = now
			if err := s.stateRepo.Update(ctx, st); err != nil {
				return fmt.Errorf("failed to reorder state: %w", err)
			}
		}
		next++
	}

	// Reorders touch the whole collection; the entity type doubles as the id
	// so the collection's trail can be queried like any single entity's.
	s.audit.Record(ctx, userID, entities.ActionReorder, entities.EntityTaskState, entities.EntityTaskState, nil, map[string]any{"order": uuidStrings(ids)})
	return nil
}

// Priorities

// ListPriorities returns all priorities in manual order. Unauthorized callers
// get an empty slice.
func (s *WorkflowService) ListPriorities(ctx context.Context) ([]*entities.Priority, error) {
	userID, err := s.authz.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return []*entities.Priority{}, nil
	}
	priorities, err := s.priorityRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list priorities: %w", err)
	}
	return priorities, nil
}

// CreatePriority appends a new priority at the end of the manual order.
func (s *WorkflowService) CreatePriority(ctx context.Context, req ports.CreateLookupRequest) (uuid.UUID, error) {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	priorities, err := s.priorityRepo.List(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to list priorities: %w", err)
	}

	order := 0
	for _, p := range priorities {
		if p.Order >= order {
			order = p.Order + 1
		}
	}

	now := entities.Millis(s.now())
	priority := &entities.Priority{
		ID:        uuid.New(),
		Name:      req.Name,
		Color:     req.Color,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.priorityRepo.Create(ctx, priority); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create priority: %w", err)
	}

	s.audit.Record(ctx, userID, entities.ActionCreate, entities.EntityPriority, priority.ID.String(), nil, map[string]any{"name": priority.Name})
	return priority.ID, nil
}

// UpdatePriority patches a priority's name and color.
func (s *WorkflowService) UpdatePriority(ctx context.Context, id uuid.UUID, req ports.UpdateLookupRequest) error {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return err
	}

	priority, err := s.priorityRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	changes := make(map[string]entities.FieldChange)
	if req.Name != nil && *req.Name != priority.Name {
		changes["name"] = entities.FieldChange{Old: priority.Name, New: *req.Name}
		priority.Name = *req.Name
	}
	if req.Color != nil && !equalStringPtr(req.Color, priority.Color) {
		changes["color"] = entities.FieldChange{Old: stringPtrValue(priority.Color), New: *req.Color}
		priority.Color = req.Color
	}

	priority.UpdatedAt = entities.Millis(s.now())
	if err := s.priorityRepo.Update(ctx, priority); err != nil {
		return fmt.Errorf("failed to update priority: %w", err)
	}

	if len(changes) > 0 {
		s.audit.Record(ctx, userID, entities.ActionUpdate, entities.EntityPriority, priority.ID.String(), changes, map[string]any{"name": priority.Name})
	}
	return nil
}

// RemovePriority deletes a priority unless a task still references it.
func (s *WorkflowService) RemovePriority(ctx context.Context, id uuid.UUID) error {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return err
	}

	priority, err := s.priorityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrPriorityNotFound) {
			return nil
		}
		return err
	}

	inUse, err := s.taskRepo.ExistsWithPriority(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check priority usage: %w", err)
	}
	if inUse {
		return entities.ErrInUse
	}

	if err := s.priorityRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete priority: %w", err)
	}

	s.audit.Record(ctx, userID, entities.ActionDelete, entities.EntityPriority, id.String(), nil, map[string]any{"name": priority.Name})
	return nil
}

// ReorderPriorities assigns dense zero-based order values following the given
// id sequence, mirroring ReorderStates.
func (s *WorkflowService) ReorderPriorities(ctx context.Context, ids []uuid.UUID) error {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return err
	}

	priorities, err := s.priorityRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list priorities: %w", err)
	}
	byID := make(map[uuid.UUID]*entities.Priority, len(priorities))
	for _, p := range priorities {
		byID[p.ID] = p
	}

	now := entities.Millis(s.now())
	next := 0
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			continue
		}
		if p.Order != next {
			p.Order = next
			p.UpdatedAt = now
			if err := s.priorityRepo.Update(ctx, p); err != nil {
				return fmt.Errorf("failed to reorder priority: %w", err)
			}
		}
		next++
	}

	s.audit.Record(ctx, userID, entities.ActionReorder, entities.EntityPriority, entities.EntityPriority, nil, map[string]any{"order": uuidStrings(ids)})
	return nil
}
