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

// AuditService appends immutable audit entries and serves the audit history.
// Recording happens after the primary mutation commits and is best-effort in
// sequence, not transactional with it.
type AuditService struct {
	auditRepo ports.AuditRepository
	userRepo  ports.UserRepository
	authz     *AuthzService
	logger    *logger.Logger
	now       func() time.Time
}

// NewAuditService creates a new audit service.
func NewAuditService(auditRepo ports.AuditRepository, userRepo ports.UserRepository, authz *AuthzService, logger *logger.Logger, now func() time.Time) *AuditService {
	if now == nil {
		now = time.Now
	}
	return &AuditService{
		auditRepo: auditRepo,
		userRepo:  userRepo,
		authz:     authz,
		logger:    logger,
		now:       now,
	}
}

// Record appends one audit entry with a server timestamp. Failures are logged
// and swallowed: callers have already committed the primary mutation and do
// not consume a result beyond completion.
func (s *AuditService) Record(ctx context.Context, userID uuid.UUID, action entities.AuditAction, entityType, entityID string, changes map[string]entities.FieldChange, metadata map[string]any) {
	entry := &entities.AuditEntry{
		ID:         uuid.New(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
		Metadata:   metadata,
		Timestamp:  entities.Millis(s.now()),
	}

	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.LogAuditFailure(string(action), entityType, entityID, err)
	}
}

// List returns all audit entries, newest first, optionally filtered by entity
// type, with the acting user denormalized. Unauthorized callers get an empty
// slice, never an error.
func (s *AuditService) List(ctx context.Context, entityType string) ([]*entities.AuditEntryView, error) {
	userID, err := s.authz.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return []*entities.AuditEntryView{}, nil
	}

	entries, err := s.auditRepo.List(ctx, entityType)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	return s.denormalize(ctx, entries)
}

// ListForEntity returns the audit trail of a single entity, newest first.
func (s *AuditService) ListForEntity(ctx context.Context, entityType, entityID string) ([]*entities.AuditEntryView, error) {
	userID, err := s.authz.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return []*entities.AuditEntryView{}, nil
	}

	entries, err := s.auditRepo.ListForEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries for entity: %w", err)
	}

	return s.denormalize(ctx, entries)
}

func (s *AuditService) denormalize(ctx context.Context, entries []*entities.AuditEntry) ([]*entities.AuditEntryView, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	userMap := make(map[uuid.UUID]*entities.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}

	views := make([]*entities.AuditEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, &entities.AuditEntryView{
			AuditEntry: *e,
			User:       userMap[e.UserID],
		})
	}
	return views, nil
}
