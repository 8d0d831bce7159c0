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

// UserService manages user records. Identities live in an external provider;
// a row is provisioned here on first sign-in and treated as read-only
// afterwards.
type UserService struct {
	userRepo ports.UserRepository
	audit    *AuditService
	authz    *AuthzService
	logger   *logger.Logger
	now      func() time.Time
}

func NewUserService(repos ports.Repositories, audit *AuditService, authz *AuthzService, logger *logger.Logger, now func() time.Time) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{
		userRepo: repos.Users,
		audit:    audit,
		authz:    authz,
		logger:   logger.WithComponent("user_service"),
		now:      now,
	}
}

// ListUsers returns all known users. Unauthorized callers get an empty
// slice.
func (s *UserService) ListUsers(ctx context.Context) ([]*entities.User, error) {
	userID, err := s.authz.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return []*entities.User{}, nil
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CurrentUser returns the signed-in, allowlisted user, or nil when the
// caller is anonymous or not allowlisted.
func (s *UserService) CurrentUser(ctx context.Context) (*entities.User, error) {
	userID, err := s.authz.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	return s.userRepo.GetByID(ctx, userID)
}

// EnsureUser provisions a user record for a verified external identity. On
// first sign-in a row is created and a signup audit entry written; later
// calls just return the existing id. It runs before any context identity
// exists, so it performs no authorization check itself.
func (s *UserService) EnsureUser(ctx context.Context, email string, name *string) (uuid.UUID, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return uuid.Nil, entities.ErrNotAuthenticated
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, entities.ErrUserNotFound) {
		return uuid.Nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user := &entities.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		CreatedAt: entities.Millis(s.now()),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infow("provisioned user on first sign-in", "email", email)
	s.audit.Record(ctx, user.ID, entities.ActionSignup, entities.EntityUser, user.ID.String(), nil, map[string]any{"email": email})
	return user.ID, nil
}
