package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/infrastructure/logger"
	"github.com/taskboard/core/internal/ports"
)

type identityKey struct{}

// WithIdentity returns a context carrying the signed-in user's id. The auth
// middleware attaches it after verifying the identity provider token.
func WithIdentity(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, identityKey{}, userID)
}

// IdentityFromContext extracts the signed-in user's id, if any.
func IdentityFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(identityKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// AuthzService gates every data operation on an email allow-list. The raw
// allow-list value is injected at construction and parsed on each call, so
// the empty-allowlist configuration error surfaces at the operation boundary
// rather than at startup.
type AuthzService struct {
	userRepo      ports.UserRepository
	allowedEmails string
	logger        *logger.Logger
}

// NewAuthzService creates a new authorization service. rawAllowlist is the
// comma/newline-separated list of permitted email addresses.
func NewAuthzService(userRepo ports.UserRepository, rawAllowlist string, logger *logger.Logger) *AuthzService {
	return &AuthzService{
		userRepo:      userRepo,
		allowedEmails: rawAllowlist,
		logger:        logger,
	}
}

// NormalizeEmail lower-cases and trims an email address. Empty results are
// treated as absent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseAllowedEmails splits a raw allow-list on commas and newlines,
// normalizing each entry and dropping empties.
func ParseAllowedEmails(raw string) map[string]struct{} {
	allowed := make(map[string]struct{})
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	}) {
		if email := NormalizeEmail(part); email != "" {
			allowed[email] = struct{}{}
		}
	}
	return allowed
}

func (s *AuthzService) allowlist() (map[string]struct{}, error) {
	allowed := ParseAllowedEmails(s.allowedEmails)
	if len(allowed) == 0 {
		return nil, entities.ErrAllowlistNotConfigured
	}
	return allowed, nil
}

// IsEmailAllowed reports whether the given email is on the allow-list. An
// unconfigured allow-list is a fatal configuration error, never an implicit
// deny-all or allow-all.
func (s *AuthzService) IsEmailAllowed(email string) (bool, error) {
	allowed, err := s.allowlist()
	if err != nil {
		return false, err
	}
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return false, nil
	}
	_, ok := allowed[normalized]
	return ok, nil
}

// ResolveUser returns the signed-in, allow-listed user's id, or uuid.Nil when
// there is no such user. Only the configuration error is surfaced; plain
// missing or unauthorized identities resolve to uuid.Nil so read paths can
// degrade to empty results.
func (s *AuthzService) ResolveUser(ctx context.Context) (uuid.UUID, error) {
	userID, ok := IdentityFromContext(ctx)
	if !ok {
		// Parse anyway: an unconfigured allow-list must surface even here.
		if _, err := s.allowlist(); err != nil {
			return uuid.Nil, err
		}
		return uuid.Nil, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			if _, cfgErr := s.allowlist(); cfgErr != nil {
				return uuid.Nil, cfgErr
			}
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}

	allowed, err := s.IsEmailAllowed(user.Email)
	if err != nil {
		return uuid.Nil, err
	}
	if !allowed {
		return uuid.Nil, nil
	}
	return userID, nil
}

// RequireUser returns the signed-in, allow-listed user's id or fails:
// ErrNotAuthenticated when no identity is present, ErrNotAuthorized when the
// identity's email is not allow-listed.
func (s *AuthzService) RequireUser(ctx context.Context) (uuid.UUID, error) {
	userID, err := s.ResolveUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if userID != uuid.Nil {
		return userID, nil
	}

	if _, ok := IdentityFromContext(ctx); !ok {
		return uuid.Nil, entities.ErrNotAuthenticated
	}
	return uuid.Nil, entities.ErrNotAuthorized
}

// IsCurrentUserAllowed reports whether the caller is signed in and
// allow-listed.
func (s *AuthzService) IsCurrentUserAllowed(ctx context.Context) (bool, error) {
	userID, err := s.ResolveUser(ctx)
	if err != nil {
		return false, err
	}
	return userID != uuid.Nil, nil
}

// CurrentUserEmail returns the signed-in user's email, or empty when there is
// no signed-in user. This intentionally skips the allow-list so the sign-in
// screen can tell a refused user which account they used.
func (s *AuthzService) CurrentUserEmail(ctx context.Context) (string, error) {
	userID, ok := IdentityFromContext(ctx)
	if !ok {
		return "", nil
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}
	return user.Email, nil
}
