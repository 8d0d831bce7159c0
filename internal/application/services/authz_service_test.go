package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/core/internal/domain/entities"
)

func TestParseAllowedEmails(t *testing.T) {
	allowed := ParseAllowedEmails(" Alice@Example.com ,\nbob@example.com,,  \n")
	assert.Len(t, allowed, 2)
	assert.Contains(t, allowed, "alice@example.com")
	assert.Contains(t, allowed, "bob@example.com")
}

func TestIsEmailAllowedCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)

	ok, err := env.authz.IsEmailAllowed("ALICE@example.COM")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.authz.IsEmailAllowed("mallory@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyAllowlistIsConfigError(t *testing.T) {
	env := newTestEnvWithAllowlist(t, "  ,\n ")

	_, err := env.authz.IsEmailAllowed("alice@example.com")
	assert.ErrorIs(t, err, entities.ErrAllowlistNotConfigured)

	// The config error surfaces even for an anonymous caller.
	_, err = env.authz.ResolveUser(context.Background())
	assert.ErrorIs(t, err, entities.ErrAllowlistNotConfigured)
}

func TestResolveUserDegradesToNil(t *testing.T) {
	env := newTestEnv(t)

	// Anonymous caller.
	id, err := env.authz.ResolveUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	// Signed in but not allow-listed.
	mallory := env.addUser(t, "Mallory", "mallory@example.com")
	id, err = env.authz.ResolveUser(WithIdentity(context.Background(), mallory.ID))
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	// Signed in and allow-listed.
	id, err = env.authz.ResolveUser(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, env.alice.ID, id)
}

func TestRequireUserErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.authz.RequireUser(context.Background())
	assert.ErrorIs(t, err, entities.ErrNotAuthenticated)

	mallory := env.addUser(t, "Mallory", "mallory@example.com")
	_, err = env.authz.RequireUser(WithIdentity(context.Background(), mallory.ID))
	assert.ErrorIs(t, err, entities.ErrNotAuthorized)

	id, err := env.authz.RequireUser(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, env.alice.ID, id)
}

func TestCurrentUserEmailSkipsAllowlist(t *testing.T) {
	env := newTestEnv(t)

	mallory := env.addUser(t, "Mallory", "mallory@example.com")
	email, err := env.authz.CurrentUserEmail(WithIdentity(context.Background(), mallory.ID))
	require.NoError(t, err)
	assert.Equal(t, "mallory@example.com", email)

	email, err = env.authz.CurrentUserEmail(context.Background())
	require.NoError(t, err)
	assert.Empty(t, email)
}
