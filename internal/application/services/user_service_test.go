package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/core/internal/domain/entities"
)

func TestEnsureUserProvisionsOnce(t *testing.T) {
	env := newTestEnv(t)

	name := "Carol"
	id, err := env.users.EnsureUser(context.Background(), "  Carol@Example.COM ", &name)
	require.NoError(t, err)

	again, err := env.users.EnsureUser(context.Background(), "carol@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	user, err := env.repos.Users.GetByEmail(context.Background(), "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", user.Email)
	require.NotNil(t, user.Name)
	assert.Equal(t, "Carol", *user.Name)

	// Exactly one signup entry despite the second call.
	entries, err := env.audit.ListForEntity(env.ctx, entities.EntityUser, id.String())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entities.ActionSignup, entries[0].Action)
	assert.Equal(t, "carol@example.com", entries[0].Metadata["email"])
}

func TestEnsureUserRejectsBlankEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.EnsureUser(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, entities.ErrNotAuthenticated)
}

func TestEnsureUserIgnoresAllowlist(t *testing.T) {
	env := newTestEnv(t)

	// Provisioning happens for any verified identity; the allowlist only
	// gates what the user can do afterwards.
	id, err := env.users.EnsureUser(context.Background(), "outsider@example.com", nil)
	require.NoError(t, err)

	outsiderCtx := WithIdentity(context.Background(), id)
	user, err := env.users.CurrentUser(outsiderCtx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCurrentUserReturnsAllowlistedRow(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.CurrentUser(env.ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, env.alice.ID, user.ID)
	assert.Equal(t, "Alice", user.DisplayName())

	anon, err := env.users.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, anon)
}

func TestListUsersSortedByEmail(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "Bob", "bob@example.com")

	users, err := env.users.ListUsers(env.ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice@example.com", users[0].Email)
	assert.Equal(t, "bob@example.com", users[1].Email)
}
