package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/core/internal/adapters/repository/memory"
	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/infrastructure/config"
	"github.com/taskboard/core/internal/infrastructure/logger"
	"github.com/taskboard/core/internal/ports"
)

const testAllowlist = "alice@example.com, bob@example.com"

// testEnv wires the full service graph on in-memory repositories with a
// controllable clock.
type testEnv struct {
	repos    ports.Repositories
	authz    *AuthzService
	audit    *AuditService
	tasks    *TaskService
	workflow *WorkflowService
	tags     *TagService
	projects *ProjectService
	updates  *UpdateService
	presets  *PresetService
	users    *UserService
	seed     *SeedService

	clock time.Time
	alice *entities.User
	ctx   context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithAllowlist(t, testAllowlist)
}

func newTestEnvWithAllowlist(t *testing.T, allowlist string) *testEnv {
	t.Helper()

	env := &testEnv{
		repos: memory.NewRepositories(),
		clock: time.UnixMilli(1700000000000),
	}
	now := func() time.Time { return env.clock }
	log := logger.NewNop()

	env.authz = NewAuthzService(env.repos.Users, allowlist, log)
	env.audit = NewAuditService(env.repos.Audit, env.repos.Users, env.authz, log, now)
	sweep := config.SweepConfig{
		Enabled:       true,
		Interval:      24 * time.Hour,
		Retention:     7 * 24 * time.Hour,
		DoneStateName: "Done",
	}
	env.tasks = NewTaskService(env.repos, env.audit, env.authz, sweep, log, now)
	env.workflow = NewWorkflowService(env.repos, env.audit, env.authz, log, now)
	env.tags = NewTagService(env.repos, env.audit, env.authz, log, now)
	env.projects = NewProjectService(env.repos, env.audit, env.authz, log, now)
	env.updates = NewUpdateService(env.repos, env.audit, env.authz, log, now)
	env.presets = NewPresetService(env.repos, env.authz, log, now)
	env.users = NewUserService(env.repos, env.audit, env.authz, log, now)
	env.seed = NewSeedService(env.repos, log, now)

	name := "Alice"
	env.alice = &entities.User{
		ID:        uuid.New(),
		Name:      &name,
		Email:     "alice@example.com",
		CreatedAt: entities.Millis(env.clock),
	}
	require.NoError(t, env.repos.Users.Create(context.Background(), env.alice))
	env.ctx = WithIdentity(context.Background(), env.alice.ID)

	return env
}

// advance moves the clock forward.
func (env *testEnv) advance(d time.Duration) {
	env.clock = env.clock.Add(d)
}

// addUser provisions an extra user row directly.
func (env *testEnv) addUser(t *testing.T, name, email string) *entities.User {
	t.Helper()
	u := &entities.User{
		ID:        uuid.New(),
		Name:      &name,
		Email:     email,
		CreatedAt: entities.Millis(env.clock),
	}
	require.NoError(t, env.repos.Users.Create(context.Background(), u))
	return u
}

// mustSeed installs the default states and priorities and returns them.
func (env *testEnv) mustSeed(t *testing.T) ([]*entities.TaskState, []*entities.Priority) {
	t.Helper()
	require.NoError(t, env.seed.SeedDefaults(context.Background()))
	states, err := env.repos.States.List(context.Background())
	require.NoError(t, err)
	priorities, err := env.repos.Priorities.List(context.Background())
	require.NoError(t, err)
	return states, priorities
}

// mustCreateTask creates a task through the service and returns its id.
func (env *testEnv) mustCreateTask(t *testing.T, req ports.CreateTaskRequest) uuid.UUID {
	t.Helper()
	id, err := env.tasks.CreateTask(env.ctx, req)
	require.NoError(t, err)
	return id
}

// stateNamed finds a seeded state by name.
func stateNamed(t *testing.T, states []*entities.TaskState, name string) *entities.TaskState {
	t.Helper()
	for _, st := range states {
		if st.Name == name {
			return st
		}
	}
	t.Fatalf("no state named %q", name)
	return nil
}
