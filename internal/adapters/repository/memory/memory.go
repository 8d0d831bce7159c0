// Package memory provides in-memory implementations of every repository
// port. They back the service-layer tests and are handy for local runs
// without a database. All adapters are safe for concurrent use.
package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/ports"
)

// NewRepositories returns a complete in-memory repository bundle sharing one
// store.
func NewRepositories() ports.Repositories {
	s := &store{
		tasks:      make(map[uuid.UUID]*entities.Task),
		states:     make(map[uuid.UUID]*entities.TaskState),
		priorities: make(map[uuid.UUID]*entities.Priority),
		tags:       make(map[uuid.UUID]*entities.Tag),
		projects:   make(map[uuid.UUID]*entities.Project),
		users:      make(map[uuid.UUID]*entities.User),
		updates:    make(map[uuid.UUID]*entities.TaskUpdate),
		presets:    make(map[uuid.UUID]*entities.FilterPreset),
	}
	return ports.Repositories{
		Tasks:       &taskRepository{store: s},
		States:      &stateRepository{store: s},
		Priorities:  &priorityRepository{store: s},
		Tags:        &tagRepository{store: s},
		Projects:    &projectRepository{store: s},
		Users:       &userRepository{store: s},
		TaskUpdates: &updateRepository{store: s},
		Presets:     &presetRepository{store: s},
		Audit:       &auditRepository{store: s},
	}
}

type store struct {
	mu         sync.RWMutex
	tasks      map[uuid.UUID]*entities.Task
	states     map[uuid.UUID]*entities.TaskState
	priorities map[uuid.UUID]*entities.Priority
	tags       map[uuid.UUID]*entities.Tag
	projects   map[uuid.UUID]*entities.Project
	users      map[uuid.UUID]*entities.User
	updates    map[uuid.UUID]*entities.TaskUpdate
	presets    map[uuid.UUID]*entities.FilterPreset
	audit      []*entities.AuditEntry
}

// sortNewestFirst orders by creation time descending with id string as a
// deterministic tiebreak, matching the Postgres adapters' ORDER BY.
func sortTasksNewestFirst(tasks []*entities.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt != tasks[j].CreatedAt {
			return tasks[i].CreatedAt > tasks[j].CreatedAt
		}
		return tasks[i].ID.String() > tasks[j].ID.String()
	})
}
