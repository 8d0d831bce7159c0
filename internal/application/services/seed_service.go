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

// Default workflow collections installed into an empty database. Seeding is
// idempotent per collection: a collection with any existing rows is left
// untouched.
var (
	defaultStates = []struct {
		name  string
		color string
	}{
		{"To Do", "#6b7280"},
		{"In Progress", "#3b82f6"},
		{"Done", "#22c55e"},
		{"Stuck", "#ef4444"},
	}

	defaultPriorities = []struct {
		name  string
		color string
	}{
		{"Urgent", "#ef4444"},
		{"High", "#f97316"},
		{"Medium", "#eab308"},
		{"Low", "#6b7280"},
	}
)

// SeedService installs the default task states and priorities.
type SeedService struct {
	stateRepo    ports.TaskStateRepository
	priorityRepo ports.PriorityRepository
	logger       *logger.Logger
	now          func() time.Time
}

func NewSeedService(repos ports.Repositories, logger *logger.Logger, now func() time.Time) *SeedService {
	if now == nil {
		now = time.Now
	}
	return &SeedService{
		stateRepo:    repos.States,
		priorityRepo: repos.Priorities,
		logger:       logger.WithComponent("seed_service"),
		now:          now,
	}
}

// SeedDefaults installs the default states and priorities into their
// collections when those collections are empty. It is safe to run on every
// startup.
func (s *SeedService) SeedDefaults(ctx context.Context) error {
	now := entities.Millis(s.now())

	states, err := s.stateRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list states: %w", err)
	}
	if len(states) == 0 {
		for i, def := range defaultStates {
			color := def.color
			state := &entities.TaskState{
				ID:        uuid.New(),
				Name:      def.name,
				Color:     &color,
				Order:     i,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.stateRepo.Create(ctx, state); err != nil {
				return fmt.Errorf("failed to seed state %q: %w", def.name, err)
			}
		}
		s.logger.Infow("seeded default task states", "count", len(defaultStates))
	}

	priorities, err := s.priorityRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list priorities: %w", err)
	}
	if len(priorities) == 0 {
		for i, def := range defaultPriorities {
			color := def.color
			priority := &entities.Priority{
				ID:        uuid.New(),
				Name:      def.name,
				Color:     &color,
				Order:     i,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.priorityRepo.Create(ctx, priority); err != nil {
				return fmt.Errorf("failed to seed priority %q: %w", def.name, err)
			}
		}
		s.logger.Infow("seeded default priorities", "count", len(defaultPriorities))
	}

	return nil
}
