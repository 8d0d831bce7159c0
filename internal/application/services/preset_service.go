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

// PresetService manages saved filter presets. Presets are personal UI state
// and do not produce audit entries.
type PresetService struct {
	presetRepo ports.FilterPresetRepository
	authz      *AuthzService
	logger     *logger.Logger
	now        func() time.Time
}

func NewPresetService(repos ports.Repositories, authz *AuthzService, logger *logger.Logger, now func() time.Time) *PresetService {
	if now == nil {
		now = time.Now
	}
	return &PresetService{
		presetRepo: repos.Presets,
		authz:      authz,
		logger:     logger.WithComponent("preset_service"),
		now:        now,
	}
}

// ListPresets returns all saved presets. Unauthorized callers get an empty
// slice.
func (s *PresetService) ListPresets(ctx context.Context) ([]*entities.FilterPreset, error) {
	userID, err := s.authz.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return []*entities.FilterPreset{}, nil
	}
	presets, err := s.presetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	return presets, nil
}

func (s *PresetService) CreatePreset(ctx context.Context, req ports.CreatePresetRequest) (uuid.UUID, error) {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	now := entities.Millis(s.now())
	preset := &entities.FilterPreset{
		ID:        uuid.New(),
		Name:      req.Name,
		Filters:   req.Filters,
		SortKeys:  req.SortKeys,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.presetRepo.Create(ctx, preset); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create preset: %w", err)
	}
	return preset.ID, nil
}

func (s *PresetService) UpdatePreset(ctx context.Context, id uuid.UUID, req ports.UpdatePresetRequest) error {
	if _, err := s.authz.RequireUser(ctx); err != nil {
		return err
	}

	preset, err := s.presetRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if req.Name != nil {
		preset.Name = *req.Name
	}
	if req.Filters != nil {
		preset.Filters = *req.Filters
	}
	if req.SortKeys != nil {
		preset.SortKeys = *req.SortKeys
	}

	preset.UpdatedAt = entities.Millis(s.now())
	if err := s.presetRepo.Update(ctx, preset); err != nil {
		return fmt.Errorf("failed to update preset: %w", err)
	}
	return nil
}

// RemovePreset deletes a preset. Missing presets are a no-op.
func (s *PresetService) RemovePreset(ctx context.Context, id uuid.UUID) error {
	if _, err := s.authz.RequireUser(ctx); err != nil {
		return err
	}

	if err := s.presetRepo.Delete(ctx, id); err != nil {
		if err == entities.ErrPresetNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	return nil
}
