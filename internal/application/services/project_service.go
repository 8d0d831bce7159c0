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

// ProjectService manages projects. Projects have no delete operation; they
// are archived instead, which hides them from active listings without
// touching the tasks that reference them.
type ProjectService struct {
	projectRepo ports.ProjectRepository
	audit       *AuditService
	authz       *AuthzService
	logger      *logger.Logger
	now         func() time.Time
}

func NewProjectService(repos ports.Repositories, audit *AuditService, authz *AuthzService, logger *logger.Logger, now func() time.Time) *ProjectService {
	if now == nil {
		now = time.Now
	}
	return &ProjectService{
		projectRepo: repos.Projects,
		audit:       audit,
		authz:       authz,
		logger:      logger.WithComponent("project_service"),
		now:         now,
	}
}

// ListProjects returns projects in one archived/active partition.
// Unauthorized callers get an empty slice.
func (s *ProjectService) ListProjects(ctx context.Context, archived bool) ([]*entities.Project, error) {
	userID, err := s.authz.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return []*entities.Project{}, nil
	}

	all, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	projects := make([]*entities.Project, 0, len(all))
	for _, p := range all {
		if p.Archived == archived {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

// GetProject returns one project, or nil when it does not exist or the
// caller is not authorized.
func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*entities.Project, error) {
	userID, err := s.authz.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return nil, nil
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if err == entities.ErrProjectNotFound {
			return nil, nil
		}
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) CreateProject(ctx context.Context, req ports.CreateProjectRequest) (uuid.UUID, error) {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	now := entities.Millis(s.now())
	project := &entities.Project{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.audit.Record(ctx, userID, entities.ActionCreate, entities.EntityProject, project.ID.String(), nil, map[string]any{"name": project.Name})
	return project.ID, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, id uuid.UUID, req ports.UpdateProjectRequest) error {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return err
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	changes := make(map[string]entities.FieldChange)
	if req.Name != nil && *req.Name != project.Name {
		changes["name"] = entities.FieldChange{Old: project.Name, New: *req.Name}
		project.Name = *req.Name
	}
	if req.Description != nil && !equalStringPtr(req.Description, project.Description) {
		changes["description"] = entities.FieldChange{Old: stringPtrValue(project.Description), New: *req.Description}
		project.Description = req.Description
	}

	project.UpdatedAt = entities.Millis(s.now())
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if len(changes) > 0 {
		s.audit.Record(ctx, userID, entities.ActionUpdate, entities.EntityProject, project.ID.String(), changes, map[string]any{"name": project.Name})
	}
	return nil
}

// ArchiveProject hides a project from active listings. Archiving an already
// archived project is a no-op and writes no audit entry.
func (s *ProjectService) ArchiveProject(ctx context.Context, id uuid.UUID) error {
	return s.setProjectArchived(ctx, id, true)
}

// UnarchiveProject restores a project to active listings.
func (s *ProjectService) UnarchiveProject(ctx context.Context, id uuid.UUID) error {
	return s.setProjectArchived(ctx, id, false)
}

func (s *ProjectService) setProjectArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	userID, err := s.authz.RequireUser(ctx)
	if err != nil {
		return err
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if project.Archived == archived {
		return nil
	}

	project.Archived = archived
	project.UpdatedAt = entities.Millis(s.now())
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	action := entities.ActionArchive
	if !archived {
		action = entities.ActionUnarchive
	}
	s.audit.Record(ctx, userID, action, entities.EntityProject, project.ID.String(), nil, map[string]any{"name": project.Name})
	return nil
}
