package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"geo-survey/survey-portal/survey-portal-backend/internal/search"
	"geo-survey/survey-portal/survey-portal-backend/internal/users"
	"geo-survey/survey-portal/survey-portal-backend/pkg/apperrors"
	"geo-survey/survey-portal/survey-portal-backend/pkg/geospatial"
	"geo-survey/survey-portal/survey-portal-backend/pkg/workflows"
)

// Requests

type CreateProjectRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Status       string          `json:"status"`
	StartDate    *time.Time      `json:"start_date"`
	EndDate      *time.Time      `json:"end_date"`
	ClientID     uuid.UUID       `json:"client_id"`
	TopographeID uuid.UUID       `json:"topographe_id"`
	SiteGeometry json.RawMessage `json:"site_geometry"`
}

type UpdateProjectRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Status       *string          `json:"status"`
	StartDate    *time.Time       `json:"start_date"`
	EndDate      *time.Time       `json:"end_date"`
	SiteGeometry *json.RawMessage `json:"site_geometry"`
}

// UserDirectory validates the client and topographe references
type UserDirectory interface {
	GetActiveByRole(ctx context.Context, id uuid.UUID, role string) (*users.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// Service orchestrates the project lifecycle
type Service struct {
	repo         Repository
	directory    UserDirectory
	indexer      *search.Indexer
	stateMachine *workflows.StateMachine
	logger       *zap.Logger
}

func NewService(repo Repository, directory UserDirectory, indexer *search.Indexer, logger *zap.Logger) *Service {
	return &Service{
		repo:         repo,
		directory:    directory,
		indexer:      indexer,
		stateMachine: workflows.NewProjectStateMachine(),
		logger:       logger,
	}
}

// CreateProject validates references and dates, then persists the project
func (s *Service) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	if req.Name == "" {
		return nil, apperrors.Validationf("name is required")
	}
	if req.ClientID == uuid.Nil {
		return nil, apperrors.Validationf("client_id is required")
	}
	if req.TopographeID == uuid.Nil {
		return nil, apperrors.Validationf("topographe_id is required")
	}

	if _, err := s.directory.GetActiveByRole(ctx, req.ClientID, users.RoleClient); err != nil {
		return nil, err
	}
	if _, err := s.directory.GetActiveByRole(ctx, req.TopographeID, users.RoleTopographe); err != nil {
		return nil, err
	}

	if err := checkDateOrder(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = workflows.ProjectPlanning
	}
	if !s.stateMachine.IsValidStatus(status) {
		return nil, apperrors.Validationf("unknown project status %s", status)
	}

	project := &Project{
		Name:         req.Name,
		Description:  req.Description,
		Status:       status,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ClientID:     req.ClientID,
		TopographeID: req.TopographeID,
	}

	if len(req.SiteGeometry) > 0 {
		if _, err := geospatial.ValidateGeoJSON(string(req.SiteGeometry)); err != nil {
			return nil, apperrors.Validationf("invalid site geometry: %v", err)
		}
		project.SiteGeometry = []byte(req.SiteGeometry)
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.indexer.IndexProject(ctx, s.searchDocument(project))
	return project, nil
}

// GetProject fetches one project or fails with NotFound
func (s *Service) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching project: %w", err)
	}
	if project == nil {
		return nil, apperrors.NotFoundf("project %s not found", id)
	}
	return project, nil
}

// ListProjects returns a filtered page plus the total row count
func (s *Service) ListProjects(ctx context.Context, filter ProjectFilter) ([]Project, int64, error) {
	return s.repo.List(ctx, filter)
}

// UpdateProject applies optional field updates and runs the status state
// machine as one transaction
func (s *Service) UpdateProject(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*Project, error) {
	var updated *Project

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		project, err := repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("fetching project: %w", err)
		}
		if project == nil {
			return apperrors.NotFoundf("project %s not found", id)
		}

		if req.Name != nil {
			if *req.Name == "" {
				return apperrors.Validationf("name cannot be empty")
			}
			project.Name = *req.Name
		}
		if req.Description != nil {
			project.Description = *req.Description
		}
		if req.StartDate != nil {
			project.StartDate = req.StartDate
		}
		if req.EndDate != nil {
			project.EndDate = req.EndDate
		}
		if err := checkDateOrder(project.StartDate, project.EndDate); err != nil {
			return err
		}

		if req.SiteGeometry != nil {
			if _, err := geospatial.ValidateGeoJSON(string(*req.SiteGeometry)); err != nil {
				return apperrors.Validationf("invalid site geometry: %v", err)
			}
			project.SiteGeometry = []byte(*req.SiteGeometry)
		}

		if req.Status != nil && *req.Status != project.Status {
			if err := s.checkStatusChange(ctx, repo, project, *req.Status); err != nil {
				return err
			}
			project.Status = *req.Status
		}

		project.UpdatedAt = time.Now()
		if err := repo.Update(ctx, project); err != nil {
			return fmt.Errorf("updating project: %w", err)
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.indexer.IndexProject(ctx, s.searchDocument(updated))
	return updated, nil
}

// ChangeStatus transitions the project status only
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*Project, error) {
	return s.UpdateProject(ctx, id, UpdateProjectRequest{Status: &status})
}

// checkStatusChange enforces the state machine plus the completion guard:
// a project completes only when every task under it is completed
func (s *Service) checkStatusChange(ctx context.Context, repo Repository, project *Project, next string) error {
	if err := s.stateMachine.CheckTransition(project.Status, next); err != nil {
		return err
	}
	if next == workflows.ProjectCompleted {
		unfinished, err := repo.CountTasksNotInStatus(ctx, project.ID, workflows.TaskCompleted)
		if err != nil {
			return fmt.Errorf("counting unfinished tasks: %w", err)
		}
		if unfinished > 0 {
			return apperrors.StateConflictf(
				"project cannot be completed, %d task(s) are not completed", unfinished)
		}
	}
	return nil
}

// DeleteProject removes a project still in PLANNING or CANCELLED with no
// tasks; anything else is a state conflict
func (s *Service) DeleteProject(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		project, err := repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("fetching project: %w", err)
		}
		if project == nil {
			return apperrors.NotFoundf("project %s not found", id)
		}

		if project.Status != workflows.ProjectPlanning && project.Status != workflows.ProjectCancelled {
			return apperrors.StateConflictf(
				"project in status %s cannot be deleted, only PLANNING or CANCELLED projects can", project.Status)
		}

		taskCount, err := repo.CountTasks(ctx, id)
		if err != nil {
			return fmt.Errorf("counting tasks: %w", err)
		}
		if taskCount > 0 {
			return apperrors.StateConflictf("project still has %d task(s) and cannot be deleted", taskCount)
		}

		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.indexer.DeleteProject(ctx, id.String())
	return nil
}

// SearchProjects queries the secondary search index
func (s *Service) SearchProjects(ctx context.Context, query string, size int) ([]search.ProjectDocument, error) {
	return s.indexer.SearchProjects(ctx, query, size)
}

func (s *Service) searchDocument(project *Project) search.ProjectDocument {
	return search.ProjectDocument{
		ID:           project.ID.String(),
		Name:         project.Name,
		Description:  project.Description,
		Status:       project.Status,
		TopographeID: project.TopographeID.String(),
		ClientID:     project.ClientID.String(),
	}
}

func checkDateOrder(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return apperrors.Validationf("end date cannot be before start date")
	}
	return nil
}
