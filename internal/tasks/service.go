package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"geo-survey/survey-portal/survey-portal-backend/internal/projects"
	"geo-survey/survey-portal/survey-portal-backend/internal/search"
	"geo-survey/survey-portal/survey-portal-backend/internal/users"
	"geo-survey/survey-portal/survey-portal-backend/pkg/apperrors"
	"geo-survey/survey-portal/survey-portal-backend/pkg/workflows"
)

// Requests

type CreateTaskRequest struct {
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	DueDate       *time.Time  `json:"due_date"`
	ProjectID     uuid.UUID   `json:"project_id"`
	ProgressNotes string      `json:"progress_notes"`
	TechnicienIDs []uuid.UUID `json:"technicien_ids"`
}

type UpdateTaskRequest struct {
	Title              *string    `json:"title"`
	Description        *string    `json:"description"`
	DueDate            *time.Time `json:"due_date"`
	ProgressPercentage *int       `json:"progress_percentage"`
	ProgressNotes      *string    `json:"progress_notes"`
}

// ProjectReader resolves the owning project for lifecycle checks
type ProjectReader interface {
	GetProject(ctx context.Context, id uuid.UUID) (*projects.Project, error)
}

// UserDirectory validates technician references
type UserDirectory interface {
	GetActiveByRole(ctx context.Context, id uuid.UUID, role string) (*users.User, error)
}

// Service orchestrates the task lifecycle and assignment rules
type Service struct {
	repo         Repository
	projects     ProjectReader
	directory    UserDirectory
	indexer      *search.Indexer
	stateMachine *workflows.StateMachine
	logger       *zap.Logger
}

func NewService(repo Repository, projectReader ProjectReader, directory UserDirectory, indexer *search.Indexer, logger *zap.Logger) *Service {
	return &Service{
		repo:         repo,
		projects:     projectReader,
		directory:    directory,
		indexer:      indexer,
		stateMachine: workflows.NewTaskStateMachine(),
		logger:       logger,
	}
}

// CreateTask validates the owning project, the due date and any initial
// technician set, then persists the task
func (s *Service) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	if req.Title == "" {
		return nil, apperrors.Validationf("title is required")
	}
	if req.ProjectID == uuid.Nil {
		return nil, apperrors.Validationf("project_id is required")
	}

	project, err := s.projects.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.Status == workflows.ProjectCompleted || project.Status == workflows.ProjectCancelled {
		return nil, apperrors.StateConflictf("cannot add tasks to a %s project", project.Status)
	}

	if err := checkDueDate(req.DueDate, project); err != nil {
		return nil, err
	}

	techniciens, err := s.resolveTechniciens(ctx, req.TechnicienIDs)
	if err != nil {
		return nil, err
	}

	task := &Task{
		Title:         req.Title,
		Description:   req.Description,
		Status:        workflows.TaskTodo,
		DueDate:       req.DueDate,
		ProjectID:     req.ProjectID,
		ProgressNotes: req.ProgressNotes,
		Techniciens:   techniciens,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.indexer.IndexTask(ctx, s.searchDocument(task))
	return task, nil
}

// GetTask fetches one task with its technician set, or fails with NotFound
func (s *Service) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching task: %w", err)
	}
	if task == nil {
		return nil, apperrors.NotFoundf("task %s not found", id)
	}
	return task, nil
}

// ListTasks returns a filtered page plus the total row count
func (s *Service) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, int64, error) {
	return s.repo.List(ctx, filter)
}

// UpdateTask applies field updates, revalidating the due date against the
// owning project
func (s *Service) UpdateTask(ctx context.Context, id uuid.UUID, req UpdateTaskRequest) (*Task, error) {
	var updated *Task

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		task, err := getForUpdate(ctx, repo, id)
		if err != nil {
			return err
		}

		if req.Title != nil {
			if *req.Title == "" {
				return apperrors.Validationf("title cannot be empty")
			}
			task.Title = *req.Title
		}
		if req.Description != nil {
			task.Description = *req.Description
		}
		if req.DueDate != nil {
			project, err := s.projects.GetProject(ctx, task.ProjectID)
			if err != nil {
				return err
			}
			if err := checkDueDate(req.DueDate, project); err != nil {
				return err
			}
			task.DueDate = req.DueDate
		}
		if req.ProgressPercentage != nil {
			if task.Status == workflows.TaskCompleted {
				return apperrors.StateConflictf("progress of a completed task is fixed at 100")
			}
			if *req.ProgressPercentage < 0 || *req.ProgressPercentage > 100 {
				return apperrors.Validationf("progress percentage must be between 0 and 100")
			}
			task.ProgressPercentage = *req.ProgressPercentage
		}
		if req.ProgressNotes != nil {
			task.ProgressNotes = *req.ProgressNotes
		}

		if err := repo.Update(ctx, task); err != nil {
			return fmt.Errorf("updating task: %w", err)
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.indexer.IndexTask(ctx, s.searchDocument(updated))
	return updated, nil
}

// ChangeStatus runs the task state machine. Moving into IN_PROGRESS
// requires at least one assigned technician; reaching COMPLETED stamps the
// completion time once and forces progress to 100.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*Task, error) {
	var updated *Task

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		task, err := getForUpdate(ctx, repo, id)
		if err != nil {
			return err
		}

		if err := s.stateMachine.CheckTransition(task.Status, status); err != nil {
			return err
		}
		if status == workflows.TaskInProgress && len(task.Techniciens) == 0 {
			return apperrors.StateConflictf("task needs at least one assigned technician before starting")
		}

		task.Status = status
		if status == workflows.TaskCompleted {
			task.ProgressPercentage = 100
			if task.CompletedAt == nil {
				now := time.Now()
				task.CompletedAt = &now
			}
		}

		if err := repo.Update(ctx, task); err != nil {
			return fmt.Errorf("updating task: %w", err)
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.indexer.IndexTask(ctx, s.searchDocument(updated))
	return updated, nil
}

// AssignTechnicien attaches one active technician to the task
func (s *Service) AssignTechnicien(ctx context.Context, taskID, technicienID uuid.UUID) (*Task, error) {
	var updated *Task

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		task, err := getForUpdate(ctx, repo, taskID)
		if err != nil {
			return err
		}

		technicien, err := s.directory.GetActiveByRole(ctx, technicienID, users.RoleTechnicien)
		if err != nil {
			return err
		}

		for _, t := range task.Techniciens {
			if t.ID == technicienID {
				return apperrors.Validationf("technician %s is already assigned", technicien.FullName())
			}
		}

		if err := repo.AddTechnicien(ctx, task, technicien); err != nil {
			return fmt.Errorf("assigning technician: %w", err)
		}
		task.Techniciens = append(task.Techniciens, *technicien)
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UnassignTechnicien detaches one technician. A task with recorded or
// finished work keeps at least one technician.
func (s *Service) UnassignTechnicien(ctx context.Context, taskID, technicienID uuid.UUID) (*Task, error) {
	var updated *Task

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		task, err := getForUpdate(ctx, repo, taskID)
		if err != nil {
			return err
		}

		var assigned *users.User
		remaining := make([]users.User, 0, len(task.Techniciens))
		for i := range task.Techniciens {
			if task.Techniciens[i].ID == technicienID {
				assigned = &task.Techniciens[i]
			} else {
				remaining = append(remaining, task.Techniciens[i])
			}
		}
		if assigned == nil {
			return apperrors.NotFoundf("technician %s is not assigned to this task", technicienID)
		}

		if len(remaining) == 0 && requiresTechnician(task.Status) {
			return apperrors.StateConflictf(
				"a %s task must keep at least one assigned technician", task.Status)
		}

		if err := repo.RemoveTechnicien(ctx, task, assigned); err != nil {
			return fmt.Errorf("unassigning technician: %w", err)
		}
		task.Techniciens = remaining
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReassignTechniciens replaces the whole technician set; every incoming
// technician must be active
func (s *Service) ReassignTechniciens(ctx context.Context, taskID uuid.UUID, technicienIDs []uuid.UUID) (*Task, error) {
	var updated *Task

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		task, err := getForUpdate(ctx, repo, taskID)
		if err != nil {
			return err
		}

		if len(technicienIDs) == 0 && requiresTechnician(task.Status) {
			return apperrors.StateConflictf(
				"a %s task must keep at least one assigned technician", task.Status)
		}

		techniciens, err := s.resolveTechniciens(ctx, technicienIDs)
		if err != nil {
			return err
		}

		if err := repo.ReplaceTechniciens(ctx, task, techniciens); err != nil {
			return fmt.Errorf("reassigning technicians: %w", err)
		}
		task.Techniciens = techniciens
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTask removes a task still in TODO; anything else conflicts
func (s *Service) DeleteTask(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		task, err := getForUpdate(ctx, repo, id)
		if err != nil {
			return err
		}
		if task.Status != workflows.TaskTodo {
			return apperrors.StateConflictf("task in status %s cannot be deleted, only TODO tasks can", task.Status)
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.indexer.DeleteTask(ctx, id.String())
	return nil
}

// SearchTasks queries the secondary search index
func (s *Service) SearchTasks(ctx context.Context, query string, size int) ([]search.TaskDocument, error) {
	return s.indexer.SearchTasks(ctx, query, size)
}

func (s *Service) resolveTechniciens(ctx context.Context, ids []uuid.UUID) ([]users.User, error) {
	techniciens := make([]users.User, 0, len(ids))
	for _, id := range ids {
		technicien, err := s.directory.GetActiveByRole(ctx, id, users.RoleTechnicien)
		if err != nil {
			return nil, err
		}
		techniciens = append(techniciens, *technicien)
	}
	return techniciens, nil
}

func (s *Service) searchDocument(task *Task) search.TaskDocument {
	return search.TaskDocument{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		ProjectID:   task.ProjectID.String(),
	}
}

// requiresTechnician reports whether the status records active or
// finished work, which pins the last technician in place
func requiresTechnician(status string) bool {
	return status == workflows.TaskInProgress || status == workflows.TaskCompleted
}

func getForUpdate(ctx context.Context, repo Repository, id uuid.UUID) (*Task, error) {
	task, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching task: %w", err)
	}
	if task == nil {
		return nil, apperrors.NotFoundf("task %s not found", id)
	}
	return task, nil
}

func checkDueDate(dueDate *time.Time, project *projects.Project) error {
	if dueDate == nil || project.EndDate == nil {
		return nil
	}
	if dueDate.After(*project.EndDate) {
		return apperrors.Validationf("due date cannot exceed the project end date")
	}
	return nil
}
