package projects

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ProjectFilter) ([]Project, int64, error)

	CountTasks(ctx context.Context, projectID uuid.UUID) (int64, error)
	CountTasksNotInStatus(ctx context.Context, projectID uuid.UUID, status string) (int64, error)
	TaskSummaries(ctx context.Context, projectID uuid.UUID) ([]TaskSummary, error)
	TechnicianNames(ctx context.Context, projectID uuid.UUID) ([]string, error)

	// Transaction runs fn against a repository bound to one database
	// transaction; returning an error rolls everything back
	Transaction(ctx context.Context, fn func(Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var project Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &project, err
}

func (r *gormRepository) Update(ctx context.Context, project *Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Project{}, "id = ?", id).Error
}

func (r *gormRepository) List(ctx context.Context, filter ProjectFilter) ([]Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&Project{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TopographeID != nil {
		query = query.Where("topographe_id = ?", *filter.TopographeID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at DESC"
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var projectsList []Project
	err := query.Order(sortBy).Offset((page - 1) * pageSize).Limit(pageSize).Find(&projectsList).Error
	return projectsList, total, err
}

func (r *gormRepository) CountTasks(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("tasks").Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

func (r *gormRepository) CountTasksNotInStatus(ctx context.Context, projectID uuid.UUID, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("tasks").
		Where("project_id = ? AND status <> ?", projectID, status).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) TaskSummaries(ctx context.Context, projectID uuid.UUID) ([]TaskSummary, error) {
	var summaries []TaskSummary
	err := r.db.WithContext(ctx).Table("tasks").
		Select("id, status, due_date").
		Where("project_id = ?", projectID).
		Scan(&summaries).Error
	return summaries, err
}

// TechnicianNames returns the distinct full names of technicians assigned
// to any task of the project
func (r *gormRepository) TechnicianNames(ctx context.Context, projectID uuid.UUID) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Table("users").
		Select("DISTINCT users.first_name || ' ' || users.last_name").
		Joins("JOIN task_techniciens tt ON tt.user_id = users.id").
		Joins("JOIN tasks t ON t.id = tt.task_id").
		Where("t.project_id = ?", projectID).
		Order("users.first_name || ' ' || users.last_name").
		Scan(&names).Error
	return names, err
}

func (r *gormRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
