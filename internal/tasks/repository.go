package tasks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"geo-survey/survey-portal/survey-portal-backend/internal/users"
)

type Repository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter TaskFilter) ([]Task, int64, error)

	AddTechnicien(ctx context.Context, task *Task, technicien *users.User) error
	RemoveTechnicien(ctx context.Context, task *Task, technicien *users.User) error
	ReplaceTechniciens(ctx context.Context, task *Task, techniciens []users.User) error

	CountByTechnicienAndStatus(ctx context.Context, technicienID uuid.UUID, status string) (int64, error)

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

func (r *gormRepository) Create(ctx context.Context, task *Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	var task Task
	err := r.db.WithContext(ctx).Preload("Techniciens").First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &task, err
}

func (r *gormRepository) Update(ctx context.Context, task *Task) error {
	// associations are managed explicitly through the technician methods
	return r.db.WithContext(ctx).Omit("Techniciens").Save(task).Error
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Techniciens").Delete(&Task{ID: id}).Error
}

func (r *gormRepository) List(ctx context.Context, filter TaskFilter) ([]Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&Task{})

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TechnicienID != nil {
		query = query.Joins("JOIN task_techniciens tt ON tt.task_id = tasks.id").
			Where("tt.user_id = ?", *filter.TechnicienID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
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

	var tasksList []Task
	err := query.Preload("Techniciens").
		Order(sortBy).Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&tasksList).Error
	return tasksList, total, err
}

func (r *gormRepository) AddTechnicien(ctx context.Context, task *Task, technicien *users.User) error {
	return r.db.WithContext(ctx).Model(task).Association("Techniciens").Append(technicien)
}

func (r *gormRepository) RemoveTechnicien(ctx context.Context, task *Task, technicien *users.User) error {
	return r.db.WithContext(ctx).Model(task).Association("Techniciens").Delete(technicien)
}

func (r *gormRepository) ReplaceTechniciens(ctx context.Context, task *Task, techniciens []users.User) error {
	return r.db.WithContext(ctx).Model(task).Association("Techniciens").Replace(techniciens)
}

func (r *gormRepository) CountByTechnicienAndStatus(ctx context.Context, technicienID uuid.UUID, status string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&Task{}).
		Joins("JOIN task_techniciens tt ON tt.task_id = tasks.id").
		Where("tt.user_id = ?", technicienID)
	if status != "" {
		query = query.Where("tasks.status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *gormRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
