package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	FindConflictingField(ctx context.Context, user *User) (string, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *gormRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *gormRepository) Update(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&User{}, "id = ?", id).Error
}

func (r *gormRepository) List(ctx context.Context, filter UserFilter) ([]User, int64, error) {
	query := r.db.WithContext(ctx).Model(&User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.TopographeID != nil {
		query = query.Where("topographe_id = ?", *filter.TopographeID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR username ILIKE ? OR email ILIKE ?",
			like, like, like, like)
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

	var users []User
	err := query.Order(sortBy).Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error
	return users, total, err
}

// FindConflictingField reports which unique field clashes with another
// user's row, or "" when none does. The user's own row (by ID) is excluded
// so updates don't collide with themselves.
func (r *gormRepository) FindConflictingField(ctx context.Context, user *User) (string, error) {
	type check struct {
		field string
		query string
		value interface{}
	}
	checks := []check{
		{"username", "username = ?", user.Username},
		{"email", "email = ?", user.Email},
		{"cin", "cin = ?", user.CIN},
		{"phone", "phone = ?", user.Phone},
	}
	if user.LicenseNumber != nil {
		checks = append(checks, check{"license_number", "license_number = ?", *user.LicenseNumber})
	}

	for _, c := range checks {
		var count int64
		q := r.db.WithContext(ctx).Model(&User{}).Where(c.query, c.value)
		if user.ID != uuid.Nil {
			q = q.Where("id <> ?", user.ID)
		}
		if err := q.Count(&count).Error; err != nil {
			return "", fmt.Errorf("checking %s uniqueness: %w", c.field, err)
		}
		if count > 0 {
			return c.field, nil
		}
	}
	return "", nil
}
