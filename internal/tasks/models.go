package tasks

import (
	"time"

	"github.com/google/uuid"

	"geo-survey/survey-portal/survey-portal-backend/internal/users"
)

// Task is a unit of field or office work under exactly one project.
// Technicians are shared across tasks through the task_techniciens join
// table; the task never owns them.
type Task struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title              string     `gorm:"not null" json:"title"`
	Description        string     `json:"description"`
	Status             string     `gorm:"not null;default:'TODO';index" json:"status"`
	DueDate            *time.Time `gorm:"type:date" json:"due_date,omitempty"`
	ProjectID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	ProgressPercentage int        `gorm:"default:0" json:"progress_percentage"`
	ProgressNotes      string     `json:"progress_notes"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`

	Techniciens []users.User `gorm:"many2many:task_techniciens" json:"techniciens,omitempty"`
}

// TaskFilter narrows List queries
type TaskFilter struct {
	ProjectID    *uuid.UUID
	TechnicienID *uuid.UUID
	Status       string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
}
