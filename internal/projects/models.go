package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Project represents a surveying project owned by a topographe on behalf
// of a client. Client and topographe references are set at creation and
// never change.
type Project struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Description  string         `json:"description"`
	Status       string         `gorm:"not null;default:'PLANNING';index" json:"status"`
	StartDate    *time.Time     `gorm:"type:date" json:"start_date,omitempty"`
	EndDate      *time.Time     `gorm:"type:date" json:"end_date,omitempty"`
	ClientID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"client_id"`
	TopographeID uuid.UUID      `gorm:"type:uuid;not null;index" json:"topographe_id"`
	SiteGeometry datatypes.JSON `json:"site_geometry,omitempty"` // GeoJSON of the surveyed site
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TaskSummary is the slice of task state the project side needs for
// guards and derived metrics
type TaskSummary struct {
	ID      uuid.UUID  `json:"id"`
	Status  string     `json:"status"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// ProjectFilter narrows List queries
type ProjectFilter struct {
	Status       string
	TopographeID *uuid.UUID
	ClientID     *uuid.UUID
	Search       string
	Page         int
	PageSize     int
	SortBy       string
}
