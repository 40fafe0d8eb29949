package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Roles
const (
	RoleAdmin      = "ADMIN"
	RoleTopographe = "TOPOGRAPHE"
	RoleTechnicien = "TECHNICIEN"
	RoleClient     = "CLIENT"
)

// Technician skill levels
const (
	SkillJunior = "JUNIOR"
	SkillSenior = "SENIOR"
	SkillExpert = "EXPERT"
)

// Client types
const (
	ClientIndividual = "INDIVIDUAL"
	ClientCompany    = "COMPANY"
	ClientGovernment = "GOVERNMENT"
)

// User is the single account record for every role. Role-specific fields
// live as nullable columns dispatched by Role instead of subtype tables.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `gorm:"not null" json:"first_name"`
	LastName  string    `gorm:"not null" json:"last_name"`
	Phone     string    `gorm:"uniqueIndex;not null" json:"phone"`
	CIN       string    `gorm:"column:cin;uniqueIndex;not null" json:"cin"`
	Role      string    `gorm:"not null;index" json:"role"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CityID    *uuid.UUID `gorm:"type:uuid" json:"city_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// TOPOGRAPHE payload
	LicenseNumber  *string `gorm:"uniqueIndex" json:"license_number,omitempty"`
	Specialization *string `json:"specialization,omitempty"`

	// TECHNICIEN payload
	SkillLevel   *string        `json:"skill_level,omitempty"`
	Specialties  datatypes.JSON `json:"specialties,omitempty"`
	TopographeID *uuid.UUID     `gorm:"type:uuid;index" json:"topographe_id,omitempty"`

	// CLIENT payload
	ClientType  *string `json:"client_type,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
}

// FullName renders the display name used in task assignments and emails
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsTechnicien reports whether the user carries the technician payload
func (u *User) IsTechnicien() bool {
	return u.Role == RoleTechnicien
}

// UserFilter narrows List queries
type UserFilter struct {
	Role         string
	IsActive     *bool
	TopographeID *uuid.UUID
	Search       string
	Page         int
	PageSize     int
	SortBy       string
}
