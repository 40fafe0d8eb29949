package stats

import (
	"time"

	"github.com/google/uuid"
)

// DashboardStats is the aggregate picture served to topographes and admins
type DashboardStats struct {
	Projects    ProjectStats         `json:"projects"`
	Tasks       TaskStats            `json:"tasks"`
	Workloads   []TechnicienWorkload `json:"workloads"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// ProjectStats breaks projects down by status plus the overdue count
type ProjectStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	Overdue  int64            `json:"overdue"`
}

// TaskStats breaks tasks down by status plus the overdue count
type TaskStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	Overdue  int64            `json:"overdue"`
}

// TechnicienWorkload pairs a technician with their active task load
type TechnicienWorkload struct {
	TechnicienID       uuid.UUID `json:"technicien_id" db:"technicien_id"`
	FirstName          string    `json:"first_name" db:"first_name"`
	LastName           string    `json:"last_name" db:"last_name"`
	ActiveTasks        int64     `json:"active_tasks" db:"active_tasks"`
	WorkloadPercentage float64   `json:"workload_percentage" db:"-"`
}

// TechnicienStats summarizes one technician's task history
type TechnicienStats struct {
	TechnicienID       uuid.UUID `json:"technicien_id"`
	AssignedTasks      int64     `json:"assigned_tasks"`
	ActiveTasks        int64     `json:"active_tasks"`
	CompletedTasks     int64     `json:"completed_tasks"`
	WorkloadPercentage float64   `json:"workload_percentage"`
}

// ProjectExportRow is one line of the project export, already joined
// with client and topographe names
type ProjectExportRow struct {
	Name           string     `db:"name"`
	Status         string     `db:"status"`
	ClientName     string     `db:"client_name"`
	TopographeName string     `db:"topographe_name"`
	StartDate      *time.Time `db:"start_date"`
	EndDate        *time.Time `db:"end_date"`
	TaskCount      int64      `db:"task_count"`
	CompletedTasks int64      `db:"completed_tasks"`
}

type statusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}
