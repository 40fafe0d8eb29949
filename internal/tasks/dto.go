package tasks

import (
	"time"

	"geo-survey/survey-portal/survey-portal-backend/pkg/metrics"
)

// TaskResponse is a task plus its read-time derived fields
type TaskResponse struct {
	Task
	IsOverdue                bool   `json:"is_overdue"`
	DaysRemaining            *int   `json:"days_remaining,omitempty"`
	Priority                 string `json:"priority"`
	AssignedTechniciensCount int    `json:"assigned_techniciens_count"`
	AssignedTechniciensNames string `json:"assigned_techniciens_names,omitempty"`
}

// ToResponse computes the derived fields against a single "now"
func ToResponse(task *Task) TaskResponse {
	today := time.Now()
	snapshot := metrics.TaskSnapshot{Status: task.Status, DueDate: task.DueDate}

	names := make([]string, 0, len(task.Techniciens))
	for i := range task.Techniciens {
		names = append(names, task.Techniciens[i].FullName())
	}

	resp := TaskResponse{
		Task:                     *task,
		IsOverdue:                metrics.TaskIsOverdue(snapshot, today),
		Priority:                 metrics.TaskPriority(snapshot, today),
		AssignedTechniciensCount: len(names),
		AssignedTechniciensNames: metrics.JoinNames(names),
	}
	if days, ok := metrics.TaskDaysRemaining(snapshot, today); ok {
		resp.DaysRemaining = &days
	}
	return resp
}
