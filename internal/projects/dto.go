package projects

import (
	"context"
	"fmt"
	"time"

	"geo-survey/survey-portal/survey-portal-backend/pkg/metrics"
)

// ProjectResponse is a project plus its read-time derived metrics. None
// of the derived fields are persisted; they are recomputed against "now"
// every time a response is built.
type ProjectResponse struct {
	Project
	TaskCount                  int      `json:"task_count"`
	ProgressPercentage         float64  `json:"progress_percentage"`
	WeightedProgressPercentage float64  `json:"weighted_progress_percentage"`
	IsOverdue                  bool     `json:"is_overdue"`
	DaysRemaining              *int     `json:"days_remaining,omitempty"`
	TimeProgressPercentage     *float64 `json:"time_progress_percentage,omitempty"`
	HealthStatus               string   `json:"health_status"`
	AssignedTechniciensCount   int      `json:"assigned_techniciens_count"`
	AssignedTechniciensNames   string   `json:"assigned_techniciens_names,omitempty"`
	ClientName                 string   `json:"client_name,omitempty"`
	TopographeName             string   `json:"topographe_name,omitempty"`
}

// ToResponse loads the project's task snapshot and computes the derived
// metrics against a single "now"
func (s *Service) ToResponse(ctx context.Context, project *Project) (*ProjectResponse, error) {
	summaries, err := s.repo.TaskSummaries(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("loading task summaries: %w", err)
	}
	names, err := s.repo.TechnicianNames(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("loading technician names: %w", err)
	}

	today := time.Now()
	snapshot := metrics.ProjectSnapshot{
		Status:    project.Status,
		StartDate: project.StartDate,
		EndDate:   project.EndDate,
	}
	tasks := make([]metrics.TaskSnapshot, 0, len(summaries))
	for _, t := range summaries {
		tasks = append(tasks, metrics.TaskSnapshot{Status: t.Status, DueDate: t.DueDate})
	}

	resp := &ProjectResponse{
		Project:                    *project,
		TaskCount:                  len(summaries),
		ProgressPercentage:         metrics.ProjectProgress(tasks),
		WeightedProgressPercentage: metrics.WeightedProjectProgress(tasks),
		IsOverdue:                  metrics.ProjectIsOverdue(snapshot, today),
		HealthStatus:               metrics.ProjectHealth(snapshot, tasks, today),
		AssignedTechniciensCount:   len(names),
		AssignedTechniciensNames:   metrics.JoinNames(names),
	}

	if days, ok := metrics.DaysRemaining(project.EndDate, today); ok {
		resp.DaysRemaining = &days
	}
	if pct, ok := metrics.TimeProgress(snapshot, today); ok {
		resp.TimeProgressPercentage = &pct
	}

	if client, err := s.directory.GetUser(ctx, project.ClientID); err == nil {
		resp.ClientName = client.FullName()
	}
	if topographe, err := s.directory.GetUser(ctx, project.TopographeID); err == nil {
		resp.TopographeName = topographe.FullName()
	}

	return resp, nil
}
