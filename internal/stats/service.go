package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"geo-survey/survey-portal/survey-portal-backend/internal/stats/export"
	"geo-survey/survey-portal/survey-portal-backend/internal/users"
	"geo-survey/survey-portal/survey-portal-backend/pkg/apperrors"
	"geo-survey/survey-portal/survey-portal-backend/pkg/metrics"
)

// Export formats accepted by ExportProjects
const (
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
)

var exportColumns = []string{
	"Project", "Status", "Client", "Topographe",
	"Start Date", "End Date", "Tasks", "Completed Tasks",
}

// UserFinder resolves a user record for role checks
type UserFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// rowWriter is the surface shared by the CSV, Excel and PDF writers
type rowWriter interface {
	WriteHeader(columns []string) error
	WriteRow(row []interface{}) error
}

type Service struct {
	repo   Repository
	finder UserFinder
	logger *zap.Logger
}

func NewService(repo Repository, finder UserFinder, logger *zap.Logger) *Service {
	return &Service{repo: repo, finder: finder, logger: logger}
}

// Dashboard assembles the aggregate counts and technician workloads
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	now := time.Now()

	projectCounts, err := s.repo.CountProjectsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting projects: %w", err)
	}
	overdueProjects, err := s.repo.CountOverdueProjects(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("counting overdue projects: %w", err)
	}
	taskCounts, err := s.repo.CountTasksByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	overdueTasks, err := s.repo.CountOverdueTasks(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("counting overdue tasks: %w", err)
	}
	workloads, err := s.repo.TechnicienWorkloads(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading technician workloads: %w", err)
	}
	for i := range workloads {
		workloads[i].WorkloadPercentage = metrics.WorkloadPercentage(int(workloads[i].ActiveTasks))
	}

	return &DashboardStats{
		Projects: ProjectStats{
			Total:    sumCounts(projectCounts),
			ByStatus: projectCounts,
			Overdue:  overdueProjects,
		},
		Tasks: TaskStats{
			Total:    sumCounts(taskCounts),
			ByStatus: taskCounts,
			Overdue:  overdueTasks,
		},
		Workloads:   workloads,
		GeneratedAt: now,
	}, nil
}

// TechnicienStats returns the assignment history and current workload of
// one technician
func (s *Service) TechnicienStats(ctx context.Context, technicienID uuid.UUID) (*TechnicienStats, error) {
	user, err := s.finder.GetByID(ctx, technicienID)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	if user == nil {
		return nil, apperrors.NotFoundf("user %s not found", technicienID)
	}
	if user.Role != users.RoleTechnicien {
		return nil, apperrors.Validationf("user %s is not a technicien", technicienID)
	}

	assigned, active, completed, err := s.repo.CountTasksForTechnicien(ctx, technicienID)
	if err != nil {
		return nil, fmt.Errorf("counting technician tasks: %w", err)
	}

	return &TechnicienStats{
		TechnicienID:       technicienID,
		AssignedTasks:      assigned,
		ActiveTasks:        active,
		CompletedTasks:     completed,
		WorkloadPercentage: metrics.WorkloadPercentage(int(active)),
	}, nil
}

// ExportProjects writes the project summary in the requested format
func (s *Service) ExportProjects(ctx context.Context, format string, w io.Writer) error {
	rows, err := s.repo.ProjectExportRows(ctx)
	if err != nil {
		return fmt.Errorf("loading export rows: %w", err)
	}

	switch format {
	case FormatCSV:
		writer := export.NewCSVWriter(w)
		if err := writeRows(writer, rows); err != nil {
			return err
		}
		return writer.Flush()
	case FormatExcel:
		writer := export.NewExcelWriter("Projects")
		if err := writeRows(writer, rows); err != nil {
			return err
		}
		return writer.WriteTo(w)
	case FormatPDF:
		writer := export.NewPDFWriter("Project Summary")
		if err := writeRows(writer, rows); err != nil {
			return err
		}
		return writer.WriteTo(w)
	default:
		return apperrors.Validationf("unsupported export format %q", format)
	}
}

func writeRows(w rowWriter, rows []ProjectExportRow) error {
	if err := w.WriteHeader(exportColumns); err != nil {
		return err
	}
	for _, row := range rows {
		record := []interface{}{
			row.Name, row.Status, row.ClientName, row.TopographeName,
			row.StartDate, row.EndDate, row.TaskCount, row.CompletedTasks,
		}
		if err := w.WriteRow(record); err != nil {
			return err
		}
	}
	return nil
}

func sumCounts(counts map[string]int64) int64 {
	var total int64
	for _, c := range counts {
		total += c
	}
	return total
}
