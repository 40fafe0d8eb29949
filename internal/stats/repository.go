package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CountProjectsByStatus(ctx context.Context) (map[string]int64, error)
	CountOverdueProjects(ctx context.Context, today time.Time) (int64, error)
	CountTasksByStatus(ctx context.Context) (map[string]int64, error)
	CountOverdueTasks(ctx context.Context, today time.Time) (int64, error)
	TechnicienWorkloads(ctx context.Context) ([]TechnicienWorkload, error)
	CountTasksForTechnicien(ctx context.Context, technicienID uuid.UUID) (assigned, active, completed int64, err error)
	ProjectExportRows(ctx context.Context) ([]ProjectExportRow, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CountProjectsByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countByStatus(ctx, "SELECT status, COUNT(*) AS count FROM projects GROUP BY status")
}

func (r *postgresRepository) CountTasksByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countByStatus(ctx, "SELECT status, COUNT(*) AS count FROM tasks GROUP BY status")
}

func (r *postgresRepository) countByStatus(ctx context.Context, query string) (map[string]int64, error) {
	var rows []statusCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *postgresRepository) CountOverdueProjects(ctx context.Context, today time.Time) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM projects
		WHERE end_date < $1
		  AND status NOT IN ('COMPLETED', 'CANCELLED')`, today)
	return count, err
}

func (r *postgresRepository) CountOverdueTasks(ctx context.Context, today time.Time) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM tasks
		WHERE due_date < $1
		  AND status <> 'COMPLETED'`, today)
	return count, err
}

func (r *postgresRepository) TechnicienWorkloads(ctx context.Context) ([]TechnicienWorkload, error) {
	query := `
		SELECT u.id AS technicien_id, u.first_name, u.last_name,
		       COUNT(t.id) FILTER (WHERE t.status = 'IN_PROGRESS') AS active_tasks
		FROM users u
		LEFT JOIN task_techniciens tt ON tt.user_id = u.id
		LEFT JOIN tasks t ON t.id = tt.task_id
		WHERE u.role = 'TECHNICIEN' AND u.is_active = true
		GROUP BY u.id, u.first_name, u.last_name
		ORDER BY active_tasks DESC, u.last_name`
	var workloads []TechnicienWorkload
	err := r.db.SelectContext(ctx, &workloads, query)
	return workloads, err
}

func (r *postgresRepository) CountTasksForTechnicien(ctx context.Context, technicienID uuid.UUID) (assigned, active, completed int64, err error) {
	query := `
		SELECT COUNT(*) AS assigned,
		       COUNT(*) FILTER (WHERE t.status = 'IN_PROGRESS') AS active,
		       COUNT(*) FILTER (WHERE t.status = 'COMPLETED') AS completed
		FROM tasks t
		JOIN task_techniciens tt ON tt.task_id = t.id
		WHERE tt.user_id = $1`
	var row struct {
		Assigned  int64 `db:"assigned"`
		Active    int64 `db:"active"`
		Completed int64 `db:"completed"`
	}
	if err := r.db.GetContext(ctx, &row, query, technicienID); err != nil {
		return 0, 0, 0, err
	}
	return row.Assigned, row.Active, row.Completed, nil
}

func (r *postgresRepository) ProjectExportRows(ctx context.Context) ([]ProjectExportRow, error) {
	query := `
		SELECT p.name, p.status,
		       c.first_name || ' ' || c.last_name AS client_name,
		       tp.first_name || ' ' || tp.last_name AS topographe_name,
		       p.start_date, p.end_date,
		       COUNT(t.id) AS task_count,
		       COUNT(t.id) FILTER (WHERE t.status = 'COMPLETED') AS completed_tasks
		FROM projects p
		JOIN users c ON c.id = p.client_id
		JOIN users tp ON tp.id = p.topographe_id
		LEFT JOIN tasks t ON t.project_id = p.id
		GROUP BY p.id, c.first_name, c.last_name, tp.first_name, tp.last_name
		ORDER BY p.created_at`
	var rows []ProjectExportRow
	err := r.db.SelectContext(ctx, &rows, query)
	return rows, err
}
