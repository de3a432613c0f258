package repository

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrtime.service/internal/core/model"
)

// WorklogRepository contract
type WorklogRepository interface {
	CountBetween(ctx context.Context, employeeID string, from, to time.Time) (int, error)
	ListBetween(ctx context.Context, employeeID string, from, to time.Time) ([]model.Worklog, error)
	Create(ctx context.Context, worklog model.Worklog) error
}

// PostgresWorklogRepository is the concrete implementation for a PostgreSQL database.
type PostgresWorklogRepository struct {
	DB *sql.DB
}

// NewWorklogRepository create new instance
func NewWorklogRepository(db *sql.DB) WorklogRepository {
	return &PostgresWorklogRepository{DB: db}
}

// CountBetween counts the worklogs of an employee with log time in [from, to).
func (r *PostgresWorklogRepository) CountBetween(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employee_id", employeeID))

	var count int
	query := `SELECT COUNT(*) FROM worklogs WHERE employee_id = $1 AND log_time >= $2 AND log_time < $3`

	err := r.DB.QueryRowContext(ctx, query, employeeID, from, to).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListBetween returns the worklogs of an employee with log time in [from, to), oldest first.
func (r *PostgresWorklogRepository) ListBetween(ctx context.Context, employeeID string, from, to time.Time) ([]model.Worklog, error) {
	query := `SELECT id, employee_id, log_time, task_desc, task
              FROM worklogs
              WHERE employee_id = $1 AND log_time >= $2 AND log_time < $3
              ORDER BY log_time ASC`

	rows, err := r.DB.QueryContext(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var worklogs []model.Worklog
	for rows.Next() {
		var w model.Worklog
		var task sql.NullString
		if err := rows.Scan(&w.ID, &w.EmployeeID, &w.LogTime, &w.TaskDesc, &task); err != nil {
			return nil, err
		}
		if task.Valid {
			w.Task = &task.String
		}
		worklogs = append(worklogs, w)
	}
	return worklogs, rows.Err()
}

// Create stores a new worklog.
func (r *PostgresWorklogRepository) Create(ctx context.Context, worklog model.Worklog) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employee_id", worklog.EmployeeID))

	query := `INSERT INTO worklogs (id, employee_id, log_time, task_desc, task)
              VALUES ($1, $2, $3, $4, $5)`

	_, err := r.DB.ExecContext(ctx, query, worklog.ID, worklog.EmployeeID, worklog.LogTime, worklog.TaskDesc, worklog.Task)
	return err
}
