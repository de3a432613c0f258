package repository

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrtime.service/internal/core/model"
)

// CheckinRepository contract
type CheckinRepository interface {
	GetBetween(ctx context.Context, employeeID string, from, to time.Time) (model.CheckinList, error)
	Create(ctx context.Context, event model.CheckinEvent) error
}

// PostgresCheckinRepository is the concrete implementation for a PostgreSQL database.
type PostgresCheckinRepository struct {
	DB *sql.DB
}

// NewCheckinRepository create new instance
func NewCheckinRepository(db *sql.DB) CheckinRepository {
	return &PostgresCheckinRepository{DB: db}
}

// GetBetween returns the events of an employee in [from, to), oldest first.
func (r *PostgresCheckinRepository) GetBetween(ctx context.Context, employeeID string, from, to time.Time) (model.CheckinList, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employee_id", employeeID))

	query := `SELECT id, employee_id, log_type, is_break, time
              FROM employee_checkins
              WHERE employee_id = $1 AND time >= $2 AND time < $3
              ORDER BY time ASC`

	rows, err := r.DB.QueryContext(ctx, query, employeeID, from, to)
	if err != nil {
		return model.CheckinList{}, err
	}
	defer rows.Close()

	var list model.CheckinList
	for rows.Next() {
		var e model.CheckinEvent
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.LogType, &e.IsBreak, &e.Time); err != nil {
			return model.CheckinList{}, err
		}
		list.Events = append(list.Events, e)
	}
	return list, rows.Err()
}

// Create stores a new check-in event.
func (r *PostgresCheckinRepository) Create(ctx context.Context, event model.CheckinEvent) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employee_id", event.EmployeeID))

	query := `INSERT INTO employee_checkins (id, employee_id, log_type, is_break, time)
              VALUES ($1, $2, $3, $4, $5)`

	_, err := r.DB.ExecContext(ctx, query, event.ID, event.EmployeeID, event.LogType, event.IsBreak, event.Time)
	return err
}
