package repository

import (
	"context"
	"database/sql"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrtime.service/internal/core/model"
)

// EmployeeRepository contract
type EmployeeRepository interface {
	GetByUser(ctx context.Context, userID string) (*model.Employee, error)
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	GetAll(ctx context.Context) ([]model.Employee, error)
}

// PostgresEmployeeRepository reads employees from PostgreSQL.
type PostgresEmployeeRepository struct {
	DB *sql.DB
}

// NewEmployeeRepository create new instance
func NewEmployeeRepository(db *sql.DB) EmployeeRepository {
	return &PostgresEmployeeRepository{DB: db}
}

// GetByUser returns the employee linked to a user account, nil if there is none.
func (r *PostgresEmployeeRepository) GetByUser(ctx context.Context, userID string) (*model.Employee, error) {
	query := `SELECT id, user_id, full_name, time_model FROM employees WHERE user_id = $1`
	return r.getOne(ctx, query, userID)
}

// GetByID returns the employee with the given id, nil if there is none.
func (r *PostgresEmployeeRepository) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employee_id", id))

	query := `SELECT id, user_id, full_name, time_model FROM employees WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresEmployeeRepository) getOne(ctx context.Context, query string, arg string) (*model.Employee, error) {
	e := &model.Employee{}
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&e.ID, &e.UserID, &e.FullName, &e.TimeModel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetAll lists every employee ordered by id.
func (r *PostgresEmployeeRepository) GetAll(ctx context.Context) ([]model.Employee, error) {
	query := `SELECT id, user_id, full_name, time_model FROM employees ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []model.Employee
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.UserID, &e.FullName, &e.TimeModel); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}
