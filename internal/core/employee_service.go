package core

import (
	"context"
	"fmt"

	"hrtime.service/internal/core/model"
	"hrtime.service/internal/ports/repository"
)

type EmployeeService struct {
	repo repository.EmployeeRepository
}

func NewEmployeeService(repo repository.EmployeeRepository) *EmployeeService {
	return &EmployeeService{repo: repo}
}

// Current returns the employee linked to the user, ErrEmployeeNotFound if there is none.
func (s *EmployeeService) Current(ctx context.Context, userID string) (*model.Employee, error) {
	if userID == "" {
		return nil, ErrEmployeeNotFound
	}

	employee, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee: %w", err)
	}
	if employee == nil {
		return nil, ErrEmployeeNotFound
	}
	return employee, nil
}

// CurrentEmployeeID returns the id of the employee linked to the user.
func (s *EmployeeService) CurrentEmployeeID(ctx context.Context, userID string) (string, error) {
	employee, err := s.Current(ctx, userID)
	if err != nil {
		return "", err
	}
	return employee.ID, nil
}
