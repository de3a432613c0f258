package core

import (
	"context"
	"fmt"

	"hrtime.service/internal/core/model"
	"hrtime.service/internal/ports/repository"
)

// ReportService builds the "Employees present" report.
type ReportService struct {
	employees repository.EmployeeRepository
	checkins  repository.CheckinRepository
	clock     Clock
}

func NewReportService(employees repository.EmployeeRepository, checkins repository.CheckinRepository, clock Clock) *ReportService {
	return &ReportService{employees: employees, checkins: checkins, clock: clock}
}

// Present lists flextime employees that are working or on a break right now.
// A non-empty filter keeps only rows with that state.
func (s *ReportService) Present(ctx context.Context, filter model.State) ([]model.PresentEmployee, error) {
	employees, err := s.employees.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	from, to := DayBounds(s.clock.Now())
	rows := []model.PresentEmployee{}

	for _, employee := range employees {
		if !employee.IsFlextime() {
			continue
		}

		events, err := s.checkins.GetBetween(ctx, employee.ID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to query check-ins of %s: %w", employee.ID, err)
		}

		latest := events.Latest()
		if latest == nil {
			continue
		}

		state := model.StateOf(latest)
		if state == model.StateOut {
			continue
		}
		if filter != "" && state != filter {
			continue
		}

		rows = append(rows, model.PresentEmployee{
			EmployeeID:     employee.ID,
			EmployeeName:   employee.FullName,
			Status:         state,
			StatusSince:    latest.Time,
			WorkStartToday: events.First().Time,
		})
	}

	return rows, nil
}

// RenderPresentCard renders the number card with the count of present employees.
func (s *ReportService) RenderPresentCard(ctx context.Context) (string, error) {
	rows, err := s.Present(ctx, "")
	if err != nil {
		return "", err
	}
	return render(presentCardTmpl, map[string]any{
		"Count":       len(rows),
		"ButtonLabel": "Show list",
	})
}
