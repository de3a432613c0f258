package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hrtime.service/internal/core/model"
	"hrtime.service/internal/ports/messaging"
	"hrtime.service/internal/ports/repository"
)

// EventPublisher is the output port for check-in domain events.
type EventPublisher interface {
	PublishCheckin(ctx context.Context, event messaging.CheckinRecordedEvent) error
}

type CheckInService struct {
	employees *EmployeeService
	worklogs  *WorklogService
	repo      repository.CheckinRepository
	producer  EventPublisher
	clock     Clock
}

// NewCheckInService creates a new instance of our main application service,
// wiring up the repositories and the message queue producer.
func NewCheckInService(employees *EmployeeService, worklogs *WorklogService, repo repository.CheckinRepository, p EventPublisher, clock Clock) *CheckInService {
	return &CheckInService{
		employees: employees,
		worklogs:  worklogs,
		repo:      repo,
		producer:  p,
		clock:     clock,
	}
}

// CurrentStatus derives the check-in state of the user's employee from today's events.
// A user without employee gets StateUnknown.
func (s *CheckInService) CurrentStatus(ctx context.Context, userID string) (model.CheckinStatus, error) {
	employee, err := s.employees.Current(ctx, userID)
	if errors.Is(err, ErrEmployeeNotFound) {
		return model.CheckinStatus{State: model.StateUnknown}, nil
	}
	if err != nil {
		return model.CheckinStatus{}, err
	}
	return s.statusOf(ctx, employee.ID)
}

func (s *CheckInService) statusOf(ctx context.Context, employeeID string) (model.CheckinStatus, error) {
	events, err := s.today(ctx, employeeID)
	if err != nil {
		return model.CheckinStatus{}, err
	}
	return model.CheckinStatus{
		State:    model.StateOf(events.Latest()),
		HadBreak: events.HasBreak(),
	}, nil
}

func (s *CheckInService) today(ctx context.Context, employeeID string) (model.CheckinList, error) {
	from, to := DayBounds(s.clock.Now())
	events, err := s.repo.GetBetween(ctx, employeeID, from, to)
	if err != nil {
		return model.CheckinList{}, fmt.Errorf("failed to query today's check-ins: %w", err)
	}
	return events, nil
}

// Options returns the actions the employee may take now and the preselected one.
func (s *CheckInService) Options(ctx context.Context, userID string) (model.CheckinOptions, error) {
	status, err := s.CurrentStatus(ctx, userID)
	if err != nil {
		return model.CheckinOptions{}, err
	}
	return OptionsFor(status), nil
}

// OptionsFor maps a check-in status to the offered actions.
func OptionsFor(status model.CheckinStatus) model.CheckinOptions {
	switch status.State {
	case model.StateIn:
		def := model.ActionBreak
		if status.HadBreak {
			def = model.ActionEndOfWork
		}
		return model.CheckinOptions{
			Options: []model.CheckinAction{model.ActionBreak, model.ActionEndOfWork},
			Default: def,
		}
	case model.StateOut, model.StateBreak:
		return model.CheckinOptions{
			Options: []model.CheckinAction{model.ActionStartOfWork},
			Default: model.ActionStartOfWork,
		}
	default:
		return model.CheckinOptions{
			Options: append([]model.CheckinAction(nil), model.AllActions...),
			Default: "",
		}
	}
}

// Submit records a check-in action for the user's employee. employeeID may be
// empty; when given it must be the user's employee. End of work is refused
// while the employee has no worklog for today.
func (s *CheckInService) Submit(ctx context.Context, userID, employeeID string, action model.CheckinAction) (model.Result, error) {
	if !action.Valid() {
		return model.Result{}, ErrUnknownAction
	}

	employee, err := s.employees.Current(ctx, userID)
	if err != nil {
		return model.Result{}, err
	}
	if employeeID != "" && employeeID != employee.ID {
		return model.Result{}, ErrEmployeeMismatch
	}

	logger := log.Ctx(ctx).With().Str("employee_id", employee.ID).Str("action", string(action)).Logger()

	if action.RequiresWorklog() {
		hasWorklogs, err := s.worklogs.HasWorklogsToday(ctx, employee.ID)
		if err != nil {
			return model.Result{}, err
		}
		if !hasWorklogs {
			logger.Info().Msg("Refusing end of work without worklog")
			return model.Failure(model.MsgCheckoutFailedNoWorklog), nil
		}
	}

	logType, isBreak := action.Event()
	event := model.CheckinEvent{
		ID:         uuid.NewString(),
		EmployeeID: employee.ID,
		LogType:    logType,
		IsBreak:    isBreak,
		Time:       s.clock.Now(),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return model.Result{}, fmt.Errorf("failed to create check-in record: %w", err)
	}

	// The check-in is stored; a lost event only costs the summary mail.
	if s.producer != nil {
		err = s.producer.PublishCheckin(ctx, messaging.CheckinRecordedEvent{
			CheckinID:  event.ID,
			EmployeeID: event.EmployeeID,
			Action:     string(action),
			LogType:    string(event.LogType),
			IsBreak:    event.IsBreak,
			OccurredAt: event.Time,
		})
		if err != nil {
			logger.Error().Err(err).Msg("Failed to publish check-in event")
		}
	}

	logger.Info().Msg("Check-in recorded")
	return model.Success(action.SuccessMessage()), nil
}

// RenderNavbarStatus renders the status pill of the navbar. Users without a
// flextime employee get an empty fragment.
func (s *CheckInService) RenderNavbarStatus(ctx context.Context, userID string) (string, error) {
	employee, err := s.employees.Current(ctx, userID)
	if errors.Is(err, ErrEmployeeNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !employee.IsFlextime() {
		return "", nil
	}

	status, err := s.statusOf(ctx, employee.ID)
	if err != nil {
		return "", err
	}
	return RenderStatus(status.State)
}
