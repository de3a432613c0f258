package core

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"

	"hrtime.service/internal/core/model"
	"hrtime.service/internal/ports/repository"
)

type WorklogService struct {
	repo      repository.WorklogRepository
	clock     Clock
	sanitizer *bluemonday.Policy
}

func NewWorklogService(repo repository.WorklogRepository, clock Clock) *WorklogService {
	return &WorklogService{
		repo:      repo,
		clock:     clock,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// HasWorklogsToday reports whether the employee logged any work today.
func (s *WorklogService) HasWorklogsToday(ctx context.Context, employeeID string) (bool, error) {
	count, err := s.CountToday(ctx, employeeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountToday counts the worklogs the employee created today.
func (s *WorklogService) CountToday(ctx context.Context, employeeID string) (int, error) {
	from, to := DayBounds(s.clock.Now())
	count, err := s.repo.CountBetween(ctx, employeeID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to count worklogs: %w", err)
	}
	return count, nil
}

// Create stores a worklog for the employee at the current time. Validation and
// storage problems are reported in the result so the caller can show them.
func (s *WorklogService) Create(ctx context.Context, employeeID, text string, task *string) model.Result {
	if strings.TrimSpace(employeeID) == "" {
		return model.Failure(model.MsgEmployeeIDNotFound)
	}

	desc := s.plainText(text)
	if desc == "" {
		return model.Failure(model.MsgEmptyTaskDesc)
	}

	worklog := model.Worklog{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		LogTime:    s.clock.Now(),
		TaskDesc:   desc,
		Task:       task,
	}
	if err := s.repo.Create(ctx, worklog); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("employee_id", employeeID).Msg("Failed to store worklog")
		return model.Failure(model.MsgWorklogCreateFailed)
	}

	log.Ctx(ctx).Info().Str("employee_id", employeeID).Str("worklog_id", worklog.ID).Msg("Worklog created")
	return model.Success(model.MsgWorklogCreated)
}

// plainText strips markup from user input and trims it.
func (s *WorklogService) plainText(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}
