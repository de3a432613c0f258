package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"hrtime.service/internal/core"
	"hrtime.service/internal/core/model"
	"hrtime.service/internal/ports/messaging"
	"hrtime.service/internal/ports/repository"
)

// EmailProcessor sends the end of work summary for check-in events. Other
// actions are acknowledged without work. SES calls go through a circuit
// breaker so a failing mail provider is not hammered.
type EmailProcessor struct {
	emailService core.EmailService
	employees    repository.EmployeeRepository
	worklogs     repository.WorklogRepository
	cb           *gobreaker.CircuitBreaker
}

// NewProcessor sets up a new processor for handling email-related jobs.
func NewProcessor(emailService core.EmailService, employees repository.EmployeeRepository, worklogs repository.WorklogRepository) *EmailProcessor {
	settings := gobreaker.Settings{
		Name:        "SES",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is bigger then 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &EmailProcessor{
		emailService: emailService,
		employees:    employees,
		worklogs:     worklogs,
		cb:           gobreaker.NewCircuitBreaker(settings),
	}
}

// Process handles a message from the check-in queue.
func (p *EmailProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	if msg.Body == nil {
		return false, 0, errors.New("empty message body")
	}

	var event messaging.CheckinRecordedEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal check-in event")
		return false, 0, err // Do not retry on malformed message
	}

	if model.CheckinAction(event.Action) != model.ActionEndOfWork {
		return false, 0, nil
	}

	attempt := receiveCount(msg)

	employee, err := p.employees.GetByID(ctx, event.EmployeeID)
	if err != nil {
		return true, calculateBackoff(attempt), fmt.Errorf("failed to get employee from db: %w", err)
	}
	if employee == nil || employee.UserID == "" {
		log.Ctx(ctx).Warn().Str("employee_id", event.EmployeeID).Msg("No mail address for employee. Skipping.")
		return false, 0, nil
	}

	from, to := core.DayBounds(event.OccurredAt)
	worklogs, err := p.worklogs.ListBetween(ctx, event.EmployeeID, from, to)
	if err != nil {
		return true, calculateBackoff(attempt), fmt.Errorf("failed to get worklogs from db: %w", err)
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.emailService.SendCheckOutSummary(ctx, employee.UserID, event.OccurredAt, worklogs)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			log.Ctx(ctx).Warn().Msg("Circuit Breaker is OPEN; skipping SES call")
		}
		return true, calculateBackoff(attempt), err
	}

	log.Ctx(ctx).Info().Str("employee_id", event.EmployeeID).Int("worklogs", len(worklogs)).Msg("Check-out summary sent")
	return false, 0, nil
}

// receiveCount reads how often SQS delivered the message, 1 when unknown.
func receiveCount(msg types.Message) int {
	raw, ok := msg.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// calculateBackoff determines how long to wait before retrying a failed job.
// It increases the delay exponentially with each retry to avoid overwhelming a struggling service.
func calculateBackoff(retryCount int) int32 {
	backoff := int32(math.Pow(2, float64(retryCount)) * 10)
	if backoff > 3600 { // Cap at 1 hour
		return 3600
	}
	return backoff
}
