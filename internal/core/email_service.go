package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrtime.service/internal/core/model"
	"hrtime.service/pkg/telemetry"
)

type EmailService interface {
	SendCheckOutSummary(ctx context.Context, to string, clockOut time.Time, worklogs []model.Worklog) error
}

// SESClient is the part of the SES client the email service uses.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESEmailService struct {
	client SESClient
	sender string
}

func NewSESEmailService(client SESClient, sender string) *SESEmailService {
	return &SESEmailService{client: client, sender: sender}
}

func (s *SESEmailService) SendCheckOutSummary(ctx context.Context, to string, clockOut time.Time, worklogs []model.Worklog) error {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if empID := telemetry.GetEmployeeIDFromContext(ctx); empID != "" {
		span.SetAttributes(attribute.String("app.employeeId", empID))
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Work Day Summary"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(CheckOutSummary(clockOut, worklogs)),
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}

// CheckOutSummary is the plain text body of the end of work mail.
func CheckOutSummary(clockOut time.Time, worklogs []model.Worklog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello,\n\nYou checked out for end of work at %s.\n", FormatTimeAmPm(clockOut))
	fmt.Fprintf(&b, "Worklogs today: %d\n", len(worklogs))
	for _, w := range worklogs {
		fmt.Fprintf(&b, "  - %s %s\n", FormatTimeAmPm(w.LogTime), w.TaskDesc)
	}
	return b.String()
}
