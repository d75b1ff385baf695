// internal/notify/notifier.go

// Package notify alerts the lead reviewer when the pipeline flags a
// submission as possible spam.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	commonaws "lead-capture-workers/internal/common/aws"
	"lead-capture-workers/internal/common/config"
	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/common/logger"
	"lead-capture-workers/internal/models"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Notifier struct {
	cfg       config.NotificationConfig
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewNotifier(ctx context.Context, cfg config.NotificationConfig, region string, log logger.Logger) (*Notifier, error) {
	sesClient, err := commonaws.NewSESClient(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("init SES client: %w", err)
	}
	snsClient, err := commonaws.NewSNSClient(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("init SNS client: %w", err)
	}

	return &Notifier{
		cfg:       cfg,
		logger:    log,
		sesClient: sesClient,
		snsClient: snsClient,
	}, nil
}

// NewNotifierWithClients injects the AWS clients directly. Tests only.
func NewNotifierWithClients(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{cfg: cfg, logger: log, sesClient: sesClient, snsClient: snsClient}
}

// SpamAlert notifies the reviewer about a record flagged as possible spam.
// Email and SMS channels are independently gated; a channel that is enabled
// but fails makes the whole alert fail so the caller can decide how loudly
// to complain.
func (n *Notifier) SpamAlert(ctx context.Context, correlationID string, record models.NormalizedLeadRecord) error {
	subject := "Possible spam lead flagged for review"
	body := fmt.Sprintf(
		"A lead was flagged as possible spam.\n\nName: %s\nEmail: %s\nSubmitted from: %s\nDetails: %s\nReasoning: %s\nReference: %s",
		record.Name, record.EmailAddress, record.SubmissionURL,
		record.LeadDetails, record.AIReasoning, correlationID,
	)

	sent := false

	if n.cfg.Email.Enabled && n.cfg.ReviewerEmail != "" {
		if err := n.sendEmail(ctx, n.cfg.ReviewerEmail, subject, body); err != nil {
			return commonerrors.NewNotificationSendFailedError(err)
		}
		sent = true
	}

	if n.cfg.SMS.Enabled && n.cfg.ReviewerPhone != "" {
		if err := n.sendSMS(ctx, n.cfg.ReviewerPhone, subject+" ("+correlationID+")"); err != nil {
			return commonerrors.NewNotificationSendFailedError(err)
		}
		sent = true
	}

	if !sent {
		n.logger.Warn("spam alert dropped, no enabled channel", map[string]interface{}{
			"correlation_id": correlationID,
		})
	}
	return nil
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.cfg.Email.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}
