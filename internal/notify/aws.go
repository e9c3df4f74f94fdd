// internal/notify/aws.go
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	commonerrors "talent-pipeline/internal/common/errors"
	"talent-pipeline/internal/common/logger"
	"talent-pipeline/internal/common/metrics"
)

// Interfaces over the AWS clients so tests can mock delivery.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	AWSRegion    string
}

// AWSDispatcher delivers status-change notifications by email (SES) and, for
// terminal decisions, by SMS (SNS).
type AWSDispatcher struct {
	config    Config
	directory ContactDirectory
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewAWSDispatcher(ctx context.Context, config Config, directory ContactDirectory, log logger.Logger) (*AWSDispatcher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &AWSDispatcher{
		config:    config,
		directory: directory,
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
		logger:    log.WithFields(map[string]interface{}{"component": "aws-dispatcher"}),
	}, nil
}

// NewAWSDispatcherWithClients wires explicit SES/SNS implementations (tests).
func NewAWSDispatcherWithClients(config Config, directory ContactDirectory, sesClient SESService, snsClient SNSService, log logger.Logger) *AWSDispatcher {
	return &AWSDispatcher{
		config:    config,
		directory: directory,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"component": "aws-dispatcher"}),
	}
}

func (d *AWSDispatcher) NotifyStatusChange(ctx context.Context, change StatusChange) error {
	notificationID := uuid.New().String()

	contact, err := d.directory.Contact(ctx, change.CandidateID)
	if err != nil {
		d.logger.Warn("recipient not found, skipping notification", map[string]interface{}{
			"candidateId":    change.CandidateID,
			"applicationId":  change.ApplicationID,
			"notificationId": notificationID,
		})
		return nil
	}

	subject := fmt.Sprintf("Application update: %s", change.NewStatus)
	body := fmt.Sprintf("Your application status changed from %s to %s.\n\n%s",
		change.OldStatus, change.NewStatus, change.Message)

	if d.config.EmailEnabled && contact.Email != "" {
		if err := d.sendEmail(ctx, contact.Email, subject, body); err != nil {
			metrics.NotificationsFailed.WithLabelValues("email").Inc()
			return commonerrors.NewNotificationSendFailedError("email", err)
		}
		metrics.NotificationsSent.WithLabelValues("email").Inc()
	}

	// SMS only for terminal decisions; stage-guidance changes stay email-only.
	if d.config.SMSEnabled && contact.Phone != "" && change.NewStatus.Terminal() {
		if err := d.sendSMS(ctx, contact.Phone, body); err != nil {
			metrics.NotificationsFailed.WithLabelValues("sms").Inc()
			return commonerrors.NewNotificationSendFailedError("sms", err)
		}
		metrics.NotificationsSent.WithLabelValues("sms").Inc()
	}

	d.logger.Info("status change notification dispatched", map[string]interface{}{
		"notificationId": notificationID,
		"applicationId":  change.ApplicationID,
		"oldStatus":      string(change.OldStatus),
		"newStatus":      string(change.NewStatus),
	})
	return nil
}

func (d *AWSDispatcher) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := d.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(d.config.FromEmail),
	})
	return err
}

func (d *AWSDispatcher) sendSMS(ctx context.Context, to, message string) error {
	_, err := d.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

var _ Dispatcher = (*AWSDispatcher)(nil)

// NoopDispatcher drops every notification. Used when delivery is disabled.
type NoopDispatcher struct{}

func (NoopDispatcher) NotifyStatusChange(ctx context.Context, change StatusChange) error {
	return nil
}
