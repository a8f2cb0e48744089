package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	awsclients "smartfarm-backend/internal/common/aws"
	"smartfarm-backend/internal/common/config"
	"smartfarm-backend/internal/common/logger"
	"smartfarm-backend/internal/common/metrics"
	"smartfarm-backend/internal/models"
)

var ErrAlertSendFailed = errors.New("ALERT_SEND_FAILED")

// Interfaces for mocking the AWS clients.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// AlertStore records delivered alerts.
type AlertStore interface {
	CreatePestAlert(ctx context.Context, alert *models.PestAlert) error
}

// Notifier fans a pest report out to the configured channels: SES email to
// the farmer recipients and SNS publish to the ops topic. Reports below the
// certainty floor are ignored.
type Notifier struct {
	cfg       config.AlertConfig
	store     AlertStore
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func New(ctx context.Context, cfg config.AlertConfig, store AlertStore, log logger.Logger) (*Notifier, error) {
	sesClient, err := awsclients.NewSESClient(ctx, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("init SES client: %w", err)
	}
	snsClient, err := awsclients.NewSNSClient(ctx, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("init SNS client: %w", err)
	}

	return &Notifier{
		cfg:       cfg,
		store:     store,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
		sesClient: sesClient,
		snsClient: snsClient,
	}, nil
}

// NewWithClients injects the AWS services directly; used by tests.
func NewWithClients(cfg config.AlertConfig, store AlertStore, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		cfg:       cfg,
		store:     store,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

// NotifyReport sends alerts for a freshly ingested pest report. Channel
// failures are collected; a partial delivery still records the channels
// that worked.
func (n *Notifier) NotifyReport(ctx context.Context, report *models.PestReport) error {
	if !n.cfg.Enabled {
		return nil
	}
	if report.DetectionCertainty < n.cfg.MinCertainty {
		n.logger.Debug("certainty below alert floor, skipping", map[string]interface{}{
			"reportId":  report.ID,
			"certainty": report.DetectionCertainty,
		})
		return nil
	}

	var failed []error

	if len(n.cfg.Recipients) > 0 && n.cfg.Sender != "" {
		if err := n.sendEmail(ctx, report); err != nil {
			failed = append(failed, err)
		} else {
			n.recordAlert(ctx, report.ID, "email")
		}
	}

	if n.cfg.TopicARN != "" {
		if err := n.publishSNS(ctx, report); err != nil {
			failed = append(failed, err)
		} else {
			n.recordAlert(ctx, report.ID, "sms")
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w: %v", ErrAlertSendFailed, errors.Join(failed...))
	}
	return nil
}

func (n *Notifier) sendEmail(ctx context.Context, report *models.PestReport) error {
	subject := fmt.Sprintf("Pest alert: %s detected on %s", report.PestName, report.PlantName)
	body := fmt.Sprintf(
		"%s was detected on %s with %.1f%% certainty at %s.\n\nRecommendation: %s\n",
		report.PestName, report.PlantName,
		report.DetectionCertainty*100,
		report.Timestamp.Format(time.RFC3339),
		report.Recommendation,
	)

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.cfg.Sender),
		Destination: &sestypes.Destination{
			ToAddresses: n.cfg.Recipients,
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		n.logger.Error("SES send failed", map[string]interface{}{
			"reportId": report.ID,
			"error":    err.Error(),
		})
		return fmt.Errorf("ses: %w", err)
	}

	metrics.PestAlertsSent.WithLabelValues("email").Inc()
	return nil
}

func (n *Notifier) publishSNS(ctx context.Context, report *models.PestReport) error {
	message := fmt.Sprintf("Pest alert: %s on %s (%.1f%% certainty)",
		report.PestName, report.PlantName, report.DetectionCertainty*100)

	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.cfg.TopicARN),
		Message:  aws.String(message),
	})
	if err != nil {
		n.logger.Error("SNS publish failed", map[string]interface{}{
			"reportId": report.ID,
			"error":    err.Error(),
		})
		return fmt.Errorf("sns: %w", err)
	}

	metrics.PestAlertsSent.WithLabelValues("sms").Inc()
	return nil
}

func (n *Notifier) recordAlert(ctx context.Context, reportID int64, channel string) {
	alert := &models.PestAlert{
		ID:       uuid.NewString(),
		ReportID: reportID,
		Channel:  channel,
		SentAt:   time.Now().UTC(),
	}
	if err := n.store.CreatePestAlert(ctx, alert); err != nil {
		// Delivery already happened; losing the audit row is not fatal.
		n.logger.Warn("failed to record pest alert", map[string]interface{}{
			"reportId": reportID,
			"channel":  channel,
			"error":    err.Error(),
		})
	}
}
