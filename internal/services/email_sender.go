package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailSender defines the interface for sending transactional email
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SESEmailSender sends email through AWS SES
type SESEmailSender struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewSESEmailSender creates an SES-backed sender. Returns an error when the
// AWS config chain cannot be resolved.
func NewSESEmailSender(region, fromAddress string, logger *slog.Logger) (*SESEmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESEmailSender{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

func (s *SESEmailSender) Send(ctx context.Context, to, subject, body string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug("email sent via SES",
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}
