package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/cliptide/backend/internal/telemetry"
)

// EmailService handles sending emails via AWS SES
type EmailService struct {
	client    *ses.Client
	fromEmail string
	fromName  string
}

// NewEmailService creates a new email service using AWS SES
func NewEmailService(region, fromEmail, fromName string) (*EmailService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &EmailService{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendOTPEmail sends a one-time verification code
func (e *EmailService) SendOTPEmail(toEmail, code string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subject := "Your ClipTide Verification Code"
	htmlBody := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<style>
				body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; }
				.container { max-width: 600px; margin: 0 auto; padding: 20px; }
				.code { font-size: 32px; letter-spacing: 8px; font-weight: bold; margin: 20px 0; }
			</style>
		</head>
		<body>
			<div class="container">
				<h1>Verify Your Email</h1>
				<p>Use this code to verify your ClipTide account. It expires in 5 minutes.</p>
				<div class="code">%s</div>
				<p>If you didn't request this code, you can safely ignore this email.</p>
				<hr>
				<p style="color: #999; font-size: 12px;">This is an automated message from ClipTide.</p>
			</div>
		</body>
		</html>
	`, code)

	textBody := fmt.Sprintf(`
Verify Your Email

Use this code to verify your ClipTide account. It expires in 5 minutes.

%s

If you didn't request this code, you can safely ignore this email.
	`, code)

	from := e.fromEmail
	if e.fromName != "" {
		from = fmt.Sprintf("%s <%s>", e.fromName, e.fromEmail)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(htmlBody),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	ctx, span := telemetry.TraceEmailCall(ctx, "send_otp", map[string]interface{}{
		"template":   "otp_verification",
		"recipients": 1,
	})
	defer span.End()

	if _, err := e.client.SendEmail(ctx, input); err != nil {
		telemetry.RecordServiceError(span, err)
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	telemetry.RecordServiceSuccess(span, nil)
	return nil
}
