// internal/workers/notifications_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/ammerola/library-be/internal/pkg/config"
	"github.com/hibiken/asynq"
)

// NotificationProcessor handles email notifications
type NotificationProcessor struct {
	config *config.Config
	logger *slog.Logger
}

// NewNotificationProcessor creates a new notification processor
func NewNotificationProcessor(config *config.Config, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		config: config,
		logger: logger.With(slog.String("processor", "notification")),
	}
}

// SendEmail sends email notifications
func (p *NotificationProcessor) SendEmail(ctx context.Context, t *asynq.Task) error {
	var payload EmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "sending email",
		slog.String("to", payload.To),
		slog.String("subject", payload.Subject))

	// In development, just log the email
	if p.config.App.Environment == "development" {
		p.logger.InfoContext(ctx, "email would be sent",
			slog.String("to", payload.To),
			slog.String("subject", payload.Subject),
			slog.String("body", payload.Body))
		return nil
	}

	from := p.config.Email.From
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		from, payload.To, payload.Subject, payload.Body,
	))

	addr := fmt.Sprintf("%s:%d", p.config.Email.SMTPHost, p.config.Email.SMTPPort)
	auth := smtp.PlainAuth("", p.config.Email.SMTPUser, p.config.Email.SMTPPassword, p.config.Email.SMTPHost)
	if err := smtp.SendMail(addr, auth, from, []string{payload.To}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	p.logger.InfoContext(ctx, "email sent successfully")
	return nil
}
