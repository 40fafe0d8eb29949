package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service provides outbound email notifications. Every Send* method is
// fire-and-forget: delivery failures are logged and recorded, never
// returned, so a failed email cannot roll back the operation that
// triggered it.
type Service struct {
	db      *gorm.DB
	channel EmailChannel
	logger  *zap.Logger
}

func NewService(db *gorm.DB, channel EmailChannel, logger *zap.Logger) *Service {
	return &Service{db: db, channel: channel, logger: logger}
}

// SendWelcomeEmail greets a newly created topographe account
func (s *Service) SendWelcomeEmail(ctx context.Context, to, firstName, username string) {
	subject := "Welcome to Survey Portal"
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your surveyor account <b>%s</b> has been created. "+
			"You can now manage your clients, technicians and projects.</p>",
		firstName, username)
	s.send(ctx, to, subject, body)
}

// SendDeadlineDigest lists a topographe's overdue projects
func (s *Service) SendDeadlineDigest(ctx context.Context, to string, projectNames []string) {
	if len(projectNames) == 0 {
		return
	}
	subject := fmt.Sprintf("%d project(s) past their end date", len(projectNames))
	body := fmt.Sprintf(
		"<p>The following projects are past their planned end date and still open:</p><ul><li>%s</li></ul>",
		strings.Join(projectNames, "</li><li>"))
	s.send(ctx, to, subject, body)
}

func (s *Service) send(ctx context.Context, to, subject, body string) {
	record := SentEmail{
		Recipient: to,
		Subject:   subject,
		Body:      body,
		Provider:  s.channel.Name(),
		Status:    StatusSent,
	}

	if err := s.channel.Send(ctx, to, subject, body); err != nil {
		s.logger.Warn("email delivery failed",
			zap.String("recipient", to),
			zap.String("subject", subject),
			zap.Error(err))
		msg := err.Error()
		record.Status = StatusFailed
		record.Error = &msg
	} else {
		now := time.Now()
		record.SentAt = &now
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		s.logger.Warn("recording sent email failed", zap.Error(err))
	}
}
