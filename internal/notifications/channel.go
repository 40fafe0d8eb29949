package notifications

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"geo-survey/survey-portal/survey-portal-backend/internal/config"
)

// EmailChannel delivers a single message to a single recipient
type EmailChannel interface {
	Send(ctx context.Context, to, subject, body string) error
	Name() string
}

// NewEmailChannel picks the channel implementation from configuration
func NewEmailChannel(ctx context.Context, cfg config.EmailConfig) (EmailChannel, error) {
	switch cfg.Provider {
	case "ses":
		return newSESChannel(ctx, cfg)
	case "smtp", "":
		return newSMTPChannel(cfg), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// sesChannel sends through Amazon SES
type sesChannel struct {
	client *sesv2.Client
	from   string
}

func newSESChannel(ctx context.Context, cfg config.EmailConfig) (*sesChannel, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.SESRegion),
	}
	if cfg.SMTPUser != "" && cfg.SMTPPass != "" {
		// reuse the smtp user/pass fields as static AWS credentials when set
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SMTPUser, cfg.SMTPPass, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &sesChannel{
		client: sesv2.NewFromConfig(awsCfg),
		from:   cfg.FromAddress,
	}, nil
}

func (c *sesChannel) Name() string { return "ses" }

func (c *sesChannel) Send(ctx context.Context, to, subject, body string) error {
	_, err := c.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(c.from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Html: &sestypes.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES send failed: %w", err)
	}
	return nil
}

// smtpChannel sends through a plain SMTP relay
type smtpChannel struct {
	host string
	port int
	user string
	pass string
	from string
}

func newSMTPChannel(cfg config.EmailConfig) *smtpChannel {
	return &smtpChannel{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.FromAddress,
	}
}

func (c *smtpChannel) Name() string { return "smtp" }

func (c *smtpChannel) Send(ctx context.Context, to, subject, body string) error {
	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + c.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	var auth smtp.Auth
	if c.user != "" {
		auth = smtp.PlainAuth("", c.user, c.pass, c.host)
	}
	if err := smtp.SendMail(addr, auth, c.from, []string{to}, message); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
