package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/danevairena/Bookstore/config"
)

// Email is a single outgoing message with a plain text and an HTML body.
type Email struct {
	From    string
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SendGridMailer delivers mail through the SendGrid API.
type SendGridMailer struct {
	client *sendgrid.Client
	log    *logrus.Logger
}

func NewSendGridMailer(apiKey string, log *logrus.Logger) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), log: log}
}

func (m *SendGridMailer) Send(ctx context.Context, email Email) error {
	from := sgmail.NewEmail("Bookstore", email.From)
	to := sgmail.NewEmail(email.ToName, email.To)
	message := sgmail.NewSingleEmail(from, email.Subject, to, email.Text, email.HTML)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("send email: sendgrid returned %d: %s", response.StatusCode, response.Body)
	}

	m.log.WithFields(logrus.Fields{
		"to":     email.To,
		"status": response.StatusCode,
	}).Info("Email sent")
	return nil
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	log *logrus.Logger
}

func NewLogMailer(log *logrus.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.log.WithFields(logrus.Fields{
		"from":    email.From,
		"to":      email.To,
		"subject": email.Subject,
	}).Info(email.Text)
	return nil
}

// New picks SendGrid when an API key is configured and the log mailer
// otherwise.
func New(cfg *config.Config, log *logrus.Logger) Mailer {
	if cfg.MailAPIKey == "" {
		log.Info("MAIL_API_KEY not set, emails will only be logged")
		return NewLogMailer(log)
	}
	return NewSendGridMailer(cfg.MailAPIKey, log)
}
