package mail

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/resend/resend-go/v2"

	"github.com/voicecanvas/voicecanvas/internal/pkg/env"
)

// Mailer delivers transactional emails. The token flows only need fire and
// forget delivery; callers treat a send failure as non-fatal and log it.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// ResendMailer delivers mail through the Resend API.
type ResendMailer struct {
	client *resend.Client
	sender string
}

// NewResendMailer builds a mailer from RESEND_API_KEY and MAIL_SENDER.
func NewResendMailer() (*ResendMailer, error) {
	apiKey := env.GetEnv("RESEND_API_KEY", "")
	if apiKey == "" {
		return nil, errors.New("mail: RESEND_API_KEY not set")
	}

	sender := env.GetEnv("MAIL_SENDER", "")
	if sender == "" {
		sender = "VoiceCanvas <no-reply@localhost>"
		log.Warnf("[Mail] MAIL_SENDER not set, using default sender: %s", sender)
	}

	return &ResendMailer{client: resend.NewClient(apiKey), sender: sender}, nil
}

func (m *ResendMailer) Send(to, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    m.sender,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	sent, err := m.client.Emails.Send(params)
	if err != nil {
		log.Errorf("[Mail] Send to %s failed: %v", to, err)
		return fmt.Errorf("mail: send failed: %w", err)
	}
	log.Infof("[Mail] Email %s sent to %s", sent.Id, to)
	return nil
}

// LogMailer writes the mail to the application log instead of delivering it.
// Used when no mail provider is configured, so token links still reach the
// operator during local development.
type LogMailer struct{}

func (LogMailer) Send(to, subject, htmlBody string) error {
	log.Infof("[Mail] (log only) to=%s subject=%q body=%s", to, subject, htmlBody)
	return nil
}

// NewMailerFromEnv returns the Resend mailer when configured and the log
// fallback otherwise.
func NewMailerFromEnv() Mailer {
	mailer, err := NewResendMailer()
	if err != nil {
		log.Warnf("[Mail] %v, falling back to log delivery", err)
		return LogMailer{}
	}
	return mailer
}
