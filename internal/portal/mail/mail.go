// Package mail delivers account notification emails.
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/supportportal/portal/pkg/slogx"
)

// Mailer sends account emails. Implementations must be safe for concurrent use.
type Mailer interface {
	// SendNewPassword emails a freshly generated password to the given address.
	SendNewPassword(ctx context.Context, to, firstName, password string) error
}

// SMTPConfig holds the connection details for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendNewPassword(ctx context.Context, to, firstName, password string) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Get Arrays, LLC - New Password\r\n\r\n"+
			"Hello %s,\r\n\r\nYour new account password is: %s\r\n\r\nThe Support Team\r\n",
		m.cfg.From, to, firstName, password,
	)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes mail to the log instead of the wire. Used in development
// and tests where no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) SendNewPassword(ctx context.Context, to, firstName, password string) error {
	slogx.FromContext(ctx).Info("mail not configured, logging new password email",
		"to", to,
		"first_name", firstName,
	)
	return nil
}
