// Package mail delivers transactional email: verification codes and
// password reset tokens.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/shahramhal/ai-career-coach/internal/config"
)

// Mailer sends a single message to one recipient.
type Mailer interface {
	Send(to, subject, body string) error
}

// New returns an SMTP mailer when delivery is configured, otherwise a mailer
// that logs outbound messages. The log fallback keeps local development and
// tests working without an SMTP server.
func New(cfg *config.SMTPConfig, log *zap.Logger) Mailer {
	if cfg.Enabled() {
		return &SMTPMailer{cfg: cfg}
	}
	return &LogMailer{log: log}
}

// SMTPMailer sends mail through a plain SMTP submission endpoint.
type SMTPMailer struct {
	cfg *config.SMTPConfig
}

// Send delivers one message.
func (m *SMTPMailer) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer logs outbound mail instead of sending it.
type LogMailer struct {
	log *zap.Logger
}

// Send logs the message.
func (m *LogMailer) Send(to, subject, body string) error {
	m.log.Info("outbound mail (smtp not configured)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

// VerificationSubject and body template for email verification.
const VerificationSubject = "Verify your email address"

// VerificationBody renders the verification email.
func VerificationBody(name, code string) string {
	return fmt.Sprintf("Hi %s,\n\nYour verification code is: %s\n\nIt expires in 15 minutes.\n", name, code)
}

// ResetSubject and body template for password resets.
const ResetSubject = "Reset your password"

// ResetBody renders the password reset email.
func ResetBody(name, token string) string {
	return fmt.Sprintf("Hi %s,\n\nUse this token to reset your password: %s\n\nIt expires in 30 minutes. If you did not request a reset, ignore this email.\n", name, token)
}
