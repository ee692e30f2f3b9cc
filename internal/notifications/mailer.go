package notifications

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"eventbook/internal/shared/config"
	"eventbook/pkg/logger"
)

// Mailer delivers one notification to its recipient.
type Mailer interface {
	Send(ctx context.Context, n *BookingNotification) error
}

// NewMailer returns an SMTP mailer when a host is configured, otherwise a
// mailer that only logs.
func NewMailer(cfg config.EmailConfig, log *logger.Logger) Mailer {
	if cfg.SMTPHost == "" {
		return &LogMailer{log: log}
	}
	return &SMTPMailer{cfg: cfg, log: log}
}

// LogMailer writes notifications to the log instead of sending them.
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, n *BookingNotification) error {
	l := m.log
	if l == nil {
		l = logger.GetDefault()
	}
	l.InfoContext(ctx, "booking notification",
		slog.String("type", string(n.Type)),
		slog.String("to", n.RecipientEmail),
		slog.String("subject", n.Subject()),
	)
	return nil
}

// SMTPMailer sends plain-text mail over STARTTLS.
type SMTPMailer struct {
	cfg config.EmailConfig
	log *logger.Logger
}

func (m *SMTPMailer) Send(ctx context.Context, n *BookingNotification) error {
	if n.RecipientEmail == "" {
		return fmt.Errorf("notification %s has no recipient", n.ID)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	if err := client.StartTLS(&tls.Config{ServerName: m.cfg.SMTPHost}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if m.cfg.SMTPUsername != "" {
		auth := smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}
	if err := client.Mail(m.cfg.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(n.RecipientEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(buildMessage(m.cfg.FromEmail, n)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	if m.log != nil {
		m.log.InfoContext(ctx, "notification mailed", slog.String("to", n.RecipientEmail), slog.String("type", string(n.Type)))
	}
	return nil
}

func buildMessage(from string, n *BookingNotification) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + n.RecipientEmail + "\r\n")
	b.WriteString("Subject: " + n.Subject() + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(n.TextBody())
	return []byte(b.String())
}
