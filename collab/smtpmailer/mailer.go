// Package smtpmailer provides a Mailer delivering over SMTP with plain
// authentication.
package smtpmailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// Config holds SMTP connection settings. With empty Username/Password the
// mailer does not connect anywhere: it logs the message and reports success,
// which keeps development workflows runnable without a mail account.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer implements api.Mailer over net/smtp.
type Mailer struct {
	cfg    Config
	logger *slog.Logger

	// send is swapped in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ api.Mailer = (*Mailer)(nil)

// New creates a Mailer. A nil logger falls back to slog.Default().
func New(cfg Config, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Mailer{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// Send delivers one message to the given recipients. It returns (true, nil)
// on delivery, and also in log-only mode.
func (m *Mailer) Send(ctx context.Context, to []string, subject, body string) (bool, error) {
	if len(to) == 0 {
		return false, fmt.Errorf("no recipients")
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if m.cfg.Username == "" || m.cfg.Password == "" {
		m.logger.Info("smtp credentials not configured, logging email instead",
			"to", to, "subject", subject)
		return true, nil
	}

	msg := buildMessage(m.cfg.From, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := m.send(addr, auth, m.cfg.From, to, msg); err != nil {
		return false, err
	}
	return true, nil
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
