package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"golang.org/x/time/rate"

	"github.com/jeeva2692001/mindkonnect/internal/config"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	limiter  *rate.Limiter
	send     sendFunc
}

// NewMailer returns an SMTP mailer throttled to cfg.SMTPSendRate messages per
// second with bursts of cfg.SMTPSendBurst.
func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		limiter:  rate.NewLimiter(rate.Limit(cfg.SMTPSendRate), cfg.SMTPSendBurst),
		send:     smtp.SendMail,
	}
}

func (m *mailer) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail throttle: %w", err)
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("invalid header value")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return m.send(addr, auth, m.from, []string{to}, []byte(b.String()))
}
