package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/platform/config"
)

// Mailer delivers notification emails over SMTP. Recipient addresses are
// looked up from the user record at send time.
type Mailer struct {
	cfg  config.Config
	pool *pgxpool.Pool
}

func NewMailer(cfg config.Config, pool *pgxpool.Pool) *Mailer {
	return &Mailer{cfg: cfg, pool: pool}
}

func (m *Mailer) Send(ctx context.Context, userID, subject, body string) error {
	if !m.cfg.EmailEnabled {
		return nil
	}

	var to string
	if err := m.pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&to); err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		m.cfg.EmailFrom, to, subject, body))

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	if m.cfg.SMTPUseTLS {
		return m.sendTLS(addr, to, msg)
	}

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}
	return smtp.SendMail(addr, auth, m.cfg.EmailFrom, []string{to}, msg)
}

func (m *Mailer) sendTLS(addr, to string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: m.cfg.SMTPHost}); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	if m.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(m.cfg.EmailFrom); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write(msg); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return client.Quit()
}
