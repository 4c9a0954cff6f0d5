package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rifat-hossain/bidhaus/pkg/utils"
)

// SMTPSender delivers plain-text mail through a configured SMTP relay.
type SMTPSender struct {
	host string
	port string
	from string
	auth smtp.Auth
}

func NewSMTPSender() *SMTPSender {
	host := utils.GetEnv("SMTP_HOST", "localhost")
	port := utils.GetEnv("SMTP_PORT", "587")
	user := utils.GetEnv("SMTP_USER", "")
	pass := utils.GetEnv("SMTP_PASSWORD", "")
	from := utils.GetEnv("SMTP_FROM", "no-reply@bidhaus.local")

	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}

	return &SMTPSender{host: host, port: port, from: from, auth: auth}
}

func (s *SMTPSender) Send(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + strings.Join(recipients, ", "),
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, s.auth, s.from, recipients, []byte(msg))
}
