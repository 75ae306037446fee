package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/pribylovaa/paleta/internal/models"
)

// SMTPConfig — параметры почтового сервера.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP отправляет коды по e-mail. smtp.SendMail сам поднимает STARTTLS,
// если сервер его объявляет.
type SMTP struct {
	cfg      SMTPConfig
	auth     smtp.Auth
	sendMail sendMailFunc
}

// NewSMTP создаёт отправителя. Без пользователя аутентификация не выполняется.
func NewSMTP(cfg SMTPConfig) *SMTP {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}

	return &SMTP{cfg: cfg, auth: auth, sendMail: smtp.SendMail}
}

// Send отправляет письмо с кодом.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	const op = "notify.SMTP.Send"

	if msg.Channel != models.ChannelEmail {
		return fmt.Errorf("%s: %w: %s", op, ErrUnsupportedChannel, msg.Channel)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Заголовки не должны принимать переводы строк из адреса.
	if strings.ContainsAny(msg.Destination, "\r\n") {
		return fmt.Errorf("%s: invalid destination", op)
	}

	body := buildMessage(s.cfg.From, msg.Destination, msg.Code)
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)

	if err := s.sendMail(addr, s.auth, s.cfg.From, []string{msg.Destination}, body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func buildMessage(from, to, code string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: Paleta password reset code\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString("Your password reset code: " + code + "\r\n")
	b.WriteString("If you did not request it, ignore this message.\r\n")

	return []byte(b.String())
}
