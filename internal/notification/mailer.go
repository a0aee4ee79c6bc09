package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

//go:generate mockgen -source=mailer.go -destination=mock/mailer_mock.go -package=mock

type Mailer interface {
	Send(to []string, subject, body string) error
}

type smtpMailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

func NewSMTPMailer(cfg SMTPConfig, logger *zap.Logger) Mailer {
	return &smtpMailer{cfg: cfg, logger: logger.Named("notification.mailer")}
}

func (m *smtpMailer) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, to, []byte(msg)); err != nil {
		m.logger.Error("send mail failed",
			zap.Strings("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return err
	}

	m.logger.Info("mail sent", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}
