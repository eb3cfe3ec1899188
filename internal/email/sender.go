package email

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/accountsd/internal/observability/logger"
)

// Sender entrega un mensaje ya renderizado.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// SMTPConfig agrupa los parámetros del relay SMTP.
type SMTPConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	User               string `yaml:"user"`
	Pass               string `yaml:"pass"`
	TLSMode            string `yaml:"tls_mode"` // auto | starttls | ssl | none
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	cfg  SMTPConfig
	from string
	dial func(d *mail.Dialer, m ...*mail.Message) error
}

func NewSMTPSender(cfg SMTPConfig, from string) *SMTPSender {
	if cfg.TLSMode == "" {
		cfg.TLSMode = "auto"
	}
	return &SMTPSender{
		cfg:  cfg,
		from: from,
		dial: func(d *mail.Dialer, m ...*mail.Message) error { return d.DialAndSend(m...) },
	}
}

func (s *SMTPSender) message(to, subject, htmlBody, textBody string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	switch {
	case textBody != "" && htmlBody != "":
		m.SetBody("text/plain", textBody)
		m.AddAlternative("text/html", htmlBody)
	case htmlBody != "":
		m.SetBody("text/html", htmlBody)
	default:
		m.SetBody("text/plain", textBody)
	}
	return m
}

func (s *SMTPSender) dialer() *mail.Dialer {
	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Pass)
	d.TLSConfig = &tls.Config{ServerName: s.cfg.Host, InsecureSkipVerify: s.cfg.InsecureSkipVerify}
	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: s.cfg.InsecureSkipVerify}
	}
	return d
}

func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	log := logger.L().With(
		logger.Component("smtp"),
		logger.String("host", s.cfg.Host),
		logger.Int("port", s.cfg.Port),
	)
	if err := s.dial(s.dialer(), s.message(to, subject, htmlBody, textBody)); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Debug("email sent", logger.String("subject", subject))
	return nil
}

// LogSender no envía nada; registra destinatario y asunto. Solo para dev.
type LogSender struct{}

func (LogSender) Send(to, subject, _, _ string) error {
	logger.L().Info("email suppressed (log sender)",
		logger.Component("email"), logger.Email(to), logger.String("subject", subject))
	return nil
}
