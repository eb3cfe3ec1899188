package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/observability/logger"
)

var (
	ErrInvalidInput   = errors.New("email: invalid input")
	ErrTemplateRender = errors.New("email: template render failed")
)

// SendResult identifica el mensaje enviado.
type SendResult struct {
	MessageID string
}

// WelcomeMessage lleva la password en claro; se envía una sola vez y no se loguea.
type WelcomeMessage struct {
	To          string
	DisplayName string
	Username    string
	Password    string
	TenantClass domain.TenantClass
}

type ResetMessage struct {
	To          string
	Link        string
	TTL         time.Duration
	TenantClass domain.TenantClass
}

// Config del servicio de email.
type Config struct {
	AppName     string
	FrontendURL string
}

// Service renderiza y envía. Seguro para uso concurrente.
type Service struct {
	sender    Sender
	templates *Templates
	cfg       Config
	newID     func() string
}

func NewService(sender Sender, templates *Templates, cfg Config) *Service {
	if cfg.AppName == "" {
		cfg.AppName = "Espace client"
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &Service{sender: sender, templates: templates, cfg: cfg, newID: uuid.NewString}
}

type welcomeVars struct {
	AppName     string
	DisplayName string
	Username    string
	Password    string
	LoginURL    string
}

type resetVars struct {
	AppName string
	Link    string
	TTL     string
}

func (s *Service) SendWelcome(ctx context.Context, m WelcomeMessage) (SendResult, error) {
	if m.To == "" || m.Username == "" {
		return SendResult{}, ErrInvalidInput
	}
	return s.send(ctx, "SendWelcome", m.To, WelcomeKind(m.TenantClass), welcomeVars{
		AppName:     s.cfg.AppName,
		DisplayName: m.DisplayName,
		Username:    m.Username,
		Password:    m.Password,
		LoginURL:    s.cfg.FrontendURL + m.TenantClass.LoginPath(),
	})
}

func (s *Service) SendPasswordReset(ctx context.Context, m ResetMessage) (SendResult, error) {
	if m.To == "" || m.Link == "" {
		return SendResult{}, ErrInvalidInput
	}
	return s.send(ctx, "SendPasswordReset", m.To, KindPasswordReset, resetVars{
		AppName: s.cfg.AppName,
		Link:    m.Link,
		TTL:     formatDuration(m.TTL),
	})
}

func (s *Service) send(ctx context.Context, op, to, kind string, vars any) (SendResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("email"), logger.Op(op))

	subject, html, text, err := s.templates.Render(kind, vars)
	if err != nil {
		log.Error("render failed", logger.String("kind", kind), logger.Err(err))
		return SendResult{}, err
	}
	if err := s.sender.Send(to, subject, html, text); err != nil {
		return SendResult{}, fmt.Errorf("send %s: %w", kind, err)
	}
	res := SendResult{MessageID: s.newID()}
	log.Info("email sent", logger.String("kind", kind), logger.MessageID(res.MessageID))
	return res, nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d >= 24*time.Hour:
		days := int(d.Hours()) / 24
		if days == 1 {
			return "1 jour"
		}
		return fmt.Sprintf("%d jours", days)
	case d >= time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 heure"
		}
		return fmt.Sprintf("%d heures", h)
	}
	m := int(d.Minutes())
	if m <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
