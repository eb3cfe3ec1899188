package email

import (
	"context"
	"errors"
	"testing"
	"time"

	mail "github.com/go-mail/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/accountsd/internal/domain"
)

type captured struct {
	to, subject, html, text string
}

type recordingSender struct {
	sent []captured
	err  error
}

func (r *recordingSender) Send(to, subject, html, text string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, captured{to, subject, html, text})
	return nil
}

func newTestService(t *testing.T, s Sender) *Service {
	t.Helper()
	tpl, err := LoadTemplates()
	require.NoError(t, err)
	svc := NewService(s, tpl, Config{AppName: "Acme", FrontendURL: "https://app.example.com/"})
	svc.newID = func() string { return "msg-1" }
	return svc
}

func TestSendWelcomePerClass(t *testing.T) {
	rs := &recordingSender{}
	svc := newTestService(t, rs)

	res, err := svc.SendWelcome(context.Background(), WelcomeMessage{
		To: "bob@x.com", DisplayName: "Bob", Username: "bob@x.com", Password: "Temp1234", TenantClass: domain.Staff,
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", res.MessageID)

	require.Len(t, rs.sent, 1)
	got := rs.sent[0]
	assert.Equal(t, "bob@x.com", got.to)
	assert.Equal(t, subjects[KindWelcomeStaff], got.subject)
	assert.Contains(t, got.text, "Temp1234")
	assert.Contains(t, got.html, "https://app.example.com/internal")
}

func TestSendPasswordReset(t *testing.T) {
	rs := &recordingSender{}
	svc := newTestService(t, rs)

	_, err := svc.SendPasswordReset(context.Background(), ResetMessage{
		To: "a@x.com", Link: "https://app.example.com/reset-password?token=abc", TTL: time.Hour,
	})
	require.NoError(t, err)
	require.Len(t, rs.sent, 1)
	assert.Contains(t, rs.sent[0].text, "token=abc")
	assert.Contains(t, rs.sent[0].text, "1 heure")
}

func TestSendErrors(t *testing.T) {
	svc := newTestService(t, &recordingSender{err: errors.New("relay down")})

	_, err := svc.SendPasswordReset(context.Background(), ResetMessage{To: "a@x.com", Link: "l"})
	assert.ErrorContains(t, err, "relay down")

	_, err = svc.SendWelcome(context.Background(), WelcomeMessage{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSMTPSenderBuildsMultipart(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 465, TLSMode: "ssl"}, "no-reply@example.com")
	var got *mail.Message
	var ssl bool
	s.dial = func(d *mail.Dialer, m ...*mail.Message) error {
		ssl = d.SSL
		got = m[0]
		return nil
	}

	require.NoError(t, s.Send("a@x.com", "hi", "<b>hi</b>", "hi"))
	assert.True(t, ssl)
	assert.Equal(t, []string{"a@x.com"}, got.GetHeader("To"))
	assert.Equal(t, []string{"no-reply@example.com"}, got.GetHeader("From"))

	s.dial = func(*mail.Dialer, ...*mail.Message) error { return errors.New("refused") }
	assert.ErrorContains(t, s.Send("a@x.com", "hi", "", "hi"), "smtp send")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "", formatDuration(0))
	assert.Equal(t, "30 minutes", formatDuration(30*time.Minute))
	assert.Equal(t, "2 heures", formatDuration(2*time.Hour))
	assert.Equal(t, "1 jour", formatDuration(24*time.Hour))
}
