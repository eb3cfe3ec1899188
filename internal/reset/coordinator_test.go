package reset

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/accountsd/internal/captcha"
	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/email"
	"github.com/dropDatabas3/accountsd/internal/tenant"
)

type fakeDirectory struct {
	mu        sync.Mutex
	users     map[string]domain.IdentityRecord
	passwords map[string]string
	setErr    error
	// entered/release permiten frenar SetPermanentPassword a mitad de camino.
	entered chan struct{}
	release chan struct{}
}

func newFakeDirectory(emails ...string) *fakeDirectory {
	d := &fakeDirectory{users: map[string]domain.IdentityRecord{}, passwords: map[string]string{}}
	for _, e := range emails {
		d.users[e] = domain.IdentityRecord{Username: e, Email: e, Enabled: true}
	}
	return d
}

func (d *fakeDirectory) FindByEmail(_ context.Context, _ tenant.PoolConfig, addr string) (domain.IdentityRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.users[addr]
	if !ok {
		return domain.IdentityRecord{}, domain.NotFound("no identity")
	}
	return rec, nil
}

func (d *fakeDirectory) SetPermanentPassword(_ context.Context, _ tenant.PoolConfig, username, pw string) error {
	if d.entered != nil {
		d.entered <- struct{}{}
		<-d.release
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.setErr != nil {
		return d.setErr
	}
	d.passwords[username] = pw
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.ResetMessage
	err  error
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, msg email.ResetMessage) (email.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return email.SendResult{}, m.err
	}
	m.sent = append(m.sent, msg)
	return email.SendResult{MessageID: "m1"}, nil
}

type fakeVerifier struct {
	res captcha.Result
	err error
}

func (v fakeVerifier) Verify(context.Context, string, string) (captcha.Result, error) {
	return v.res, v.err
}

func testRegistry() *tenant.Registry {
	var pools []tenant.PoolConfig
	for _, c := range domain.TenantClasses() {
		pools = append(pools, tenant.PoolConfig{Class: c, PoolID: "pool-" + string(c), ClientID: "cid", ClientSecret: "sec"})
	}
	return tenant.NewRegistry(pools...)
}

type harness struct {
	clock  *fakeClock
	store  *MemoryStore
	dir    *fakeDirectory
	mailer *fakeMailer
	coord  *Coordinator
}

func newHarness(verifier HumanVerifier, emails ...string) *harness {
	h := &harness{clock: newFakeClock(), dir: newFakeDirectory(emails...), mailer: &fakeMailer{}}
	h.store = NewMemoryStore(WithClock(h.clock.Now), WithIDGenerator(seqIDs("T")))
	h.coord = NewCoordinator(h.store, h.dir, testRegistry(), h.mailer, verifier, CoordinatorConfig{
		FrontendURL: "https://app.example.com/",
	})
	return h
}

func TestRequestResetDoesNotRevealExistence(t *testing.T) {
	h := newHarness(nil, "alice@x.com")
	ctx := context.Background()

	known, err := h.coord.RequestReset(ctx, RequestResetInput{Email: "alice@x.com", TenantClass: "customer"})
	require.NoError(t, err)
	unknown, err := h.coord.RequestReset(ctx, RequestResetInput{Email: "ghost@x.com", TenantClass: "customer"})
	require.NoError(t, err)

	assert.Equal(t, known, unknown)
	assert.Equal(t, GenericRequestMessage, known.Message)

	require.Len(t, h.mailer.sent, 1)
	assert.Equal(t, "https://app.example.com/reset-password?token=T-1", h.mailer.sent[0].Link)
	assert.Equal(t, DefaultTTL, h.mailer.sent[0].TTL)

	st, _ := h.store.Stats(ctx)
	assert.Equal(t, 1, st.Total)
}

func TestRequestResetSendFailureDiscardsToken(t *testing.T) {
	h := newHarness(nil, "alice@x.com")
	h.mailer.err = errors.New("smtp down")

	res, err := h.coord.RequestReset(context.Background(), RequestResetInput{Email: "alice@x.com", TenantClass: "customer"})
	require.NoError(t, err)
	assert.Equal(t, GenericRequestMessage, res.Message)

	st, _ := h.store.Stats(context.Background())
	assert.Equal(t, 0, st.Total)
}

func TestRequestResetValidation(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()

	_, err := h.coord.RequestReset(ctx, RequestResetInput{TenantClass: "customer"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = h.coord.RequestReset(ctx, RequestResetInput{Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = h.coord.RequestReset(ctx, RequestResetInput{Email: "a@x.com", TenantClass: "partner"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = h.coord.RequestReset(ctx, RequestResetInput{Email: "a at x.com", TenantClass: "customer"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRequestResetHumanVerification(t *testing.T) {
	h := newHarness(fakeVerifier{res: captcha.Result{Valid: false, Message: "Vérification CAPTCHA invalide"}}, "alice@x.com")

	_, err := h.coord.RequestReset(context.Background(), RequestResetInput{Email: "alice@x.com", TenantClass: "customer"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, h.mailer.sent)
	st, _ := h.store.Stats(context.Background())
	assert.Zero(t, st.Total)

	h = newHarness(fakeVerifier{res: captcha.Result{Valid: true}}, "alice@x.com")
	_, err = h.coord.RequestReset(context.Background(), RequestResetInput{Email: "alice@x.com", TenantClass: "customer"})
	require.NoError(t, err)
	assert.Len(t, h.mailer.sent, 1)
}

func TestVerifyTokenDoesNotConsume(t *testing.T) {
	h := newHarness(nil, "alice@x.com")
	ctx := context.Background()
	_, err := h.coord.RequestReset(ctx, RequestResetInput{Email: "alice@x.com", TenantClass: "staff"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		v, err := h.coord.VerifyToken(ctx, "T-1")
		require.NoError(t, err)
		assert.Equal(t, VerifiedToken{Email: "alice@x.com", TenantClass: domain.Staff}, v)
	}

	_, err = h.coord.VerifyToken(ctx, "")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestConfirmResetScenario(t *testing.T) {
	h := newHarness(nil, "alice@x.com")
	ctx := context.Background()
	_, err := h.coord.RequestReset(ctx, RequestResetInput{Email: "alice@x.com", TenantClass: "customer"})
	require.NoError(t, err)

	_, err = h.coord.ConfirmReset(ctx, "T-1", "Weak1")
	assert.ErrorIs(t, err, domain.ErrValidation)
	tok, err := h.store.Peek(ctx, "T-1")
	require.NoError(t, err)
	assert.False(t, tok.Used)

	res, err := h.coord.ConfirmReset(ctx, "T-1", "Str0ngPass")
	require.NoError(t, err)
	assert.Equal(t, domain.Customer, res.TenantClass)
	assert.Equal(t, "/client", res.LoginPath)
	assert.Equal(t, "Str0ngPass", h.dir.passwords["alice@x.com"])

	_, err = h.coord.ConfirmReset(ctx, "T-1", "Another1X")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestConfirmResetExpired(t *testing.T) {
	h := newHarness(nil, "alice@x.com")
	ctx := context.Background()
	_, err := h.coord.RequestReset(ctx, RequestResetInput{Email: "alice@x.com", TenantClass: "customer"})
	require.NoError(t, err)
	h.clock.Advance(DefaultTTL + 1)

	_, err = h.coord.ConfirmReset(ctx, "T-1", "Str0ngPass")
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestConfirmResetRevertsOnUpstreamFailure(t *testing.T) {
	h := newHarness(nil, "alice@x.com")
	ctx := context.Background()
	_, err := h.coord.RequestReset(ctx, RequestResetInput{Email: "alice@x.com", TenantClass: "customer"})
	require.NoError(t, err)

	h.dir.setErr = domain.Upstream("InternalErrorException", false, errors.New("boom"))
	_, err = h.coord.ConfirmReset(ctx, "T-1", "Str0ngPass")
	assert.ErrorIs(t, err, domain.ErrUpstream)

	tok, err := h.store.Peek(ctx, "T-1")
	require.NoError(t, err)
	assert.False(t, tok.Used)

	h.dir.setErr = nil
	_, err = h.coord.ConfirmReset(ctx, "T-1", "Str0ngPass")
	require.NoError(t, err)
}

func TestConfirmResetIdentityDeletedConsumesToken(t *testing.T) {
	h := newHarness(nil, "alice@x.com")
	ctx := context.Background()
	_, err := h.coord.RequestReset(ctx, RequestResetInput{Email: "alice@x.com", TenantClass: "customer"})
	require.NoError(t, err)

	h.dir.setErr = domain.NotFound("user not found")
	_, err = h.coord.ConfirmReset(ctx, "T-1", "Str0ngPass")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	assert.NotEqual(t, domain.KindNotFound, domain.KindOf(err))

	_, err = h.store.Peek(ctx, "T-1")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	h.dir.setErr = nil
	_, err = h.coord.ConfirmReset(ctx, "T-1", "Str0ngPass")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	assert.Empty(t, h.dir.passwords)
}

func TestConcurrentConfirmExactlyOneWins(t *testing.T) {
	h := newHarness(nil, "alice@x.com")
	ctx := context.Background()
	_, err := h.coord.RequestReset(ctx, RequestResetInput{Email: "alice@x.com", TenantClass: "customer"})
	require.NoError(t, err)

	h.dir.entered = make(chan struct{})
	h.dir.release = make(chan struct{})

	first := make(chan error, 1)
	go func() {
		_, err := h.coord.ConfirmReset(ctx, "T-1", "Str0ngPass")
		first <- err
	}()
	<-h.dir.entered

	_, err = h.coord.ConfirmReset(ctx, "T-1", "Str0ngPass2")
	assert.ErrorIs(t, err, domain.ErrTokenUsed)

	close(h.dir.release)
	require.NoError(t, <-first)
	assert.Equal(t, "Str0ngPass", h.dir.passwords["alice@x.com"])
}
