package reset

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/accountsd/internal/captcha"
	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/email"
	"github.com/dropDatabas3/accountsd/internal/metrics"
	"github.com/dropDatabas3/accountsd/internal/observability/logger"
	"github.com/dropDatabas3/accountsd/internal/security/password"
	"github.com/dropDatabas3/accountsd/internal/tenant"
	"github.com/dropDatabas3/accountsd/internal/validation"
)

// GenericRequestMessage es la única respuesta de RequestReset, exista o no la cuenta.
const GenericRequestMessage = "Si votre email est associé à un compte, vous recevrez un lien de réinitialisation."

// Directory es la parte del gateway que usa el flujo.
type Directory interface {
	FindByEmail(ctx context.Context, pool tenant.PoolConfig, email string) (domain.IdentityRecord, error)
	SetPermanentPassword(ctx context.Context, pool tenant.PoolConfig, username, password string) error
}

type PoolResolver interface {
	Resolve(class domain.TenantClass) (tenant.PoolConfig, error)
}

type Mailer interface {
	SendPasswordReset(ctx context.Context, m email.ResetMessage) (email.SendResult, error)
}

// HumanVerifier es opcional; nil desactiva el chequeo.
type HumanVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (captcha.Result, error)
}

type RequestResetInput struct {
	Email        string
	TenantClass  string
	CaptchaToken string
	ClientIP     string
}

type RequestResetResult struct {
	Message string `json:"message"`
}

type VerifiedToken struct {
	Email       string             `json:"email"`
	TenantClass domain.TenantClass `json:"userType"`
}

type ConfirmResetResult struct {
	TenantClass domain.TenantClass `json:"userType"`
	LoginPath   string             `json:"loginPath"`
}

type CoordinatorConfig struct {
	FrontendURL string
	TTL         time.Duration
	Policy      password.Policy
}

// Coordinator orquesta request / verify / confirm sobre el TokenStore.
type Coordinator struct {
	store    TokenStore
	dir      Directory
	pools    PoolResolver
	mailer   Mailer
	verifier HumanVerifier
	cfg      CoordinatorConfig
}

func NewCoordinator(store TokenStore, dir Directory, pools PoolResolver, mailer Mailer, verifier HumanVerifier, cfg CoordinatorConfig) *Coordinator {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Policy.MinLength == 0 {
		cfg.Policy = password.Default()
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &Coordinator{store: store, dir: dir, pools: pools, mailer: mailer, verifier: verifier, cfg: cfg}
}

func (c *Coordinator) resetLink(id string) string {
	return c.cfg.FrontendURL + "/reset-password?token=" + url.QueryEscape(id)
}

// RequestReset nunca revela si el email existe: toda rama posterior a la
// validación de entrada y captcha retorna el mismo resultado.
func (c *Coordinator) RequestReset(ctx context.Context, in RequestResetInput) (RequestResetResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("reset"), logger.Op("RequestReset"))
	generic := RequestResetResult{Message: GenericRequestMessage}

	addr := validation.NormalizeEmail(in.Email)
	if addr == "" || strings.TrimSpace(in.TenantClass) == "" {
		return RequestResetResult{}, domain.Validation("email and tenant class are required")
	}
	if !validation.ValidEmail(addr) {
		return RequestResetResult{}, domain.Validation("invalid email format")
	}
	class, err := domain.ParseTenantClass(in.TenantClass)
	if err != nil {
		return RequestResetResult{}, err
	}
	pool, err := c.pools.Resolve(class)
	if err != nil {
		return RequestResetResult{}, err
	}

	if c.verifier != nil {
		res, err := c.verifier.Verify(ctx, in.CaptchaToken, in.ClientIP)
		if err != nil {
			return RequestResetResult{}, err
		}
		if !res.Valid {
			return RequestResetResult{}, domain.Validation("human verification failed: %s", res.Message)
		}
	}
	metrics.ResetEvent("requested")
	log = log.With(logger.TenantClass(string(class)))

	rec, err := c.dir.FindByEmail(ctx, pool, addr)
	if err != nil {
		if domain.KindOf(err) != domain.KindNotFound {
			log.Warn("identity lookup failed", logger.Err(err))
		}
		return generic, nil
	}

	id, err := c.store.Issue(ctx, IssueInput{Email: addr, Username: rec.Username, TenantClass: class})
	if err != nil {
		log.Error("issue reset token failed", logger.Err(err))
		return generic, nil
	}
	metrics.ResetEvent("issued")

	_, err = c.mailer.SendPasswordReset(ctx, email.ResetMessage{
		To: addr, Link: c.resetLink(id), TTL: c.cfg.TTL, TenantClass: class,
	})
	if err != nil {
		metrics.ResetEvent("send_failed")
		log.Warn("reset email failed, discarding token", logger.TokenRef(id), logger.Err(err))
		if ferr := c.store.Finalize(context.WithoutCancel(ctx), id); ferr != nil {
			log.Warn("discard token failed", logger.TokenRef(id), logger.Err(ferr))
		}
		return generic, nil
	}

	log.Info("reset link sent", logger.TokenRef(id))
	return generic, nil
}

// VerifyToken valida el token sin consumirlo.
func (c *Coordinator) VerifyToken(ctx context.Context, id string) (VerifiedToken, error) {
	if strings.TrimSpace(id) == "" {
		return VerifiedToken{}, domain.TokenError(domain.TokenInvalid)
	}
	t, err := c.store.Peek(ctx, id)
	if err != nil {
		return VerifiedToken{}, err
	}
	return VerifiedToken{Email: t.Email, TenantClass: t.TenantClass}, nil
}

// ConfirmReset redime el token y fija la password. Si el IdP falla el token
// vuelve a pendiente y puede reintentarse.
func (c *Coordinator) ConfirmReset(ctx context.Context, id, newPassword string) (ConfirmResetResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("reset"), logger.Op("ConfirmReset"), logger.TokenRef(id))

	if strings.TrimSpace(id) == "" {
		return ConfirmResetResult{}, domain.TokenError(domain.TokenInvalid)
	}
	if newPassword == "" {
		return ConfirmResetResult{}, domain.Validation("new password is required")
	}
	if err := c.cfg.Policy.Check(newPassword); err != nil {
		return ConfirmResetResult{}, err
	}

	t, err := c.store.BeginRedeem(ctx, id)
	if err != nil {
		return ConfirmResetResult{}, err
	}

	username := t.Username
	if username == "" {
		username = t.Email
	}
	err = c.setPassword(ctx, t.TenantClass, username, newPassword)
	if domain.KindOf(err) == domain.KindNotFound {
		// La identidad ya no existe: reintentar no sirve, el token se consume.
		metrics.ResetEvent("confirm_failed")
		if ferr := c.store.Finalize(context.WithoutCancel(ctx), id); ferr != nil {
			log.Warn("finalize reset token failed", logger.Err(ferr))
		}
		log.Warn("reset target identity no longer exists", logger.Err(err))
		return ConfirmResetResult{}, domain.TokenError(domain.TokenInvalid)
	}
	if err != nil {
		metrics.ResetEvent("confirm_failed")
		if rerr := c.store.Revert(context.WithoutCancel(ctx), id); rerr != nil {
			log.Error("revert reset token failed", logger.Err(rerr))
		}
		return ConfirmResetResult{}, err
	}

	if err := c.store.Finalize(context.WithoutCancel(ctx), id); err != nil {
		log.Warn("finalize reset token failed; it stays used until expiry", logger.Err(err))
	}
	metrics.ResetEvent("confirmed")
	log.Info("password reset completed", logger.TenantClass(string(t.TenantClass)))
	return ConfirmResetResult{TenantClass: t.TenantClass, LoginPath: t.TenantClass.LoginPath()}, nil
}

func (c *Coordinator) setPassword(ctx context.Context, class domain.TenantClass, username, pw string) error {
	pool, err := c.pools.Resolve(class)
	if err != nil {
		return err
	}
	return c.dir.SetPermanentPassword(ctx, pool, username, pw)
}

// Stats expone los contadores del store (endpoint privilegiado).
func (c *Coordinator) Stats(ctx context.Context) (Stats, error) {
	return c.store.Stats(ctx)
}
