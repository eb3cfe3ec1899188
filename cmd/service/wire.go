package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/accountsd/internal/accounts"
	"github.com/dropDatabas3/accountsd/internal/captcha"
	"github.com/dropDatabas3/accountsd/internal/config"
	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/domain/repository"
	"github.com/dropDatabas3/accountsd/internal/email"
	accountsctrl "github.com/dropDatabas3/accountsd/internal/http/controllers/accounts"
	authctrl "github.com/dropDatabas3/accountsd/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/accountsd/internal/http/controllers/health"
	resetctrl "github.com/dropDatabas3/accountsd/internal/http/controllers/reset"
	"github.com/dropDatabas3/accountsd/internal/http/router"
	"github.com/dropDatabas3/accountsd/internal/idp"
	"github.com/dropDatabas3/accountsd/internal/jwt"
	"github.com/dropDatabas3/accountsd/internal/metrics"
	"github.com/dropDatabas3/accountsd/internal/observability/logger"
	"github.com/dropDatabas3/accountsd/internal/rate"
	"github.com/dropDatabas3/accountsd/internal/reset"
	"github.com/dropDatabas3/accountsd/internal/store/memory"
	"github.com/dropDatabas3/accountsd/internal/store/mongo"
	"github.com/dropDatabas3/accountsd/internal/store/pg"
	"github.com/dropDatabas3/accountsd/internal/tenant"
)

type app struct {
	handler http.Handler
	tokens  reset.TokenStore
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// build arma el grafo de dependencias. Si falla a mitad, cierra lo abierto.
func build(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	log := logger.L().With(logger.Component("wire"))
	a := &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()
	var checks []healthctrl.Check

	// ─── IdP ───
	registry := tenantRegistry(cfg)
	api, err := idp.NewCognitoClient(ctx, idp.ClientConfig{Region: cfg.IdP.Region, Endpoint: cfg.IdP.Endpoint})
	if err != nil {
		return nil, err
	}
	gw := idp.New(api)
	for _, class := range domain.TenantClasses() {
		pool, perr := registry.Resolve(class)
		if perr != nil {
			log.Warn("tenant class disabled", logger.TenantClass(class.String()), logger.Err(perr))
			continue
		}
		checks = append(checks, healthctrl.Check{
			Name: "idp:" + class.String(),
			Fn:   func(ctx context.Context) error { return gw.Ping(ctx, pool) },
		})
	}

	// ─── Redis (opcional) ───
	var redisClient rdb.UniversalClient
	if cfg.Reset.Store == "redis" || (!cfg.Rate.Disabled && cfg.Rate.Backend == "redis") {
		c := rdb.NewClient(&rdb.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB, Password: cfg.Redis.Password})
		a.closers = append(a.closers, func() { _ = c.Close() })
		redisClient = c
		checks = append(checks, healthctrl.Check{
			Name: "redis",
			Fn:   func(ctx context.Context) error { return c.Ping(ctx).Err() },
		})
	}

	// ─── Perfiles ───
	profiles, err := openProfiles(ctx, cfg, a)
	if err != nil {
		return nil, err
	}
	if p, ok := profiles.(pinger); ok {
		checks = append(checks, healthctrl.Check{Name: "profiles", Fn: p.Ping})
	}

	// ─── Tokens de reset ───
	switch cfg.Reset.Store {
	case "redis":
		a.tokens = reset.NewRedisStore(redisClient, cfg.Redis.Prefix+reset.RedisKeyspace, reset.WithTTL(cfg.Reset.TTL))
	default:
		a.tokens = reset.NewMemoryStore(reset.WithTTL(cfg.Reset.TTL))
	}

	// ─── Email / captcha ───
	templates, err := email.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("email templates: %w", err)
	}
	var sender email.Sender = email.LogSender{}
	if cfg.Email.Transport == "smtp" {
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			User:               cfg.SMTP.Username,
			Pass:               cfg.SMTP.Password,
			TLSMode:            cfg.SMTP.TLS,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		}, cfg.Email.From)
	}
	mailer := email.NewService(sender, templates, email.Config{AppName: cfg.Email.AppName, FrontendURL: cfg.Reset.FrontendURL})
	verifier := captcha.NewVerifier(captcha.Config{
		SecretKey:      cfg.Captcha.SecretKey,
		VerifyURL:      cfg.Captcha.VerifyURL,
		Timeout:        cfg.Captcha.Timeout,
		AllowDevBypass: cfg.Captcha.AllowDevBypass,
		Env:            cfg.App.Env,
	})

	// ─── Servicios ───
	policy := cfg.Security.PasswordPolicy
	accountSvc := accounts.NewService(registry, gw, profiles, mailer, policy)
	coordinator := reset.NewCoordinator(a.tokens, gw, registry, mailer, verifier, reset.CoordinatorConfig{
		FrontendURL: cfg.Reset.FrontendURL,
		TTL:         cfg.Reset.TTL,
		Policy:      policy,
	})

	// ─── Métricas ───
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	tokens := a.tokens
	if err := metrics.RegisterTokenCollector(prometheus.DefaultRegisterer, func(ctx context.Context) (metrics.TokenStats, error) {
		st, err := tokens.Stats(ctx)
		return metrics.TokenStats{Total: st.Total, Active: st.Active, Expired: st.Expired, Used: st.Used}, err
	}); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	a.handler = router.New(router.Deps{
		Accounts:      accountsctrl.NewController(accountSvc),
		Reset:         resetctrl.NewController(coordinator),
		Auth:          authctrl.NewController(accountSvc),
		Health:        healthctrl.NewController(cfg.App.Version, checks...),
		Tokens:        jwt.NewIssuer(cfg.Admin.JWTSecret, cfg.Admin.Issuer),
		ForgotLimiter: forgotLimiter(cfg, redisClient),
		Metrics:       promhttp.Handler(),
	})
	return a, nil
}

func tenantRegistry(cfg *config.Config) *tenant.Registry {
	pool := func(class domain.TenantClass, p config.Pool) tenant.PoolConfig {
		return tenant.PoolConfig{Class: class, PoolID: p.PoolID, ClientID: p.ClientID, ClientSecret: p.ClientSecret}
	}
	return tenant.NewRegistry(
		pool(domain.Customer, cfg.Tenants.Customer),
		pool(domain.Staff, cfg.Tenants.Staff),
		pool(domain.Admin, cfg.Tenants.Admin),
	)
}

func openProfiles(ctx context.Context, cfg *config.Config, a *app) (repository.ProfileRepository, error) {
	switch cfg.Profiles.Driver {
	case "mongo":
		m := cfg.Profiles.Mongo
		repo, err := mongo.Open(ctx, mongo.Config{URI: m.URI, Database: m.Database, Collection: m.Collection})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = repo.Close(cctx)
		})
		return repo, nil
	case "postgres":
		p := cfg.Profiles.Postgres
		repo, err := pg.Open(ctx, pg.Config{DSN: p.DSN, Table: p.Table})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	default:
		logger.L().Warn("using in-memory profile store; data is not persisted")
		return memory.NewProfileRepo(), nil
	}
}

func forgotLimiter(cfg *config.Config, client rdb.UniversalClient) rate.Limiter {
	if cfg.Rate.Disabled {
		return rate.Noop{}
	}
	f := cfg.Rate.Forgot
	if cfg.Rate.Backend == "redis" {
		return rate.NewRedisLimiter(client, cfg.Redis.Prefix+"rl:", f.Limit, f.Window)
	}
	return rate.NewMemoryLimiter(f.Limit, f.Window)
}
