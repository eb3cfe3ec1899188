// Package accounts orquesta el ciclo de vida de cuentas sobre el IdP y el
// store de perfiles, con compensaciones explícitas entre pasos que fallan
// de forma independiente.
package accounts

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/domain/repository"
	"github.com/dropDatabas3/accountsd/internal/email"
	"github.com/dropDatabas3/accountsd/internal/idp"
	"github.com/dropDatabas3/accountsd/internal/metrics"
	"github.com/dropDatabas3/accountsd/internal/observability/logger"
	"github.com/dropDatabas3/accountsd/internal/security/password"
	"github.com/dropDatabas3/accountsd/internal/tenant"
	"github.com/dropDatabas3/accountsd/internal/validation"
)

// IdentityGateway es lo que el orquestador necesita del IdP (*idp.Gateway).
type IdentityGateway interface {
	CreateIdentity(ctx context.Context, pool tenant.PoolConfig, in idp.CreateIdentityInput) (domain.IdentityRecord, error)
	GetIdentity(ctx context.Context, pool tenant.PoolConfig, username string) (domain.IdentityRecord, error)
	ListIdentities(ctx context.Context, pool tenant.PoolConfig, limit int) ([]domain.IdentityRecord, error)
	UpdateAttributes(ctx context.Context, pool tenant.PoolConfig, username string, upd idp.AttributeUpdate) error
	SetEnabled(ctx context.Context, pool tenant.PoolConfig, username string, enabled bool) error
	DeleteIdentity(ctx context.Context, pool tenant.PoolConfig, username string) error
	AuthenticateWithPassword(ctx context.Context, pool tenant.PoolConfig, username, password string) (bool, error)
	SetPermanentPassword(ctx context.Context, pool tenant.PoolConfig, username, password string) error
}

type PoolResolver interface {
	Resolve(class domain.TenantClass) (tenant.PoolConfig, error)
}

type WelcomeMailer interface {
	SendWelcome(ctx context.Context, m email.WelcomeMessage) (email.SendResult, error)
}

type Service struct {
	pools    PoolResolver
	idp      IdentityGateway
	profiles repository.ProfileRepository
	mailer   WelcomeMailer
	policy   password.Policy
}

func NewService(pools PoolResolver, gw IdentityGateway, profiles repository.ProfileRepository, mailer WelcomeMailer, policy password.Policy) *Service {
	if policy.MinLength == 0 {
		policy = password.Default()
	}
	return &Service{pools: pools, idp: gw, profiles: profiles, mailer: mailer, policy: policy}
}

func (s *Service) log(ctx context.Context, op string, class domain.TenantClass) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("accounts"),
		logger.Op(op),
		logger.TenantClass(string(class)),
	)
}

func (s *Service) ListAccounts(ctx context.Context, class domain.TenantClass) ([]Account, error) {
	pool, err := s.pools.Resolve(class)
	if err != nil {
		return nil, err
	}
	recs, err := s.idp.ListIdentities(ctx, pool, 0)
	if err != nil {
		return nil, err
	}

	out := make([]Account, len(recs))
	for i, r := range recs {
		out[i] = Account{IdentityRecord: r}
	}
	if !class.HasLinkedProfiles() {
		return out, nil
	}

	// Una sola lectura del store; join en memoria por SubjectID.
	docs, err := s.profiles.FindAll(ctx)
	if err != nil {
		s.log(ctx, "ListAccounts", class).Warn("profile store unavailable, returning accounts without linkage", logger.Err(err))
		for i := range out {
			out[i].ProfileLinkageError = "could not check profile linkage"
		}
		return out, nil
	}
	bySub := make(map[string]repository.Document, len(docs))
	for _, d := range docs {
		if sub := d.SubjectID(); sub != "" {
			bySub[sub] = d
		}
	}
	for i := range out {
		if d, ok := bySub[out[i].SubjectID]; ok && out[i].SubjectID != "" {
			out[i].Profile = summarize(d)
			out[i].HasLinkedProfile = true
		}
	}
	return out, nil
}

func (s *Service) GetAccount(ctx context.Context, class domain.TenantClass, username string) (Account, error) {
	pool, err := s.pools.Resolve(class)
	if err != nil {
		return Account{}, err
	}
	rec, err := s.idp.GetIdentity(ctx, pool, username)
	if err != nil {
		return Account{}, err
	}
	acc := Account{IdentityRecord: rec}
	if !class.HasLinkedProfiles() || rec.SubjectID == "" {
		return acc, nil
	}
	d, err := s.profiles.FindByKey(ctx, rec.SubjectID)
	switch {
	case err == nil:
		acc.Profile, acc.HasLinkedProfile = summarize(d), true
	case repository.IsNotFound(err):
	default:
		s.log(ctx, "GetAccount", class).Warn("profile lookup failed", logger.SubjectID(rec.SubjectID), logger.Err(err))
		acc.ProfileLinkageError = "could not check profile linkage"
	}
	return acc, nil
}

// CreateAccount: username = email. La identidad nunca se revierte si falla el mail.
func (s *Service) CreateAccount(ctx context.Context, class domain.TenantClass, in CreateAccountInput) (res CreateAccountResult, err error) {
	defer func() { metrics.ObserveAccountOp("CreateAccount", class, res.NotificationError != "", err) }()
	log := s.log(ctx, "CreateAccount", class)

	in.Email = validation.NormalizeEmail(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.Email == "" || in.DisplayName == "" || in.Password == "" {
		return CreateAccountResult{}, domain.Validation("name, email and password are required")
	}
	if !validation.ValidEmail(in.Email) {
		return CreateAccountResult{}, domain.Validation("invalid email format")
	}
	pool, err := s.pools.Resolve(class)
	if err != nil {
		return CreateAccountResult{}, err
	}

	rec, err := s.idp.CreateIdentity(ctx, pool, idp.CreateIdentityInput{
		Username:              in.Email,
		DisplayName:           in.DisplayName,
		Email:                 in.Email,
		Password:              in.Password,
		Permanent:             !in.SendWelcomeNotification,
		SuppressProviderEmail: true,
	})
	if err != nil {
		return CreateAccountResult{}, err
	}
	res.Account = rec
	log = log.With(logger.Username(rec.Username))

	if !in.SendWelcomeNotification {
		log.Info("account created")
		return res, nil
	}

	sent, err := s.mailer.SendWelcome(ctx, email.WelcomeMessage{
		To:          in.Email,
		DisplayName: in.DisplayName,
		Username:    rec.Username,
		Password:    in.Password,
		TenantClass: class,
	})
	if err != nil {
		log.Warn("account created, welcome email failed", logger.Err(err))
		res.NotificationError = "welcome email could not be sent"
		return res, nil
	}
	res.WelcomeMessageID = sent.MessageID
	log.Info("account created, welcome email sent", logger.MessageID(sent.MessageID))
	return res, nil
}

// DeleteAccount borra la identidad y, para customer, el perfil ligado.
//
// Si la búsqueda previa del perfil falla (identidad o store), el borrado
// sigue sin limpieza: puede quedar un perfil huérfano. Se registra en Warn.
func (s *Service) DeleteAccount(ctx context.Context, class domain.TenantClass, username string) (res DeleteAccountResult, err error) {
	defer func() { metrics.ObserveAccountOp("DeleteAccount", class, res.ProfileCleanupError != "", err) }()
	log := s.log(ctx, "DeleteAccount", class).With(logger.Username(username))

	pool, err := s.pools.Resolve(class)
	if err != nil {
		return DeleteAccountResult{}, err
	}
	res.Username = username

	var subjectID string
	if class.HasLinkedProfiles() {
		subjectID = s.linkedProfile(ctx, log, pool, username)
		res.ProfileFound = subjectID != ""
	}

	if err := s.idp.DeleteIdentity(ctx, pool, username); err != nil {
		return DeleteAccountResult{}, err
	}

	if subjectID == "" {
		log.Info("account deleted")
		return res, nil
	}

	n, err := s.profiles.DeleteByKey(ctx, subjectID)
	if err != nil {
		log.Warn("account deleted, profile cleanup failed", logger.SubjectID(subjectID), logger.Err(err))
		res.ProfileCleanupError = "failed to delete linked profile"
		return res, nil
	}
	res.ProfileDeleted = n > 0
	log.Info("account and linked profile deleted", logger.SubjectID(subjectID), logger.Int("deleted", int(n)))
	return res, nil
}

// linkedProfile retorna el SubjectID si existe un perfil ligado; "" si no
// existe o si no se pudo determinar.
func (s *Service) linkedProfile(ctx context.Context, log *zap.Logger, pool tenant.PoolConfig, username string) string {
	rec, err := s.idp.GetIdentity(ctx, pool, username)
	if err != nil {
		log.Warn("identity lookup before delete failed; skipping profile cleanup", logger.Err(err))
		return ""
	}
	if rec.SubjectID == "" {
		return ""
	}
	_, err = s.profiles.FindByKey(ctx, rec.SubjectID)
	switch {
	case err == nil:
		return rec.SubjectID
	case repository.IsNotFound(err):
		return ""
	default:
		log.Warn("profile lookup before delete failed; skipping profile cleanup",
			logger.SubjectID(rec.SubjectID), logger.Err(err))
		return ""
	}
}

func (s *Service) UpdateAccount(ctx context.Context, class domain.TenantClass, username string, in UpdateAccountInput) error {
	upd := idp.AttributeUpdate{DisplayName: in.DisplayName, Email: in.Email}
	if upd.Empty() {
		return domain.Validation("at least one of name or email is required")
	}
	pool, err := s.pools.Resolve(class)
	if err != nil {
		return err
	}
	err = s.idp.UpdateAttributes(ctx, pool, username, upd)
	metrics.ObserveAccountOp("UpdateAccount", class, false, err)
	return err
}

func (s *Service) SetAccountEnabled(ctx context.Context, class domain.TenantClass, username string, enabled bool) error {
	pool, err := s.pools.Resolve(class)
	if err != nil {
		return err
	}
	err = s.idp.SetEnabled(ctx, pool, username, enabled)
	metrics.ObserveAccountOp("SetAccountEnabled", class, false, err)
	if err == nil {
		s.log(ctx, "SetAccountEnabled", class).Info("account status changed",
			logger.Username(username), logger.Bool("enabled", enabled))
	}
	return err
}

func (s *Service) GetCredentials(ctx context.Context, class domain.TenantClass, username string) (Credentials, error) {
	pool, err := s.pools.Resolve(class)
	if err != nil {
		return Credentials{}, err
	}
	rec, err := s.idp.GetIdentity(ctx, pool, username)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{
		Username:           rec.Username,
		Email:              rec.Email,
		Status:             rec.Status,
		Enabled:            rec.Enabled,
		NeedsPasswordReset: rec.NeedsPasswordReset(),
		LoginPath:          class.LoginPath(),
	}, nil
}

// ChangePassword verifica la password actual contra el IdP y fija la nueva.
func (s *Service) ChangePassword(ctx context.Context, class domain.TenantClass, username, current, next string) error {
	if username == "" || current == "" || next == "" {
		return domain.Validation("current and new password are required")
	}
	if err := s.policy.Check(next); err != nil {
		return err
	}
	pool, err := s.pools.Resolve(class)
	if err != nil {
		return err
	}
	ok, err := s.idp.AuthenticateWithPassword(ctx, pool, username, current)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Validation("current password is incorrect")
	}
	if err := s.idp.SetPermanentPassword(ctx, pool, username, next); err != nil {
		return err
	}
	s.log(ctx, "ChangePassword", class).Info("password changed", logger.Username(username))
	return nil
}
