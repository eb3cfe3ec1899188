package idp

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/observability/logger"
	"github.com/dropDatabas3/accountsd/internal/tenant"
)

// Tamaño de página máximo de ListUsers en Cognito.
const maxListLimit = 60

// CreateIdentityInput describe un alta en el IdP.
type CreateIdentityInput struct {
	Username    string
	DisplayName string
	Email       string
	Password    string
	// Permanent fija Password como definitiva (sin FORCE_CHANGE_PASSWORD).
	Permanent bool
	// SuppressProviderEmail evita el mail de bienvenida propio del IdP.
	SuppressProviderEmail bool
}

// AttributeUpdate: los campos vacíos no se tocan.
type AttributeUpdate struct {
	DisplayName string
	Email       string
}

func (u AttributeUpdate) Empty() bool {
	return strings.TrimSpace(u.DisplayName) == "" && strings.TrimSpace(u.Email) == ""
}

// CreateIdentity da de alta la identidad con email verificado.
// Si la relectura posterior falla, la identidad igual cuenta como creada y se
// retorna un registro sintetizado.
func (g *Gateway) CreateIdentity(ctx context.Context, pool tenant.PoolConfig, in CreateIdentityInput) (domain.IdentityRecord, error) {
	if in.Username == "" || in.Email == "" {
		return domain.IdentityRecord{}, domain.Validation("username and email are required")
	}

	req := &cip.AdminCreateUserInput{
		UserPoolId: aws.String(pool.PoolID),
		Username:   aws.String(in.Username),
		UserAttributes: []types.AttributeType{
			attr(attrEmail, in.Email),
			attr(attrName, in.DisplayName),
			attr(attrEmailVerified, "true"),
		},
	}
	if in.Password != "" {
		req.TemporaryPassword = aws.String(in.Password)
	}
	if in.SuppressProviderEmail {
		req.MessageAction = types.MessageActionTypeSuppress
	} else {
		req.DesiredDeliveryMediums = []types.DeliveryMediumType{types.DeliveryMediumTypeEmail}
	}

	var created *types.UserType
	err := g.call(ctx, "CreateIdentity", pool, func(ctx context.Context) error {
		out, err := g.api.AdminCreateUser(ctx, req)
		if out != nil {
			created = out.User
		}
		return err
	})
	if err != nil {
		return domain.IdentityRecord{}, err
	}

	permanent := in.Permanent && in.Password != ""
	if permanent {
		if err := g.SetPermanentPassword(ctx, pool, in.Username, in.Password); err != nil {
			return domain.IdentityRecord{}, fmt.Errorf("identity created but password not set: %w", err)
		}
	}

	rec, err := g.GetIdentity(ctx, pool, in.Username)
	if err == nil {
		return rec, nil
	}

	logger.From(ctx).Warn("identity created, re-read failed; returning synthesized record",
		logger.Layer("gateway"), logger.Op("CreateIdentity"), logger.Err(err))

	if created != nil {
		rec = fromUserType(*created)
	} else {
		now := g.now().UTC()
		rec = domain.IdentityRecord{Username: in.Username, Enabled: true, CreatedAt: now, LastModifiedAt: now}
	}
	rec.Email, rec.DisplayName, rec.EmailVerified = in.Email, in.DisplayName, true
	rec.Status = domain.StatusForceChangePassword
	if permanent {
		rec.Status = domain.StatusConfirmed
	}
	return rec, nil
}

func (g *Gateway) GetIdentity(ctx context.Context, pool tenant.PoolConfig, username string) (domain.IdentityRecord, error) {
	var rec domain.IdentityRecord
	err := g.call(ctx, "GetIdentity", pool, func(ctx context.Context) error {
		out, err := g.api.AdminGetUser(ctx, &cip.AdminGetUserInput{
			UserPoolId: aws.String(pool.PoolID),
			Username:   aws.String(username),
		})
		if err != nil {
			return err
		}
		rec = toRecord(aws.ToString(out.Username), out.UserAttributes, out.UserCreateDate, out.UserLastModifiedDate, out.Enabled, out.UserStatus)
		return nil
	})
	return rec, err
}

// FindByEmail busca la identidad cuyo atributo email coincide exactamente.
func (g *Gateway) FindByEmail(ctx context.Context, pool tenant.PoolConfig, email string) (domain.IdentityRecord, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.ContainsAny(email, `"\`) {
		return domain.IdentityRecord{}, domain.Validation("invalid email")
	}
	var rec domain.IdentityRecord
	err := g.call(ctx, "FindByEmail", pool, func(ctx context.Context) error {
		out, err := g.api.ListUsers(ctx, &cip.ListUsersInput{
			UserPoolId: aws.String(pool.PoolID),
			Filter:     aws.String(fmt.Sprintf("email = %q", email)),
			Limit:      aws.Int32(1),
		})
		if err != nil {
			return err
		}
		if len(out.Users) == 0 {
			return domain.NotFound("no identity for email")
		}
		rec = fromUserType(out.Users[0])
		return nil
	})
	return rec, err
}

// ListIdentities retorna una página de hasta limit identidades (1..60; 0 = 60).
func (g *Gateway) ListIdentities(ctx context.Context, pool tenant.PoolConfig, limit int) ([]domain.IdentityRecord, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	var recs []domain.IdentityRecord
	err := g.call(ctx, "ListIdentities", pool, func(ctx context.Context) error {
		out, err := g.api.ListUsers(ctx, &cip.ListUsersInput{
			UserPoolId: aws.String(pool.PoolID),
			Limit:      aws.Int32(int32(limit)),
		})
		if err != nil {
			return err
		}
		recs = make([]domain.IdentityRecord, 0, len(out.Users))
		for _, u := range out.Users {
			recs = append(recs, fromUserType(u))
		}
		return nil
	})
	return recs, err
}

func (g *Gateway) UpdateAttributes(ctx context.Context, pool tenant.PoolConfig, username string, upd AttributeUpdate) error {
	if upd.Empty() {
		return domain.Validation("at least one attribute is required")
	}
	var attrs []types.AttributeType
	if v := strings.TrimSpace(upd.DisplayName); v != "" {
		attrs = append(attrs, attr(attrName, v))
	}
	if v := strings.TrimSpace(upd.Email); v != "" {
		attrs = append(attrs, attr(attrEmail, v), attr(attrEmailVerified, "true"))
	}
	return g.call(ctx, "UpdateAttributes", pool, func(ctx context.Context) error {
		_, err := g.api.AdminUpdateUserAttributes(ctx, &cip.AdminUpdateUserAttributesInput{
			UserPoolId:     aws.String(pool.PoolID),
			Username:       aws.String(username),
			UserAttributes: attrs,
		})
		return err
	})
}

func (g *Gateway) SetEnabled(ctx context.Context, pool tenant.PoolConfig, username string, enabled bool) error {
	op := "DisableIdentity"
	if enabled {
		op = "EnableIdentity"
	}
	return g.call(ctx, op, pool, func(ctx context.Context) error {
		var err error
		if enabled {
			_, err = g.api.AdminEnableUser(ctx, &cip.AdminEnableUserInput{
				UserPoolId: aws.String(pool.PoolID), Username: aws.String(username),
			})
		} else {
			_, err = g.api.AdminDisableUser(ctx, &cip.AdminDisableUserInput{
				UserPoolId: aws.String(pool.PoolID), Username: aws.String(username),
			})
		}
		return err
	})
}

func (g *Gateway) DeleteIdentity(ctx context.Context, pool tenant.PoolConfig, username string) error {
	return g.call(ctx, "DeleteIdentity", pool, func(ctx context.Context) error {
		_, err := g.api.AdminDeleteUser(ctx, &cip.AdminDeleteUserInput{
			UserPoolId: aws.String(pool.PoolID),
			Username:   aws.String(username),
		})
		return err
	})
}

// Ping verifica acceso al pool con un ListUsers de una entrada.
func (g *Gateway) Ping(ctx context.Context, pool tenant.PoolConfig) error {
	return g.call(ctx, "Ping", pool, func(ctx context.Context) error {
		_, err := g.api.ListUsers(ctx, &cip.ListUsersInput{
			UserPoolId: aws.String(pool.PoolID),
			Limit:      aws.Int32(1),
		})
		return err
	})
}
