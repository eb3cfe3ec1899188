// Package idp es el único punto de contacto con el proveedor de identidad (Cognito).
//
// Traduce las operaciones de cuentas a llamadas admin del pool resuelto por
// tenant.Registry y normaliza los errores del proveedor al domain.Error.
// Nada por encima de este paquete inspecciona códigos de Cognito.
package idp

import (
	"context"
	"time"

	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"go.uber.org/zap"

	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/metrics"
	"github.com/dropDatabas3/accountsd/internal/observability/logger"
	"github.com/dropDatabas3/accountsd/internal/tenant"
)

// CognitoAPI es el subconjunto de *cognitoidentityprovider.Client que usa el gateway.
type CognitoAPI interface {
	AdminCreateUser(ctx context.Context, in *cip.AdminCreateUserInput, optFns ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error)
	AdminGetUser(ctx context.Context, in *cip.AdminGetUserInput, optFns ...func(*cip.Options)) (*cip.AdminGetUserOutput, error)
	AdminDeleteUser(ctx context.Context, in *cip.AdminDeleteUserInput, optFns ...func(*cip.Options)) (*cip.AdminDeleteUserOutput, error)
	AdminUpdateUserAttributes(ctx context.Context, in *cip.AdminUpdateUserAttributesInput, optFns ...func(*cip.Options)) (*cip.AdminUpdateUserAttributesOutput, error)
	AdminEnableUser(ctx context.Context, in *cip.AdminEnableUserInput, optFns ...func(*cip.Options)) (*cip.AdminEnableUserOutput, error)
	AdminDisableUser(ctx context.Context, in *cip.AdminDisableUserInput, optFns ...func(*cip.Options)) (*cip.AdminDisableUserOutput, error)
	AdminSetUserPassword(ctx context.Context, in *cip.AdminSetUserPasswordInput, optFns ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error)
	ListUsers(ctx context.Context, in *cip.ListUsersInput, optFns ...func(*cip.Options)) (*cip.ListUsersOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
}

// Gateway es seguro para uso concurrente; no guarda estado mutable.
type Gateway struct {
	api CognitoAPI
	now func() time.Time
}

func New(api CognitoAPI) *Gateway {
	return &Gateway{api: api, now: time.Now}
}

// call envuelve cada operación: log por op, métrica y mapeo de errores.
func (g *Gateway) call(ctx context.Context, op string, pool tenant.PoolConfig, fn func(context.Context) error) error {
	start := time.Now()
	err := mapError(op, fn(ctx))
	metrics.ObserveIdP(op, pool.Class, start, err)
	if err != nil {
		log := logger.From(ctx).With(
			logger.Layer("gateway"),
			logger.Component("idp"),
			logger.Op(op),
			logger.TenantClass(string(pool.Class)),
		)
		level := zap.WarnLevel
		if k := domain.KindOf(err); k == domain.KindUpstream || k == domain.KindConfiguration {
			level = zap.ErrorLevel
		}
		log.Log(level, "idp call failed", logger.Err(err))
	}
	return err
}
