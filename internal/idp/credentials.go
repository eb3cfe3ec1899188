package idp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/dropDatabas3/accountsd/internal/tenant"
)

// SecretHash = base64(HMAC-SHA256(key=clientSecret, msg=username+clientID)).
func SecretHash(username, clientID, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// AuthenticateWithPassword valida credenciales con USER_PASSWORD_AUTH.
// Credenciales rechazadas retornan (false, nil); solo fallas del proveedor son error.
func (g *Gateway) AuthenticateWithPassword(ctx context.Context, pool tenant.PoolConfig, username, password string) (bool, error) {
	ok := false
	err := g.call(ctx, "AuthenticateWithPassword", pool, func(ctx context.Context) error {
		_, err := g.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
			AuthFlow: types.AuthFlowTypeUserPasswordAuth,
			ClientId: aws.String(pool.ClientID),
			AuthParameters: map[string]string{
				"USERNAME":    username,
				"PASSWORD":    password,
				"SECRET_HASH": SecretHash(username, pool.ClientID, pool.ClientSecret),
			},
		})
		if err != nil {
			if isRejectedCredentials(err) {
				return nil
			}
			return err
		}
		ok = true
		return nil
	})
	return ok, err
}

// SetPermanentPassword fija la password sin requerir cambio en el próximo login.
func (g *Gateway) SetPermanentPassword(ctx context.Context, pool tenant.PoolConfig, username, password string) error {
	return g.call(ctx, "SetPermanentPassword", pool, func(ctx context.Context) error {
		_, err := g.api.AdminSetUserPassword(ctx, &cip.AdminSetUserPasswordInput{
			UserPoolId: aws.String(pool.PoolID),
			Username:   aws.String(username),
			Password:   aws.String(password),
			Permanent:  true,
		})
		return err
	})
}
