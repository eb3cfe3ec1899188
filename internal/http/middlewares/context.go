package middlewares

import (
	"context"

	"github.com/dropDatabas3/accountsd/internal/jwt"
)

type ctxKey string

const (
	ctxRequestIDKey ctxKey = "request_id"
	ctxPrincipalKey ctxKey = "principal"
)

func setRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, id)
}

// GetRequestID retorna "" si WithRequestID no corrió.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxRequestIDKey).(string)
	return v
}

// WithPrincipal inyecta la identidad autenticada.
func WithPrincipal(ctx context.Context, p jwt.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

// GetPrincipal obtiene la identidad autenticada; ok=false si no hubo auth.
func GetPrincipal(ctx context.Context) (jwt.Principal, bool) {
	p, ok := ctx.Value(ctxPrincipalKey).(jwt.Principal)
	return p, ok
}
