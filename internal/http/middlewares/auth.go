package middlewares

import (
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/accountsd/internal/http/errors"
	"github.com/dropDatabas3/accountsd/internal/jwt"
)

// TokenParser valida un bearer token (*jwt.Issuer).
type TokenParser interface {
	Parse(raw string) (jwt.Principal, error)
}

// RequireAuth valida Authorization: Bearer <JWT> y guarda el Principal en el contexto.
func RequireAuth(parser TokenParser) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				httperrors.WriteError(w, r, httperrors.ErrUnauthorized.WithDetail("missing bearer token"))
				return
			}

			p, err := parser.Parse(ah[7:])
			if err != nil {
				desc := "invalid token"
				if errors.Is(err, jwt.ErrExpiredToken) {
					desc = "token expired"
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="`+desc+`"`)
				httperrors.WriteError(w, r, httperrors.ErrUnauthorized.WithDetail(desc))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAdmin exige el rol de administración. Debe ir después de RequireAuth.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				httperrors.WriteError(w, r, httperrors.ErrUnauthorized)
				return
			}
			if !p.IsAdmin() {
				httperrors.WriteError(w, r, httperrors.ErrForbidden.WithDetail("admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
