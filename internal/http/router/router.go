// Package router arma el árbol de rutas chi del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	accountsctrl "github.com/dropDatabas3/accountsd/internal/http/controllers/accounts"
	authctrl "github.com/dropDatabas3/accountsd/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/accountsd/internal/http/controllers/health"
	resetctrl "github.com/dropDatabas3/accountsd/internal/http/controllers/reset"
	httperrors "github.com/dropDatabas3/accountsd/internal/http/errors"
	mw "github.com/dropDatabas3/accountsd/internal/http/middlewares"
	"github.com/dropDatabas3/accountsd/internal/rate"
)

// Deps contiene todo lo que el router necesita.
type Deps struct {
	Accounts *accountsctrl.Controller
	Reset    *resetctrl.Controller
	Auth     *authctrl.Controller
	Health   *healthctrl.Controller

	Tokens mw.TokenParser
	// ForgotLimiter limita /password-reset/request por IP. nil = sin límite.
	ForgotLimiter rate.Limiter
	// Metrics sirve /metrics; nil = no se expone.
	Metrics http.Handler
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithMetrics(),
	)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httperrors.WriteError(w, req, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httperrors.WriteError(w, req, httperrors.ErrMethodNotAllowed)
	})

	// Infra: sin logging por request (muy frecuentes).
	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.WithLogging(), mw.WithSecurityHeaders(), mw.WithNoStore())

		r.Route("/accounts/{class}", func(r chi.Router) {
			r.Use(mw.RequireAuth(d.Tokens), mw.RequireAdmin())
			r.Get("/", d.Accounts.List)
			r.Post("/", d.Accounts.Create)
			r.Route("/{username}", func(r chi.Router) {
				r.Get("/", d.Accounts.Get)
				r.Put("/", d.Accounts.Update)
				r.Delete("/", d.Accounts.Delete)
				r.Patch("/status", d.Accounts.SetStatus)
				r.Get("/credentials", d.Accounts.Credentials)
			})
		})

		r.Route("/password-reset", func(r chi.Router) {
			r.With(mw.WithRateLimit(mw.RateLimitConfig{Name: "forgot", Limiter: d.ForgotLimiter})).
				Post("/request", d.Reset.Request)
			r.Get("/verify/{token}", d.Reset.Verify)
			r.Post("/confirm", d.Reset.Confirm)
			r.With(mw.RequireAuth(d.Tokens), mw.RequireAdmin()).
				Get("/stats", d.Reset.Stats)
		})

		r.With(mw.RequireAuth(d.Tokens)).Post("/auth/change-password", d.Auth.ChangePassword)
	})
	return r
}
