// Package reset implementa el flujo de reset de password autoservicio:
// emisión, verificación y redención de un solo uso de tokens con TTL.
package reset

import (
	"context"
	"time"

	"github.com/dropDatabas3/accountsd/internal/domain"
	tokens "github.com/dropDatabas3/accountsd/internal/security/token"
)

// DefaultTTL de un token de reset.
const DefaultTTL = time.Hour

// IssueInput son los datos que quedan ligados al token.
type IssueInput struct {
	Email       string
	Username    string
	TenantClass domain.TenantClass
}

// Stats cuenta tokens: Active = !used && no expirado; Expired = expiresAt <= now.
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
	Used    int `json:"used"`
}

// TokenStore guarda tokens de reset. BeginRedeem es el único check-and-set
// y debe ser linealizable: de dos redenciones concurrentes gana exactamente una.
type TokenStore interface {
	// Issue crea un token pendiente y retorna su id.
	Issue(ctx context.Context, in IssueInput) (string, error)
	// Peek valida sin mutar.
	Peek(ctx context.Context, id string) (domain.ResetToken, error)
	// BeginRedeem marca el token como usado y retorna su contenido.
	BeginRedeem(ctx context.Context, id string) (domain.ResetToken, error)
	// Revert deshace BeginRedeem si el token todavía existe.
	Revert(ctx context.Context, id string) error
	// Finalize borra el token.
	Finalize(ctx context.Context, id string) error
	// SweepExpired borra los tokens con ExpiresAt < now y retorna cuántos.
	SweepExpired(ctx context.Context) (int, error)
	Stats(ctx context.Context) (Stats, error)
}

// Option configura un store.
type Option func(*options)

type options struct {
	ttl   time.Duration
	now   func() time.Time
	newID func() (string, error)
}

func WithTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithClock inyecta el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator reemplaza el generador de ids (tests).
func WithIDGenerator(fn func() (string, error)) Option {
	return func(o *options) { o.newID = fn }
}

func buildOptions(opts []Option) options {
	o := options{
		ttl:   DefaultTTL,
		now:   time.Now,
		newID: func() (string, error) { return tokens.GenerateOpaqueToken(tokens.ResetTokenBytes) },
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func countStats(now time.Time, all []domain.ResetToken) Stats {
	st := Stats{Total: len(all)}
	for _, t := range all {
		expired := t.Expired(now)
		if t.Used {
			st.Used++
		}
		if expired {
			st.Expired++
		}
		if !t.Used && !expired {
			st.Active++
		}
	}
	return st
}
