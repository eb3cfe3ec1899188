// Package tenant resuelve la configuración del pool del IdP para cada clase de cuenta.
package tenant

import (
	"strings"

	"github.com/dropDatabas3/accountsd/internal/domain"
)

// PoolConfig identifica un pool del IdP y el app client usado contra él.
type PoolConfig struct {
	Class        domain.TenantClass
	PoolID       string
	ClientID     string
	ClientSecret string
}

func (p PoolConfig) missing() []string {
	var out []string
	if strings.TrimSpace(p.PoolID) == "" {
		out = append(out, "pool_id")
	}
	if strings.TrimSpace(p.ClientID) == "" {
		out = append(out, "client_id")
	}
	if strings.TrimSpace(p.ClientSecret) == "" {
		out = append(out, "client_secret")
	}
	return out
}

// Registry es inmutable después de NewRegistry; no necesita locks.
type Registry struct {
	pools map[domain.TenantClass]PoolConfig
}

// NewRegistry copia las configs. Las incompletas se aceptan y fallan
// recién en Resolve, así un pool mal configurado no tumba a los demás.
func NewRegistry(pools ...PoolConfig) *Registry {
	r := &Registry{pools: make(map[domain.TenantClass]PoolConfig, len(pools))}
	for _, p := range pools {
		r.pools[p.Class] = p
	}
	return r
}

// Resolve retorna la config del pool o un error de configuración.
func (r *Registry) Resolve(class domain.TenantClass) (PoolConfig, error) {
	if !class.Valid() {
		return PoolConfig{}, domain.Configuration("unknown tenant class %q", class)
	}
	p, ok := r.pools[class]
	if !ok {
		return PoolConfig{}, domain.Configuration("tenant class %q has no pool configured", class)
	}
	if m := p.missing(); len(m) > 0 {
		return PoolConfig{}, domain.Configuration("tenant class %q missing %s", class, strings.Join(m, ", "))
	}
	return p, nil
}

// Classes lista las clases con pool completo, en orden estable.
func (r *Registry) Classes() []domain.TenantClass {
	var out []domain.TenantClass
	for _, c := range domain.TenantClasses() {
		if _, err := r.Resolve(c); err == nil {
			out = append(out, c)
		}
	}
	return out
}
