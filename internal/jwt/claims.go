package jwt

import (
	"slices"
	"strings"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/accountsd/internal/domain"
)

// RoleAdmin habilita la API de administración de cuentas.
const RoleAdmin = "accounts:admin"

// Claims de los bearer tokens que acepta el servicio.
type Claims struct {
	Username    string   `json:"username,omitempty"`
	TenantClass string   `json:"tenant_class,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	jwtv5.RegisteredClaims
}

// Principal es la identidad autenticada que se guarda en el contexto del request.
type Principal struct {
	Subject     string
	Username    string
	TenantClass domain.TenantClass
	Roles       []string
}

func (p Principal) IsAdmin() bool {
	return slices.ContainsFunc(p.Roles, func(r string) bool { return strings.EqualFold(r, RoleAdmin) })
}

// LoginName: username si vino, si no el sub.
func (p Principal) LoginName() string {
	if p.Username != "" {
		return p.Username
	}
	return p.Subject
}
