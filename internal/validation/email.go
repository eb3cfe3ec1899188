// Package validation agrupa chequeos de formato sobre la entrada de la API.
package validation

import (
	"regexp"
	"strings"
)

// Mismo patrón que el formulario de alta: algo@algo.algo, sin espacios
// ni arrobas extra.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MaxEmailLength es el límite de RFC 5321 para una dirección completa.
const MaxEmailLength = 254

func ValidEmail(s string) bool {
	return len(s) <= MaxEmailLength && emailRe.MatchString(s)
}

// NormalizeEmail recorta espacios y baja a minúsculas el dominio. La parte
// local se conserva porque el IdP la compara tal cual.
func NormalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	i := strings.LastIndexByte(s, '@')
	if i < 0 {
		return s
	}
	return s[:i+1] + strings.ToLower(s[i+1:])
}
