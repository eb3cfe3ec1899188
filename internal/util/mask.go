// Package util tiene helpers chicos sin dependencias del dominio.
package util

import "strings"

// MaskEmail deja la primera letra de la parte local y el dominio completo:
// "alice@example.com" -> "a***@example.com". Sin '@' oculta todo menos la
// primera letra.
func MaskEmail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	i := strings.LastIndexByte(s, '@')
	if i <= 0 {
		return s[:1] + "***"
	}
	return s[:1] + "***" + s[i:]
}
