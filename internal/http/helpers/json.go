// Package helpers agrupa utilidades compartidas por los controllers.
package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/accountsd/internal/domain"
	httperrors "github.com/dropDatabas3/accountsd/internal/http/errors"
)

const maxBodyBytes = 1 << 20

// ReadJSON decodifica el body (máx 1MB, campos desconocidos se ignoran).
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if ct != "" && !strings.Contains(ct, "application/json") {
		return httperrors.ErrBadRequest.WithDetail("Content-Type must be application/json")
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return httperrors.ErrBodyTooLarge
		case errors.Is(err, io.EOF):
			return httperrors.ErrInvalidJSON.WithDetail("empty body")
		default:
			return httperrors.ErrInvalidJSON.WithCause(err)
		}
	}
	return nil
}

// WriteJSON escribe una respuesta JSON.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// TenantClassParam lee {class} de la ruta (acepta alias client/internal).
func TenantClassParam(r *http.Request) (domain.TenantClass, error) {
	return domain.ParseTenantClass(chi.URLParam(r, "class"))
}

// UsernameParam lee {username}; chi ya lo entrega sin escapar.
func UsernameParam(r *http.Request) (string, error) {
	u := strings.TrimSpace(chi.URLParam(r, "username"))
	if u == "" {
		return "", domain.Validation("username is required")
	}
	return u, nil
}
