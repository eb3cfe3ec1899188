// Package auth expone operaciones del propio usuario autenticado.
package auth

import (
	"context"
	"net/http"

	"github.com/dropDatabas3/accountsd/internal/audit"
	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/http/dto"
	httperrors "github.com/dropDatabas3/accountsd/internal/http/errors"
	"github.com/dropDatabas3/accountsd/internal/http/helpers"
	mw "github.com/dropDatabas3/accountsd/internal/http/middlewares"
)

type PasswordChanger interface {
	ChangePassword(ctx context.Context, class domain.TenantClass, username, current, next string) error
}

type Controller struct {
	svc PasswordChanger
}

func NewController(svc PasswordChanger) *Controller {
	return &Controller{svc: svc}
}

// ChangePassword maneja POST /v1/auth/change-password. La clase y el usuario
// salen del token, nunca del body.
func (c *Controller) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := mw.GetPrincipal(r.Context())
	if !ok {
		httperrors.WriteError(w, r, httperrors.ErrUnauthorized)
		return
	}
	if !p.TenantClass.Valid() {
		httperrors.WriteError(w, r, httperrors.ErrForbidden.WithDetail("token has no tenant class"))
		return
	}

	var req dto.ChangePasswordRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	err := c.svc.ChangePassword(r.Context(), p.TenantClass, p.LoginName(), req.CurrentPassword, req.NewPassword)
	audit.Record(r.Context(), audit.Event{Action: audit.PasswordChanged, Actor: p.Subject, TenantClass: p.TenantClass, Target: p.LoginName(), Err: err})
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Success: true, Message: "Mot de passe modifié avec succès"})
}
