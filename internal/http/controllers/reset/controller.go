// Package reset expone el flujo self-service de reset de password.
package reset

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/accountsd/internal/audit"
	"github.com/dropDatabas3/accountsd/internal/http/dto"
	httperrors "github.com/dropDatabas3/accountsd/internal/http/errors"
	"github.com/dropDatabas3/accountsd/internal/http/helpers"
	mw "github.com/dropDatabas3/accountsd/internal/http/middlewares"
	"github.com/dropDatabas3/accountsd/internal/reset"
)

const (
	msgTokenValid = "Token valide"
	msgConfirmed  = "Mot de passe réinitialisé avec succès. Vous pouvez maintenant vous connecter."
)

// Service es el subconjunto de *reset.Coordinator que usa el controller.
type Service interface {
	RequestReset(ctx context.Context, in reset.RequestResetInput) (reset.RequestResetResult, error)
	VerifyToken(ctx context.Context, id string) (reset.VerifiedToken, error)
	ConfirmReset(ctx context.Context, id, newPassword string) (reset.ConfirmResetResult, error)
	Stats(ctx context.Context) (reset.Stats, error)
}

type Controller struct {
	svc Service
}

func NewController(svc Service) *Controller {
	return &Controller{svc: svc}
}

// Request maneja POST /v1/password-reset/request
func (c *Controller) Request(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	res, err := c.svc.RequestReset(r.Context(), reset.RequestResetInput{
		Email:        req.Email,
		TenantClass:  req.UserType,
		CaptchaToken: req.CaptchaToken,
		ClientIP:     mw.ClientIP(r),
	})
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Success: true, Message: res.Message})
}

// Verify maneja GET /v1/password-reset/verify/{token}
func (c *Controller) Verify(w http.ResponseWriter, r *http.Request) {
	v, err := c.svc.VerifyToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ResetVerifyResponse{
		Success: true,
		Message: msgTokenValid,
		Email:   v.Email,
		Class:   v.TenantClass,
	})
}

// Confirm maneja POST /v1/password-reset/confirm
func (c *Controller) Confirm(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetConfirmRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	res, err := c.svc.ConfirmReset(r.Context(), req.Token, req.NewPassword)
	audit.Record(r.Context(), audit.Event{Action: audit.PasswordResetSet, TenantClass: res.TenantClass, Err: err})
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ResetConfirmResponse{
		Success:   true,
		Message:   msgConfirmed,
		Class:     res.TenantClass,
		LoginPath: res.LoginPath,
	})
}

// Stats maneja GET /v1/password-reset/stats (admin)
func (c *Controller) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := c.svc.Stats(r.Context())
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ResetStatsResponse{Success: true, Stats: st})
}
