// Package accounts expone el ciclo de vida de cuentas por clase de tenant.
package accounts

import (
	"context"
	"net/http"

	"github.com/dropDatabas3/accountsd/internal/accounts"
	"github.com/dropDatabas3/accountsd/internal/audit"
	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/http/dto"
	httperrors "github.com/dropDatabas3/accountsd/internal/http/errors"
	"github.com/dropDatabas3/accountsd/internal/http/helpers"
	mw "github.com/dropDatabas3/accountsd/internal/http/middlewares"
)

// Service es el subconjunto de *accounts.Service que usa el controller.
type Service interface {
	ListAccounts(ctx context.Context, class domain.TenantClass) ([]accounts.Account, error)
	GetAccount(ctx context.Context, class domain.TenantClass, username string) (accounts.Account, error)
	CreateAccount(ctx context.Context, class domain.TenantClass, in accounts.CreateAccountInput) (accounts.CreateAccountResult, error)
	DeleteAccount(ctx context.Context, class domain.TenantClass, username string) (accounts.DeleteAccountResult, error)
	UpdateAccount(ctx context.Context, class domain.TenantClass, username string, in accounts.UpdateAccountInput) error
	SetAccountEnabled(ctx context.Context, class domain.TenantClass, username string, enabled bool) error
	GetCredentials(ctx context.Context, class domain.TenantClass, username string) (accounts.Credentials, error)
}

type Controller struct {
	svc Service
}

func NewController(svc Service) *Controller {
	return &Controller{svc: svc}
}

// List maneja GET /v1/accounts/{class}
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	class, err := helpers.TenantClassParam(r)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	accs, err := c.svc.ListAccounts(r.Context(), class)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	if accs == nil {
		accs = []accounts.Account{}
	}
	helpers.WriteJSON(w, http.StatusOK, dto.AccountListResponse{Success: true, Users: accs, Count: len(accs)})
}

// Create maneja POST /v1/accounts/{class}
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	class, err := helpers.TenantClassParam(r)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	var req dto.CreateAccountRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	res, err := c.svc.CreateAccount(r.Context(), class, accounts.CreateAccountInput{
		DisplayName:             req.Name,
		Email:                   req.Email,
		Password:                req.Password,
		SendWelcomeNotification: req.SendWelcomeEmail,
	})
	record(r, audit.AccountCreated, class, req.Email, err)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, dto.CreateAccountResponse{Success: true, CreateAccountResult: res})
}

// Get maneja GET /v1/accounts/{class}/{username}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	class, username, ok := params(w, r)
	if !ok {
		return
	}
	acc, err := c.svc.GetAccount(r.Context(), class, username)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.AccountResponse{Success: true, User: acc})
}

// Update maneja PUT /v1/accounts/{class}/{username}
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	class, username, ok := params(w, r)
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	err := c.svc.UpdateAccount(r.Context(), class, username, accounts.UpdateAccountInput{
		DisplayName: req.Name,
		Email:       req.Email,
	})
	record(r, audit.AccountUpdated, class, username, err)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MessageResponse{Success: true, Message: "Utilisateur mis à jour"})
}

// Delete maneja DELETE /v1/accounts/{class}/{username}. Un fallo en la
// limpieza del perfil se informa en el cuerpo con status 200.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	class, username, ok := params(w, r)
	if !ok {
		return
	}
	res, err := c.svc.DeleteAccount(r.Context(), class, username)
	record(r, audit.AccountDeleted, class, username, err)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.DeleteAccountResponse{Success: true, DeleteAccountResult: res})
}

// SetStatus maneja PATCH /v1/accounts/{class}/{username}/status
func (c *Controller) SetStatus(w http.ResponseWriter, r *http.Request) {
	class, username, ok := params(w, r)
	if !ok {
		return
	}
	var req dto.SetStatusRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	if req.Enabled == nil {
		httperrors.WriteError(w, r, domain.Validation("enabled is required"))
		return
	}
	err := c.svc.SetAccountEnabled(r.Context(), class, username, *req.Enabled)
	action := audit.AccountDisabled
	if *req.Enabled {
		action = audit.AccountEnabled
	}
	record(r, action, class, username, err)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.StatusResponse{Success: true, Username: username, Class: class, Enabled: *req.Enabled})
}

// Credentials maneja GET /v1/accounts/{class}/{username}/credentials
func (c *Controller) Credentials(w http.ResponseWriter, r *http.Request) {
	class, username, ok := params(w, r)
	if !ok {
		return
	}
	creds, err := c.svc.GetCredentials(r.Context(), class, username)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.CredentialsResponse{Success: true, Credentials: creds})
}

func params(w http.ResponseWriter, r *http.Request) (domain.TenantClass, string, bool) {
	class, err := helpers.TenantClassParam(r)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return "", "", false
	}
	username, err := helpers.UsernameParam(r)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return "", "", false
	}
	return class, username, true
}

func record(r *http.Request, action string, class domain.TenantClass, target string, err error) {
	e := audit.Event{Action: action, TenantClass: class, Target: target, Err: err}
	if p, ok := mw.GetPrincipal(r.Context()); ok {
		e.Actor = p.Subject
	}
	audit.Record(r.Context(), e)
}
