// Package dto define los cuerpos de request/response de la API.
package dto

import (
	"github.com/dropDatabas3/accountsd/internal/accounts"
	"github.com/dropDatabas3/accountsd/internal/domain"
)

type CreateAccountRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	SendWelcomeEmail bool   `json:"sendWelcomeEmail"`
}

type UpdateAccountRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SetStatusRequest struct {
	Enabled *bool `json:"enabled"`
}

type AccountListResponse struct {
	Success bool               `json:"success"`
	Users   []accounts.Account `json:"users"`
	Count   int                `json:"count"`
}

type AccountResponse struct {
	Success bool             `json:"success"`
	User    accounts.Account `json:"user"`
}

type CreateAccountResponse struct {
	Success bool `json:"success"`
	accounts.CreateAccountResult
}

type DeleteAccountResponse struct {
	Success bool `json:"success"`
	accounts.DeleteAccountResult
}

type CredentialsResponse struct {
	Success     bool                 `json:"success"`
	Credentials accounts.Credentials `json:"credentials"`
}

type StatusResponse struct {
	Success  bool               `json:"success"`
	Username string             `json:"username"`
	Class    domain.TenantClass `json:"userType"`
	Enabled  bool               `json:"enabled"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
