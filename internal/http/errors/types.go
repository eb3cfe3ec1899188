// Package errors traduce errores de dominio a respuestas HTTP.
package errors

import (
	"fmt"
	"net/http"
)

// AppError es la forma estándar de un error expuesto por la API.
type AppError struct {
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	Detail     string        `json:"detail,omitempty"`
	HTTPStatus int           `json:"-"`
	RetryAfter int           `json:"-"` // segundos; 0 = sin header
	Err        error         `json:"-"` // causa, sólo para logs
	Fields     []FieldReason `json:"errors,omitempty"`
}

// FieldReason detalla una validación fallida.
type FieldReason struct {
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// WithDetail devuelve una COPIA para no mutar los errores base.
func (e *AppError) WithDetail(detail string) *AppError {
	n := *e
	n.Detail = detail
	return &n
}

func (e *AppError) WithCause(err error) *AppError {
	n := *e
	n.Err = err
	return &n
}

func (e *AppError) WithRetryAfter(seconds int) *AppError {
	n := *e
	n.RetryAfter = seconds
	return &n
}

// 400
var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Requête invalide.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "Le corps de la requête n'est pas un JSON valide.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrValidation = &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "Paramètres invalides.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrTokenInvalid = &AppError{
		Code:       "TOKEN_INVALID",
		Message:    "Token de réinitialisation invalide ou expiré",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrTokenExpired = &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "Token de réinitialisation expiré",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrTokenUsed = &AppError{
		Code:       "TOKEN_USED",
		Message:    "Token de réinitialisation déjà utilisé",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "Le corps de la requête est trop volumineux.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
)

// 401 / 403
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentification requise.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Accès refusé.",
		HTTPStatus: http.StatusForbidden,
	}
)

// 404 / 405 / 409
var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Ressource introuvable.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRouteNotFound = &AppError{
		Code:       "ROUTE_NOT_FOUND",
		Message:    "Route inexistante.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Méthode HTTP non autorisée.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrAlreadyExists = &AppError{
		Code:       "ALREADY_EXISTS",
		Message:    "Un compte avec cet email existe déjà.",
		HTTPStatus: http.StatusConflict,
	}
)

// 429
var ErrRateLimitExceeded = &AppError{
	Code:       "RATE_LIMIT_EXCEEDED",
	Message:    "Trop de tentatives. Veuillez réessayer plus tard.",
	HTTPStatus: http.StatusTooManyRequests,
}

// 5xx
var (
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Une erreur interne est survenue.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrConfiguration = &AppError{
		Code:       "CONFIGURATION_ERROR",
		Message:    "Service mal configuré.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrUpstream = &AppError{
		Code:       "UPSTREAM_ERROR",
		Message:    "Le fournisseur d'identité a échoué.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "Service temporairement indisponible.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
