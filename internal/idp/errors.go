package idp

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"

	"github.com/dropDatabas3/accountsd/internal/domain"
)

// Códigos de Cognito que el gateway distingue.
const (
	codeUsernameExists   = "UsernameExistsException"
	codeAliasExists      = "AliasExistsException"
	codeUserNotFound     = "UserNotFoundException"
	codeResourceNotFound = "ResourceNotFoundException"
	codeInvalidPassword  = "InvalidPasswordException"
	codeInvalidParameter = "InvalidParameterException"
	codeCodeMismatch     = "CodeMismatchException"
	codeNotAuthorized    = "NotAuthorizedException"
	codeUserNotConfirmed = "UserNotConfirmedException"
	codeResetRequired    = "PasswordResetRequiredException"
	codeTooManyRequests  = "TooManyRequestsException"
	codeLimitExceeded    = "LimitExceededException"
)

// providerCode retorna el código de error del proveedor, o "" si no es un APIError.
func providerCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// mapError traduce errores del SDK al domain.Error. Errores ya mapeados pasan intactos.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	code := providerCode(err)
	var out *domain.Error
	switch code {
	case codeUsernameExists, codeAliasExists:
		out = domain.Conflict("%s: identity already exists", op)
	case codeUserNotFound, codeResourceNotFound:
		out = domain.NotFound("%s: identity not found", op)
	case codeInvalidPassword, codeInvalidParameter, codeCodeMismatch:
		out = domain.Validation("%s: rejected by identity provider", op)
	case codeTooManyRequests, codeLimitExceeded:
		out = domain.Upstream(code, true, nil)
	default:
		retry := errors.Is(err, context.DeadlineExceeded)
		out = domain.Upstream(code, retry, nil)
	}
	if out.Kind == domain.KindUpstream {
		out.Msg = op + ": identity provider failure"
	}
	out.Code = code
	out.Err = err
	return out
}

// isRejectedCredentials: respuestas de InitiateAuth que significan "credenciales inválidas".
func isRejectedCredentials(err error) bool {
	switch providerCode(err) {
	case codeNotAuthorized, codeUserNotFound, codeUserNotConfirmed, codeResetRequired:
		return true
	}
	return false
}
