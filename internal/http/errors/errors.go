package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/observability/logger"
)

// retryAfterSeconds se envía cuando el IdP pidió reintentar (throttling).
const retryAfterSeconds = 5

type errorResponse struct {
	Success bool          `json:"success"`
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Detail  string        `json:"detail,omitempty"`
	Errors  []FieldReason `json:"errors,omitempty"`
}

// FromError convierte cualquier error en *AppError. Los errores de dominio
// se mapean por Kind; el resto termina en 500 conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var de *domain.Error
	if !stderrors.As(err, &de) {
		return ErrInternalServerError.WithCause(err)
	}

	switch de.Kind {
	case domain.KindValidation:
		return ErrValidation.WithDetail(de.Msg).WithCause(err)
	case domain.KindNotFound:
		return ErrNotFound.WithCause(err)
	case domain.KindConflict:
		return ErrAlreadyExists.WithCause(err)
	case domain.KindToken:
		switch de.Reason {
		case domain.TokenExpired:
			return ErrTokenExpired.WithCause(err)
		case domain.TokenUsed:
			return ErrTokenUsed.WithCause(err)
		default:
			return ErrTokenInvalid.WithCause(err)
		}
	case domain.KindUpstream:
		if de.Retryable {
			return ErrServiceUnavailable.WithRetryAfter(retryAfterSeconds).WithCause(err)
		}
		return ErrUpstream.WithCause(err)
	case domain.KindConfiguration:
		return ErrConfiguration.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

// WriteError escribe la respuesta JSON; los 5xx se registran con la causa.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := FromError(err)

	if appErr.HTTPStatus >= 500 && r != nil {
		logger.From(r.Context()).Error("request failed",
			logger.Layer("http"),
			logger.String("code", appErr.Code),
			logger.Err(appErr.Err),
		)
	}

	if appErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(appErr.RetryAfter))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
		Errors:  appErr.Fields,
	})
}
