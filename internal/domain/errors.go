package domain

import (
	"errors"
	"fmt"
)

// Kind es el conjunto cerrado de fallas que cruzan los límites de componente.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUpstream
	KindToken
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	case KindToken:
		return "token"
	case KindConfiguration:
		return "configuration"
	}
	return "unknown"
}

// TokenReason detalla un error de tipo KindToken.
type TokenReason string

const (
	TokenInvalid TokenReason = "invalid"
	TokenExpired TokenReason = "expired"
	TokenUsed    TokenReason = "used"
)

// Error es el error de dominio. Code conserva el código del proveedor
// (p.ej. UsernameExistsException) para logs; nadie arriba del gateway lo inspecciona.
type Error struct {
	Kind      Kind
	Reason    TokenReason
	Code      string
	Msg       string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
		if e.Reason != "" {
			msg += ": " + string(e.Reason)
		}
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is compara por Kind (y Reason si el target la fija), así
// errors.Is(err, domain.ErrTokenUsed) funciona con cualquier instancia.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// Sentinels para errors.Is.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrUpstream      = &Error{Kind: KindUpstream}
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrToken         = &Error{Kind: KindToken}
	ErrTokenInvalid  = &Error{Kind: KindToken, Reason: TokenInvalid}
	ErrTokenExpired  = &Error{Kind: KindToken, Reason: TokenExpired}
	ErrTokenUsed     = &Error{Kind: KindToken, Reason: TokenUsed}
)

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Msg: fmt.Sprintf(format, args...)}
}

// Upstream envuelve una falla de un colaborador externo.
func Upstream(code string, retryable bool, err error) *Error {
	return &Error{Kind: KindUpstream, Code: code, Msg: "upstream failure", Retryable: retryable, Err: err}
}

func TokenError(reason TokenReason) *Error {
	return &Error{Kind: KindToken, Reason: reason}
}

// KindOf retorna el Kind del primer *Error de la cadena, o KindUnknown.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// TokenReasonOf retorna la razón si err es un error de token.
func TokenReasonOf(err error) (TokenReason, bool) {
	var de *Error
	if errors.As(err, &de) && de.Kind == KindToken {
		return de.Reason, true
	}
	return "", false
}

// IsRetryable reporta si el colaborador indicó throttling.
func IsRetryable(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Retryable
}
