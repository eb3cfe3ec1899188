package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/accountsd/internal/util"
)

// =================================================================================
// CAMPOS - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// =================================================================================
// CAMPOS - CUENTAS
// =================================================================================

// TenantClass identifica la clase de tenant (customer, staff, admin).
func TenantClass(v string) zap.Field { return zap.String("tenant_class", v) }

// Username es el username del IdP (hoy coincide con el email).
func Username(v string) zap.Field { return zap.String("username", v) }

// SubjectID es el sub estable del IdP, clave de unión con los perfiles.
func SubjectID(v string) zap.Field { return zap.String("subject_id", v) }

// Email se loguea enmascarado.
func Email(v string) zap.Field { return zap.String("email", util.MaskEmail(v)) }

// TokenRef loguea solo un prefijo del token de reset, nunca el valor entero.
func TokenRef(id string) zap.Field {
	if len(id) > 8 {
		id = id[:8]
	}
	return zap.String("token_ref", id)
}

// MessageID del proveedor de email.
func MessageID(v string) zap.Field { return zap.String("message_id", v) }

// =================================================================================
// CAMPOS - SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer: handler | service | gateway | store.
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }
func Count(v int) zap.Field { return zap.Int("count", v) }

func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
