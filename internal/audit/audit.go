// Package audit registra las acciones que modifican cuentas o credenciales.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/observability/logger"
)

// Acciones auditadas.
const (
	AccountCreated   = "account.created"
	AccountUpdated   = "account.updated"
	AccountDeleted   = "account.deleted"
	AccountEnabled   = "account.enabled"
	AccountDisabled  = "account.disabled"
	PasswordChanged  = "password.changed"
	PasswordResetSet = "password.reset_confirmed"
)

// Event describe una acción. Actor vacío = anónimo (p.ej. reset por token).
type Event struct {
	Action      string
	Actor       string
	TenantClass domain.TenantClass
	Target      string
	Err         error
}

// Record escribe el evento en el logger "audit" del contexto.
func Record(ctx context.Context, e Event) {
	fields := []zap.Field{
		logger.String("action", e.Action),
		logger.TenantClass(e.TenantClass.String()),
	}
	if e.Actor != "" {
		fields = append(fields, logger.String("actor", e.Actor))
	}
	if e.Target != "" {
		fields = append(fields, logger.Email(e.Target))
	}

	log := logger.From(ctx).Named("audit")
	if e.Err != nil {
		log.Warn("audit", append(fields, logger.String("outcome", "failure"), logger.Err(e.Err))...)
		return
	}
	log.Info("audit", append(fields, logger.String("outcome", "success"))...)
}
