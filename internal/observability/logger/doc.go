// Package logger expone un zap.Logger global con scoping por contexto.
//
// Inicialización (una vez, en main):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "accountsd"})
//	defer logger.Sync()
//
// En services y handlers:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("DeleteAccount"))
//	log.Warn("profile cleanup failed", logger.Err(err))
//
// Los middlewares HTTP inyectan un logger con request_id vía ToContext.
// Nunca loguear passwords ni tokens de reset completos (usar TokenRef).
package logger
