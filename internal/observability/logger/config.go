package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config describe cómo se construye el logger del servicio.
type Config struct {
	// Env: "prod" emite JSON; cualquier otro valor usa consola con colores.
	Env string
	// Level mínimo: debug | info | warn | error. Default info.
	Level string
	// ServiceName y Version se agregan como campos base si no están vacíos.
	ServiceName string
	Version     string
}

func (c Config) isProd() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "prod")
}

func (c Config) baseFields() []zap.Field {
	var fs []zap.Field
	if c.ServiceName != "" {
		fs = append(fs, zap.String("service", c.ServiceName))
	}
	if c.Version != "" {
		fs = append(fs, zap.String("version", c.Version))
	}
	return fs
}

// build arma el *zap.Logger. Nunca retorna nil.
func build(cfg Config) *zap.Logger {
	var zcfg zap.Config
	opts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}

	if cfg.isProd() {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	l, err := zcfg.Build(opts...)
	if err != nil {
		l, _ = zap.NewProduction()
	}
	return l.With(cfg.baseFields()...)
}

func parseLevel(lvl string) zapcore.Level {
	var level zapcore.Level
	s := strings.ToLower(strings.TrimSpace(lvl))
	if s == "warning" {
		s = "warn"
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}
