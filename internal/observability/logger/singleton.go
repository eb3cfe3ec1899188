package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu       sync.RWMutex
	instance *zap.Logger
)

// Init construye el logger global. Llamadas posteriores lo reemplazan
// (el binario lo llama una vez; los tests pueden usar Replace).
func Init(cfg Config) {
	Replace(build(cfg))
}

// Replace instala un logger ya construido (p.ej. zaptest o zap.NewNop).
func Replace(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	instance = l
	mu.Unlock()
}

// L retorna el logger global; si nadie llamó Init usa dev/info.
func L() *zap.Logger {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(Config{Level: "info"})
	return L()
}

// Named retorna un sub-logger con nombre de componente.
func Named(name string) *zap.Logger { return L().Named(name) }

// Sync flushea buffers; se llama con defer en main.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return nil
	}
	return instance.Sync()
}
