package reset

import (
	"context"
	"time"

	"github.com/dropDatabas3/accountsd/internal/metrics"
	"github.com/dropDatabas3/accountsd/internal/observability/logger"
)

// DefaultSweepInterval entre barridos de tokens vencidos.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper elimina periódicamente los tokens vencidos. Los errores se loguean
// y el loop sigue; termina cuando se cancela el contexto.
type Sweeper struct {
	store    TokenStore
	interval time.Duration
}

func NewSweeper(store TokenStore, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{store: store, interval: interval}
}

// Run bloquea hasta ctx.Done(); siempre retorna nil.
func (s *Sweeper) Run(ctx context.Context) error {
	log := logger.From(ctx).With(logger.Component("reset.sweeper"))
	log.Info("token sweeper started", logger.Duration(s.interval))

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("token sweeper stopped")
			return nil
		case <-t.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) int {
	n, err := s.store.SweepExpired(ctx)
	if err != nil {
		logger.From(ctx).Warn("token sweep failed", logger.Component("reset.sweeper"), logger.Err(err))
		return 0
	}
	if n > 0 {
		metrics.ResetEvents.WithLabelValues("swept").Add(float64(n))
		logger.From(ctx).Debug("expired tokens swept", logger.Count(n))
	}
	return n
}
