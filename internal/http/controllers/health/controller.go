// Package health contiene liveness y readiness.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/accountsd/internal/http/dto"
	"github.com/dropDatabas3/accountsd/internal/http/helpers"
	"github.com/dropDatabas3/accountsd/internal/observability/logger"
)

// Check es una dependencia a verificar en /readyz.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

type Controller struct {
	checks  []Check
	version string
	timeout time.Duration
}

func NewController(version string, checks ...Check) *Controller {
	sort.Slice(checks, func(i, j int) bool { return checks[i].Name < checks[j].Name })
	return &Controller{checks: checks, version: version, timeout: 3 * time.Second}
}

// Healthz maneja GET /healthz: el proceso está vivo.
func (c *Controller) Healthz(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz maneja GET /readyz: corre todos los checks en paralelo.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	resp := dto.HealthResponse{
		Status:     "ready",
		Version:    c.version,
		Components: make(map[string]dto.HealthStatus, len(c.checks)),
		Timestamp:  time.Now().UTC(),
	}

	var mu sync.Mutex
	// Los checks no se cancelan entre sí.
	var g errgroup.Group
	for _, chk := range c.checks {
		g.Go(func() error {
			st := dto.HealthStatus{Status: "ok"}
			if err := chk.Fn(ctx); err != nil {
				st = dto.HealthStatus{Status: "error", Message: err.Error()}
				log.Warn("readiness check failed", logger.Component(chk.Name), logger.Err(err))
			}
			mu.Lock()
			resp.Components[chk.Name] = st
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	for _, st := range resp.Components {
		if st.Status != "ok" {
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			break
		}
	}
	helpers.WriteJSON(w, status, resp)
}
