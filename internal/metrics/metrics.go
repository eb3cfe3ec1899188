// Package metrics concentra los collectors Prometheus del servicio.
// Vive aparte de internal/http para que gateway y services puedan importarlo sin ciclos.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/accountsd/internal/domain"
)

var (
	IdPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "idp_requests_total",
		Help: "Llamadas al IdP por operación, clase de tenant y resultado",
	}, []string{"op", "class", "result"})

	IdPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "idp_request_duration_seconds",
		Help:    "Latencia de llamadas al IdP",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	AccountOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "account_operations_total",
		Help: "Operaciones de cuentas por resultado (ok | partial | error)",
	}, []string{"op", "class", "outcome"})

	ResetEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "password_reset_events_total",
		Help: "Eventos del flujo de reset",
	}, []string{"event"}) // requested|issued|send_failed|confirmed|confirm_failed|swept

	RateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limited_total",
		Help: "Requests rechazadas por rate limit",
	}, []string{"route"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	HTTPInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "Requests en vuelo",
	})
)

// Register registra todos los collectors; los duplicados se ignoran.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		IdPRequests, IdPDuration, AccountOps, ResetEvents, RateLimited,
		HTTPRequests, HTTPDuration, HTTPInflight,
	} {
		if err := registerCollector(reg, c); err != nil {
			return err
		}
	}
	return nil
}

func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// ResultLabel traduce un error a etiqueta: "ok" o el Kind del dominio.
func ResultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.KindOf(err).String()
}

// ObserveIdP registra una llamada al IdP.
func ObserveIdP(op string, class domain.TenantClass, start time.Time, err error) {
	IdPRequests.WithLabelValues(op, string(class), ResultLabel(err)).Inc()
	IdPDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveAccountOp: partial=true cuando la operación tuvo éxito con un efecto secundario fallido.
func ObserveAccountOp(op string, class domain.TenantClass, partial bool, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case partial:
		outcome = "partial"
	}
	AccountOps.WithLabelValues(op, string(class), outcome).Inc()
}

func ResetEvent(event string) {
	ResetEvents.WithLabelValues(event).Inc()
}

// TokenStats es lo que expone el collector de tokens de reset.
type TokenStats struct {
	Total, Active, Expired, Used int
}

// TokenStatsFunc se consulta en cada scrape.
type TokenStatsFunc func(ctx context.Context) (TokenStats, error)

type tokenCollector struct {
	fn   TokenStatsFunc
	desc *prometheus.Desc
}

// RegisterTokenCollector expone password_reset_tokens{state=...} como gauge.
func RegisterTokenCollector(reg prometheus.Registerer, fn TokenStatsFunc) error {
	c := &tokenCollector{
		fn:   fn,
		desc: prometheus.NewDesc("password_reset_tokens", "Tokens de reset en el store por estado", []string{"state"}, nil),
	}
	return registerCollector(reg, c)
}

func (c *tokenCollector) Describe(ch chan<- *prometheus.Desc) { ch <- c.desc }

func (c *tokenCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := c.fn(ctx)
	if err != nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(st.Total), "total")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(st.Active), "active")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(st.Expired), "expired")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(st.Used), "used")
}
