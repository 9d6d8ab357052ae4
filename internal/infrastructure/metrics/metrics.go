// Package metrics contadores Prometheus del servicio, expuestos en /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "price_catalog"

// Metrics registro propio (no el global) para poder crear varios en tests.
type Metrics struct {
	registry *prometheus.Registry

	cartMutations   *prometheus.CounterVec
	cartPersistFail prometheus.Counter
	cacheLookups    *prometheus.CounterVec
	importRows      *prometheus.CounterVec
}

// New registra los contadores y los colectores de runtime.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		cartMutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Mutaciones de carrito por operación.",
		}, []string{"op"}),
		cartPersistFail: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_persist_failures_total",
			Help:      "Escrituras de carrito fallidas (el estado en memoria se conserva).",
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_lookups_total",
			Help:      "Consultas a la caché del catálogo por resultado.",
		}, []string{"result"}),
		importRows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Filas de la lista de precios procesadas por resultado.",
		}, []string{"result"}),
	}
}

// CartMutation implementa cart.Metrics.
func (m *Metrics) CartMutation(op string) { m.cartMutations.WithLabelValues(op).Inc() }

// CartPersistFailed implementa cart.Metrics.
func (m *Metrics) CartPersistFailed() { m.cartPersistFail.Inc() }

// CacheHit / CacheMiss caché del catálogo.
func (m *Metrics) CacheHit()  { m.cacheLookups.WithLabelValues("hit").Inc() }
func (m *Metrics) CacheMiss() { m.cacheLookups.WithLabelValues("miss").Inc() }

// ImportRows filas cargadas y descartadas de una importación.
func (m *Metrics) ImportRows(loaded, skipped int) {
	m.importRows.WithLabelValues("loaded").Add(float64(loaded))
	m.importRows.WithLabelValues("skipped").Add(float64(skipped))
}

// Registry registro subyacente.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler handler net/http de promhttp (se monta en fiber con adaptor).
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
