package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

var _ inventory.Metrics = (*Collector)(nil)

// Collector contadores del inventario y del transporte HTTP.
type Collector struct {
	movements     *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	compensations prometheus.Counter
	retries       prometheus.Counter

	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewCollector crea y registra los colectores en reg (prometheus.DefaultRegisterer en producción).
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		movements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_movements_total",
				Help: "Movimientos confirmados en el libro por tipo",
			},
			[]string{"type"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_rejections_total",
				Help: "Operaciones rechazadas por motivo",
			},
			[]string{"reason"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_transfer_transitions_total",
				Help: "Transiciones de traslados por estado destino",
			},
			[]string{"status"},
		),
		compensations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_compensation_failures_total",
			Help: "Cancelaciones en tránsito cuya compensación no se pudo escribir",
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_concurrency_retries_total",
			Help: "Reintentos por conflicto de concurrencia",
		}),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_http_requests_total",
				Help: "Solicitudes HTTP atendidas",
			},
			[]string{"method", "route", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inventory_http_request_duration_seconds",
				Help:    "Duración de las solicitudes HTTP en segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(c.movements, c.rejections, c.transitions, c.compensations, c.retries,
		c.requests, c.requestLatency)
	return c
}

func (c *Collector) MovementRecorded(t entity.MovementType) {
	c.movements.WithLabelValues(string(t)).Inc()
}

func (c *Collector) Rejected(reason string) {
	c.rejections.WithLabelValues(reason).Inc()
}

func (c *Collector) TransferTransition(status entity.TransferStatus) {
	c.transitions.WithLabelValues(string(status)).Inc()
}

func (c *Collector) CompensationFailed() { c.compensations.Inc() }

func (c *Collector) ConcurrencyRetry() { c.retries.Inc() }

// ObserveRequest registra una solicitud HTTP. route es el patrón (/api/transfers/:id), no la URL.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}
