// Package metrics exporta en Prometheus los contadores del libro de facturación.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
)

const namespace = "facturacion"

// Config etiquetas constantes de todas las series.
type Config struct {
	ServiceName string
	Environment string
}

var _ billing.Metrics = (*BillingMetrics)(nil)

// BillingMetrics implementa billing.Metrics.
type BillingMetrics struct {
	registry *prometheus.Registry

	invoicesCreated      *prometheus.CounterVec
	paymentsRegistered   *prometheus.CounterVec
	emissions            *prometheus.CounterVec
	emissionDuration     *prometheus.HistogramVec
	authorityTransitions *prometheus.CounterVec
	authorityAnomalies   prometheus.Counter
	ripsInvoices         *prometheus.CounterVec
	ripsBatches          prometheus.Counter
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
}

// New registra las métricas en un registro propio junto con los colectores de Go y del proceso.
func New(cfg Config) *BillingMetrics {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "facturacion-clinica"
	}
	if cfg.Environment == "" {
		cfg.Environment = "unknown"
	}
	labels := prometheus.Labels{"service": cfg.ServiceName, "environment": cfg.Environment}
	reg := prometheus.NewRegistry()

	m := &BillingMetrics{
		registry: reg,
		invoicesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "invoices_created_total",
			Help: "Facturas creadas por estado inicial.", ConstLabels: labels,
		}, []string{"status"}),
		paymentsRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "payments_registered_total",
			Help: "Pagos registrados por medio y estado resultante de la factura.", ConstLabels: labels,
		}, []string{"method", "resulting_status"}),
		emissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "dian_emissions_total",
			Help: "Envíos a la DIAN por resultado.", ConstLabels: labels,
		}, []string{"outcome"}),
		emissionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "dian_emission_duration_seconds",
			Help:        "Duración del envío a la DIAN (armado, firma y SOAP).",
			ConstLabels: labels,
			Buckets:     []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}),
		authorityTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "dian_status_transitions_total",
			Help: "Transiciones de estado DIAN aplicadas.", ConstLabels: labels,
		}, []string{"to"}),
		authorityAnomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "dian_status_anomalies_total",
			Help: "Respuestas DIAN que contradicen un estado terminal.", ConstLabels: labels,
		}),
		ripsInvoices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rips_invoices_total",
			Help: "Facturas procesadas en exportaciones RIPS.", ConstLabels: labels,
		}, []string{"result"}),
		ripsBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rips_batches_total",
			Help: "Lotes RIPS generados.", ConstLabels: labels,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "Peticiones HTTP por ruta, método y código.", ConstLabels: labels,
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help: "Latencia HTTP por ruta.", ConstLabels: labels,
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.invoicesCreated,
		m.paymentsRegistered,
		m.emissions,
		m.emissionDuration,
		m.authorityTransitions,
		m.authorityAnomalies,
		m.ripsInvoices,
		m.ripsBatches,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *BillingMetrics) InvoiceCreated(status entity.InvoiceStatus) {
	m.invoicesCreated.WithLabelValues(string(status)).Inc()
}

func (m *BillingMetrics) PaymentRegistered(method entity.PaymentMethod, resulting entity.InvoiceStatus) {
	m.paymentsRegistered.WithLabelValues(string(method), string(resulting)).Inc()
}

func (m *BillingMetrics) EmissionSubmitted(outcome string, elapsed time.Duration) {
	m.emissions.WithLabelValues(outcome).Inc()
	m.emissionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *BillingMetrics) AuthorityTransition(to entity.AuthorityStatus) {
	m.authorityTransitions.WithLabelValues(string(to)).Inc()
}

func (m *BillingMetrics) AuthorityAnomaly() {
	m.authorityAnomalies.Inc()
}

func (m *BillingMetrics) RIPSExported(exported, skipped int) {
	m.ripsBatches.Inc()
	m.ripsInvoices.WithLabelValues("exportada").Add(float64(exported))
	m.ripsInvoices.WithLabelValues("omitida").Add(float64(skipped))
}

// ObserveHTTP registra una petición atendida. route es el patrón de la ruta, no la URL.
func (m *BillingMetrics) ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler expone el registro en formato de texto de Prometheus.
func (m *BillingMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry registro subyacente.
func (m *BillingMetrics) Registry() *prometheus.Registry {
	return m.registry
}
