// Package metrics holds Prometheus collectors of the chat server.
// Every method is nil-safe, so components may run without metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request kinds used as label values.
const (
	RequestSend       = "send"
	RequestFetchSince = "fetch_since"
	RequestInvalid    = "invalid"
)

// Registry - chat server collectors bound to private prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	connectionsAccepted prometheus.Counter
	connectionsActive   prometheus.Gauge
	connectionsClosed   *prometheus.CounterVec
	acceptErrors        prometheus.Counter
	requests            *prometheus.CounterVec
	historyMessages     prometheus.Gauge
	workerPanics        prometheus.Counter
	queueDepth          prometheus.Gauge
	workersBusy         prometheus.Gauge
}

// NewRegistry - creates collectors. Separate registries do not conflict with each other,
// so several servers may live in one process (tests do so).
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Registry{
		reg: reg,
		connectionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_connections_accepted_total",
			Help: "Total number of accepted client connections",
		}),
		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chat_connections_active",
			Help: "Current number of open client connections",
		}),
		connectionsClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_connections_closed_total",
			Help: "Total number of closed client connections by reason",
		}, []string{"reason"}),
		acceptErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_accept_errors_total",
			Help: "Total number of failed accept calls",
		}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of handled requests by kind",
		}, []string{"kind"}),
		historyMessages: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chat_history_messages",
			Help: "Number of messages in chat history",
		}),
		workerPanics: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_worker_panics_total",
			Help: "Total number of jobs recovered from panic",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chat_worker_queue_depth",
			Help: "Current number of jobs waiting for a free worker",
		}),
		workersBusy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chat_workers_busy",
			Help: "Current number of workers executing a job",
		}),
	}
}

// Handler - returns HTTP handler exposing registry in Prometheus text format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer - returns underlying registry for inspection.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.reg
}

// ConnectionAccepted - counts accepted connection, it stays active until ConnectionClosed.
func (r *Registry) ConnectionAccepted() {
	if r == nil {
		return
	}
	r.connectionsAccepted.Inc()
	r.connectionsActive.Inc()
}

// ConnectionClosed - counts closed connection by reason (see handler.CloseReason).
func (r *Registry) ConnectionClosed(reason string) {
	if r == nil {
		return
	}
	r.connectionsActive.Dec()
	r.connectionsClosed.WithLabelValues(reason).Inc()
}

// AcceptError - counts failed accept call.
func (r *Registry) AcceptError() {
	if r == nil {
		return
	}
	r.acceptErrors.Inc()
}

// Request - counts handled request of the kind: RequestSend, RequestFetchSince or RequestInvalid.
func (r *Registry) Request(kind string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(kind).Inc()
}

// HistorySize - sets number of messages in chat history.
func (r *Registry) HistorySize(n int) {
	if r == nil {
		return
	}
	r.historyMessages.Set(float64(n))
}

// WorkerPanic - counts job recovered from panic.
func (r *Registry) WorkerPanic() {
	if r == nil {
		return
	}
	r.workerPanics.Inc()
}

// QueueDepth - sets number of jobs waiting for a worker.
func (r *Registry) QueueDepth(n int) {
	if r == nil {
		return
	}
	r.queueDepth.Set(float64(n))
}

// WorkersBusy - sets number of workers executing a job.
func (r *Registry) WorkersBusy(n int) {
	if r == nil {
		return
	}
	r.workersBusy.Set(float64(n))
}
