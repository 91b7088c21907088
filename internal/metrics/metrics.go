package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	SinkSheet    = "sheet"
	SinkOperator = "operator"

	StatusOK     = "ok"
	StatusFailed = "failed"
)

// BotMetrics exposes counters for the order dialogue and its sinks.
type BotMetrics struct {
	updatesTotal    *prometheus.CounterVec
	ordersTotal     prometheus.Counter
	sinkTotal       *prometheus.CounterVec
	validationTotal *prometheus.CounterVec
	relayTotal      *prometheus.CounterVec
	handlerPanics   prometheus.Counter
	sinkLatency     *prometheus.HistogramVec
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		updatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "order_bot",
			Subsystem: "telegram",
			Name:      "updates_total",
			Help:      "Inbound updates by kind",
		}, []string{"kind"}),
		ordersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "order_bot",
			Subsystem: "orders",
			Name:      "completed_total",
			Help:      "Forms completed by users",
		}),
		sinkTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "order_bot",
			Subsystem: "orders",
			Name:      "sink_total",
			Help:      "Delivery attempts of completed orders by sink and outcome",
		}, []string{"sink", "status"}),
		validationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "order_bot",
			Subsystem: "form",
			Name:      "validation_failures_total",
			Help:      "Rejected answers by field",
		}, []string{"field"}),
		relayTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "order_bot",
			Subsystem: "relay",
			Name:      "actions_total",
			Help:      "Operator actions by type",
		}, []string{"action"}),
		handlerPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "order_bot",
			Subsystem: "telegram",
			Name:      "handler_panics_total",
			Help:      "Recovered panics in update handlers",
		}),
		sinkLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "order_bot",
			Subsystem: "orders",
			Name:      "sink_latency_seconds",
			Help:      "Latency of order delivery per sink",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sink"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.updatesTotal,
		m.ordersTotal,
		m.sinkTotal,
		m.validationTotal,
		m.relayTotal,
		m.handlerPanics,
		m.sinkLatency,
	)
	return m
}

func (m *BotMetrics) ObserveUpdate(kind string) {
	if m == nil {
		return
	}
	m.updatesTotal.WithLabelValues(kind).Inc()
}

func (m *BotMetrics) ObserveOrderCompleted() {
	if m == nil {
		return
	}
	m.ordersTotal.Inc()
}

func (m *BotMetrics) ObserveSink(sink string, err error, seconds float64) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusFailed
	}
	m.sinkTotal.WithLabelValues(sink, status).Inc()
	m.sinkLatency.WithLabelValues(sink).Observe(seconds)
}

func (m *BotMetrics) ObserveValidationFailure(field string) {
	if m == nil {
		return
	}
	m.validationTotal.WithLabelValues(field).Inc()
}

func (m *BotMetrics) ObserveRelay(action string) {
	if m == nil {
		return
	}
	m.relayTotal.WithLabelValues(action).Inc()
}

func (m *BotMetrics) ObservePanic() {
	if m == nil {
		return
	}
	m.handlerPanics.Inc()
}
