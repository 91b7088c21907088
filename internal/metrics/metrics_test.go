package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBotMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBotMetrics(reg)

	m.ObserveSink(SinkSheet, nil, 0.2)
	m.ObserveSink(SinkSheet, errors.New("boom"), 0.1)
	m.ObserveSink(SinkOperator, nil, 0.05)
	m.ObserveOrderCompleted()
	m.ObserveValidationFailure("phone")
	m.ObserveUpdate("message")
	m.ObserveRelay("reply")
	m.ObservePanic()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sinkTotal.WithLabelValues(SinkSheet, StatusFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sinkTotal.WithLabelValues(SinkSheet, StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationTotal.WithLabelValues("phone")))
}

func TestBotMetricsNilSafe(t *testing.T) {
	var m *BotMetrics
	m.ObserveUpdate("message")
	m.ObserveOrderCompleted()
	m.ObserveSink(SinkSheet, nil, 0.1)
	m.ObserveValidationFailure("zone")
	m.ObserveRelay("accept")
	m.ObservePanic()
}
