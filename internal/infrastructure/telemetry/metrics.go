package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "rentbot"

// BotMetrics exposes pipeline counters and latencies to Prometheus
type BotMetrics struct {
	messagesTotal      *prometheus.CounterVec
	messageDuration    prometheus.Histogram
	extractionsTotal   *prometheus.CounterVec
	extractionDuration prometheus.Histogram
	receiptsTotal      *prometheus.CounterVec
	receiptDuration    prometheus.Histogram
}

// NewBotMetrics registers the bot collectors on reg
func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	factory := promauto.With(reg)
	return &BotMetrics{
		messagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "messages_total",
				Help:      "Inbound chat messages by processing outcome",
			},
			[]string{"outcome"},
		),
		messageDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "message_duration_seconds",
				Help:      "Time from receiving a message to having its reply ready",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		extractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "extraction",
				Name:      "requests_total",
				Help:      "Intent extraction calls by result",
			},
			[]string{"result"},
		),
		extractionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "extraction",
				Name:      "duration_seconds",
				Help:      "Duration of intent extraction calls",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),
		receiptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "receipt",
				Name:      "deliveries_total",
				Help:      "Receipt render and delivery attempts by result",
			},
			[]string{"result"},
		),
		receiptDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "receipt",
				Name:      "duration_seconds",
				Help:      "Duration of receipt render and delivery",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
		),
	}
}

// ObserveMessage counts one processed message
func (m *BotMetrics) ObserveMessage(outcome string, d time.Duration) {
	m.messagesTotal.WithLabelValues(outcome).Inc()
	m.messageDuration.Observe(d.Seconds())
}

// ObserveExtraction counts one extraction call
func (m *BotMetrics) ObserveExtraction(d time.Duration, err error) {
	m.extractionsTotal.WithLabelValues(resultLabel(err)).Inc()
	m.extractionDuration.Observe(d.Seconds())
}

// ObserveReceipt counts one receipt attempt
func (m *BotMetrics) ObserveReceipt(d time.Duration, err error) {
	m.receiptsTotal.WithLabelValues(resultLabel(err)).Inc()
	m.receiptDuration.Observe(d.Seconds())
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
