package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	AccountsOpened       prometheus.Counter
	TransactionsRecorded *prometheus.CounterVec
	TransactionAmount    *prometheus.HistogramVec
	Rejections           *prometheus.CounterVec
	AdjustDuration       prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates the metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		AccountsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "txledger_accounts_opened_total",
			Help: "Total number of accounts opened",
		}),
		TransactionsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txledger_transactions_recorded_total",
				Help: "Total number of transactions recorded by operation type",
			},
			[]string{"operation_type"},
		),
		TransactionAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "txledger_transaction_amount",
				Help:    "Absolute transaction amounts by operation type",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"operation_type"},
		),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txledger_rejections_total",
				Help: "Total number of rejected ledger operations by error kind",
			},
			[]string{"operation", "kind"},
		),
		AdjustDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "txledger_adjust_duration_seconds",
			Help:    "Duration of balance adjustments including the wait for the row lock",
			Buckets: prometheus.DefBuckets,
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "txledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "txledger_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}

// AccountOpened implements usecase.MetricsRecorder.
func (m *Metrics) AccountOpened() {
	m.AccountsOpened.Inc()
}

// TransactionRecorded implements usecase.MetricsRecorder.
func (m *Metrics) TransactionRecorded(op domain.OperationType, amount decimal.Decimal) {
	m.TransactionsRecorded.WithLabelValues(op.String()).Inc()
	m.TransactionAmount.WithLabelValues(op.String()).Observe(amount.Abs().InexactFloat64())
}

// OperationRejected implements usecase.MetricsRecorder.
func (m *Metrics) OperationRejected(operation string, kind domain.ErrorKind) {
	m.Rejections.WithLabelValues(operation, kind.String()).Inc()
}

// ObserveAdjustDuration implements usecase.MetricsRecorder.
func (m *Metrics) ObserveAdjustDuration(d time.Duration) {
	m.AdjustDuration.Observe(d.Seconds())
}
