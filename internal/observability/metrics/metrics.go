package metrics

import (
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "efintrack_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	commandTotal   *prometheus.CounterVec
	commandLatency *prometheus.HistogramVec

	movementsTotal    *prometheus.CounterVec
	overdraftWarnings prometheus.Counter
	integrityFailures *prometheus.CounterVec
	referenceRetries  *prometheus.CounterVec
	txRetries         prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
)

// Init registers kernel metrics. When pool is non-nil its connection
// statistics are exported as gauges. Calling Init more than once is a no-op.
func Init(pool *pgxpool.Pool) {
	registerOnce.Do(func() {
		commandTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commands_total",
				Help: "Total kernel commands by command and result",
			},
			[]string{"command", "result"},
		)
		commandLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "command_latency_seconds",
				Help:    "Kernel command latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		)
		movementsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_movements_total",
				Help: "Ledger movements posted by direction and cause",
			},
			[]string{"direction", "cause"},
		)
		overdraftWarnings = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "overdraft_warnings_total",
				Help: "Debits that took an account balance below zero",
			},
		)
		integrityFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "integrity_failures_total",
				Help: "Invariant verification failures by check",
			},
			[]string{"check"},
		)
		referenceRetries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reference_retries_total",
				Help: "Reference collisions resolved by rescanning, by family",
			},
			[]string{"family"},
		)
		txRetries = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "tx_retries_total",
				Help: "Transactions retried after a serialization failure or deadlock",
			},
		)
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_latency_seconds",
				Help:    "HTTP latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)

		prometheus.MustRegister(
			commandTotal,
			commandLatency,
			movementsTotal,
			overdraftWarnings,
			integrityFailures,
			referenceRetries,
			txRetries,
			httpRequests,
			httpLatency,
		)

		if pool != nil {
			registerPoolMetrics(pool)
		}
	})
}

func registerPoolMetrics(pool *pgxpool.Pool) {
	gauge := func(name, help string, value func(*pgxpool.Stat) float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: metricPrefix + name, Help: help},
			func() float64 { return value(pool.Stat()) },
		)
	}
	prometheus.MustRegister(
		gauge("db_pool_total_conns", "Connections in the pool", func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
		gauge("db_pool_acquired_conns", "Connections currently acquired", func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
		gauge("db_pool_idle_conns", "Idle connections", func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
	)
}

// ObserveCommand records a command's latency and result.
func ObserveCommand(command string, err error, duration time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	if commandTotal != nil {
		commandTotal.WithLabelValues(command, result).Inc()
	}
	if commandLatency != nil {
		commandLatency.WithLabelValues(command).Observe(duration.Seconds())
	}
}

// IncMovement counts a posted ledger movement.
func IncMovement(direction, cause string) {
	if movementsTotal != nil {
		movementsTotal.WithLabelValues(direction, cause).Inc()
	}
}

// IncOverdraftWarning counts a debit that crossed zero.
func IncOverdraftWarning() {
	if overdraftWarnings != nil {
		overdraftWarnings.Inc()
	}
}

// IncIntegrityFailure counts a failed invariant check. Alert on any increase.
func IncIntegrityFailure(check string) {
	if check == "" {
		check = "unknown"
	}
	if integrityFailures != nil {
		integrityFailures.WithLabelValues(check).Inc()
	}
}

// IncReferenceRetry counts a reference collision.
func IncReferenceRetry(family string) {
	if referenceRetries != nil {
		referenceRetries.WithLabelValues(family).Inc()
	}
}

// IncTxRetry counts a retried transaction.
func IncTxRetry() {
	if txRetries != nil {
		txRetries.Inc()
	}
}

// ObserveHTTP records an HTTP request.
func ObserveHTTP(method, route, status string, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, route, status).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
	}
}
