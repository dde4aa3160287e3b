package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "energywatch_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	feedRequests *prometheus.CounterVec
	feedLatency  *prometheus.HistogramVec

	aggregationTotal   *prometheus.CounterVec
	aggregationLatency *prometheus.HistogramVec

	ingestRequests *prometheus.CounterVec
	ingestRows     *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec

	peakUpserts *prometheus.CounterVec

	eodRefreshDays prometheus.Counter
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		feedRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "feed_requests_total",
				Help: "Total upstream feed requests by feed and result",
			},
			[]string{"feed", "result"},
		)
		feedLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "feed_latency_seconds",
				Help:    "Upstream feed latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"feed"},
		)

		aggregationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "aggregation_total",
				Help: "Total dashboard aggregations by name and result",
			},
			[]string{"aggregate", "result"},
		)
		aggregationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "aggregation_latency_seconds",
				Help:    "Dashboard aggregation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"aggregate"},
		)

		ingestRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_requests_total",
				Help: "Total file submissions by format and result",
			},
			[]string{"format", "result"},
		)
		ingestRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_rows_total",
				Help: "Total submitted rows by format and result",
			},
			[]string{"format", "result"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "File submission latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		peakUpserts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "peak_upserts_total",
				Help: "Total peak record writes by mode",
			},
			[]string{"mode"},
		)

		eodRefreshDays = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "eod_refresh_days_total",
				Help: "Total end-of-day days re-read from the historian",
			},
		)

		prometheus.MustRegister(
			feedRequests,
			feedLatency,
			aggregationTotal,
			aggregationLatency,
			ingestRequests,
			ingestRows,
			ingestLatency,
			peakUpserts,
			eodRefreshDays,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "override_readings_count",
			Help: "Stored override reading rows",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM override_readings")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "gas_eod_values_count",
			Help: "Stored end-of-day value rows",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM gas_eod_values")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}

// ObserveFeed records one upstream feed call.
func ObserveFeed(feed, result string, duration time.Duration) {
	if feed == "" {
		feed = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if feedRequests != nil {
		feedRequests.WithLabelValues(feed, result).Inc()
	}
	if feedLatency != nil {
		feedLatency.WithLabelValues(feed).Observe(duration.Seconds())
	}
}

// ObserveAggregation records one dashboard aggregation.
func ObserveAggregation(aggregate, result string, duration time.Duration) {
	if aggregate == "" {
		aggregate = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if aggregationTotal != nil {
		aggregationTotal.WithLabelValues(aggregate, result).Inc()
	}
	if aggregationLatency != nil {
		aggregationLatency.WithLabelValues(aggregate).Observe(duration.Seconds())
	}
}

// ObserveIngest records one file submission.
func ObserveIngest(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if ingestRequests != nil {
		ingestRequests.WithLabelValues(format, result).Inc()
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// AddIngestRows counts submitted rows by outcome.
func AddIngestRows(format, result string, count int) {
	if count <= 0 {
		return
	}
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if ingestRows != nil {
		ingestRows.WithLabelValues(format, result).Add(float64(count))
	}
}

// IncPeakUpsert counts one peak record write.
func IncPeakUpsert(mode string) {
	if mode == "" {
		mode = "unknown"
	}
	if peakUpserts != nil {
		peakUpserts.WithLabelValues(mode).Inc()
	}
}

// AddEODRefreshDays counts re-read end-of-day days.
func AddEODRefreshDays(count int) {
	if count <= 0 {
		return
	}
	if eodRefreshDays != nil {
		eodRefreshDays.Add(float64(count))
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
