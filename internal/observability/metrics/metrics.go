package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "vendfleet_"

	resultSuccess = "success"
)

var (
	registerOnce sync.Once

	purchaseTotal *prometheus.CounterVec
	restockTotal  *prometheus.CounterVec
	voidTotal     *prometheus.CounterVec

	alertsEmitted *prometheus.CounterVec

	dailyGenerateTotal   *prometheus.CounterVec
	dailyGenerateLatency *prometheus.HistogramVec

	summaryTotal   *prometheus.CounterVec
	summaryLatency *prometheus.HistogramVec

	exportTotal *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		purchaseTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "purchase_total",
				Help: "Total purchase operations by result",
			},
			[]string{"result"},
		)
		restockTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "restock_total",
				Help: "Total restock operations by result",
			},
			[]string{"result"},
		)
		voidTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "void_total",
				Help: "Total void operations by kind and result",
			},
			[]string{"kind", "result"},
		)

		alertsEmitted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_emitted_total",
				Help: "Total alerts emitted by type",
			},
			[]string{"type"},
		)

		dailyGenerateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "daily_generate_total",
				Help: "Total daily stat generation runs by result",
			},
			[]string{"result"},
		)
		dailyGenerateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "daily_generate_latency_seconds",
				Help:    "Daily stat generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		summaryTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "summary_total",
				Help: "Total financial summary queries by period",
			},
			[]string{"period"},
		)
		summaryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "summary_latency_seconds",
				Help:    "Financial summary latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"period"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total daily report exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			purchaseTotal,
			restockTotal,
			voidTotal,
			alertsEmitted,
			dailyGenerateTotal,
			dailyGenerateLatency,
			summaryTotal,
			summaryLatency,
			exportTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// IncPurchase increments the purchase counter.
func IncPurchase(result string) {
	if result == "" {
		result = resultSuccess
	}
	if purchaseTotal != nil {
		purchaseTotal.WithLabelValues(result).Inc()
	}
}

// IncRestock increments the restock counter.
func IncRestock(result string) {
	if result == "" {
		result = resultSuccess
	}
	if restockTotal != nil {
		restockTotal.WithLabelValues(result).Inc()
	}
}

// IncVoid increments the void counter.
func IncVoid(kind, result string) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if voidTotal != nil {
		voidTotal.WithLabelValues(kind, result).Inc()
	}
}

// IncAlertEmitted increments the emitted alert counter.
func IncAlertEmitted(alertType string) {
	if alertType == "" {
		alertType = "unknown"
	}
	if alertsEmitted != nil {
		alertsEmitted.WithLabelValues(alertType).Inc()
	}
}

// ObserveDailyGenerate records a daily stat generation run.
func ObserveDailyGenerate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if dailyGenerateTotal != nil {
		dailyGenerateTotal.WithLabelValues(result).Inc()
	}
	if dailyGenerateLatency != nil {
		dailyGenerateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveSummary records a financial summary query.
func ObserveSummary(period string, duration time.Duration) {
	if period == "" {
		period = "unknown"
	}
	if summaryTotal != nil {
		summaryTotal.WithLabelValues(period).Inc()
	}
	if summaryLatency != nil {
		summaryLatency.WithLabelValues(period).Observe(duration.Seconds())
	}
}

// IncExport increments the report export counter.
func IncExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "stock_entries_empty",
			Help: "Stock entries currently at zero",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM stock_entries WHERE current_stock = 0")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "machines_fault",
			Help: "Machines currently in fault status",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM machines WHERE status = 'fault'")
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
