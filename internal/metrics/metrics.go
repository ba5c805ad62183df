package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	kegiatanCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kegiatan_created_total",
			Help: "Total number of kegiatan submitted",
		},
	)

	approvalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approvals_total",
			Help: "Total number of approval operations",
		},
		[]string{"action"}, // approve, reject, transfer, complete, cancel
	)

	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	databaseConnectionsMax = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_max",
			Help: "Maximum number of database connections",
		},
	)

	kegiatanByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kegiatan_by_status",
			Help: "Number of kegiatan by workflow status",
		},
		[]string{"status"},
	)
)

var once sync.Once

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(kegiatanCreatedTotal)
	prometheus.MustRegister(approvalsTotal)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(databaseConnectionsMax)
	prometheus.MustRegister(kegiatanByStatus)

	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest records one API request
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordKegiatanCreated records a kegiatan submission
func RecordKegiatanCreated() {
	kegiatanCreatedTotal.Inc()
}

// RecordApproval records an approval-workflow operation
func RecordApproval(action string) {
	approvalsTotal.WithLabelValues(action).Inc()
}

// UpdateDatabaseConnections refreshes the connection pool gauges
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.OpenConnections - stats.Idle))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	databaseConnectionsMax.Set(float64(stats.MaxOpenConnections))

	return nil
}

// UpdateKegiatanByStatus refreshes the per-status gauge
func UpdateKegiatanByStatus(status string, count float64) {
	kegiatanByStatus.WithLabelValues(status).Set(count)
}
