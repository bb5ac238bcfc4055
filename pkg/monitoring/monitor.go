package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindagrow_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	SubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindagrow_submissions_total",
			Help: "Assignment submissions by status",
		},
		[]string{"status"},
	)

	XPAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mindagrow_xp_awarded_total",
			Help: "Experience points awarded to users",
		},
	)

	LevelUps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mindagrow_level_ups_total",
			Help: "Number of level-ups",
		},
	)

	UploadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindagrow_upload_bytes_total",
			Help: "Bytes accepted by upload kind",
		},
		[]string{"kind"},
	)

	SchedulerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindagrow_scheduler_runs_total",
			Help: "Background job executions by job and result",
		},
		[]string{"job", "result"},
	)
)

// Init registers the collectors with the default registry. Domain counters
// are usable before Init; they are simply not exported until registered.
func Init() {
	prometheus.MustRegister(
		RequestCounter,
		RequestDuration,
		LoginCounter,
		SubmissionCounter,
		XPAwarded,
		LevelUps,
		UploadBytes,
		SchedulerRuns,
	)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
