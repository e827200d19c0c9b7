package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nudge_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nudge_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	DispatchJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nudge_dispatch_jobs_total",
			Help: "Reminder jobs processed per terminal outcome",
		},
		[]string{"tenant", "outcome"},
	)

	ChannelSendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nudge_channel_send_duration_seconds",
			Help:    "Duration of outbound channel deliveries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel", "status"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCount, RequestDuration, DispatchJobs, ChannelSendDuration)
}
