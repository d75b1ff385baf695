// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	CapturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_captures_total",
			Help: "Total number of lead captures by trigger type",
		},
		[]string{"trigger_type"},
	)

	CaptureFieldsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_capture_fields_total",
			Help: "Total number of captured fields by inferred category",
		},
		[]string{"category"},
	)

	TransmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_transmissions_total",
			Help: "Total number of payload transmissions by outcome",
		},
		[]string{"outcome"},
	)

	RecordsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_records_delivered_total",
			Help: "Total number of normalized records delivered per sink",
		},
		[]string{"sink", "outcome"},
	)
)
