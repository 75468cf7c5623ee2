package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Appointment workflow metrics
	AppointmentsCreated prometheus.Counter
	StatusTransitions   *prometheus.CounterVec

	// Attachment metrics
	FilesUploaded prometheus.Counter
	FilesFailed   prometheus.Counter

	// Upstream adapter metrics
	AIRequests *prometheus.CounterVec
	AILatency  prometheus.Histogram

	// Payment metrics
	CheckoutsCreated prometheus.Counter
	PaymentsRecorded *prometheus.CounterVec
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		AppointmentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_created_total",
			Help:      "Total number of appointments created",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_status_transitions_total",
			Help:      "Total number of appointment status transitions",
		}, []string{"status"}),
		FilesUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "medical_files_uploaded_total",
			Help:      "Total number of medical files stored",
		}),
		FilesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "medical_files_failed_total",
			Help:      "Total number of medical file uploads that failed",
		}),
		AIRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "Total number of AI adapter calls",
		}, []string{"operation", "status"}),
		AILatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_request_duration_seconds",
			Help:      "Duration of AI adapter calls",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		CheckoutsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_sessions_created_total",
			Help:      "Total number of payment checkout sessions created",
		}),
		PaymentsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Total number of payment outcomes recorded",
		}, []string{"outcome"}),
	}
}
