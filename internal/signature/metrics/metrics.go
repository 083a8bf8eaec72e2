package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the signature lifecycle.
type Metrics struct {
	SignaturesCreated     prometheus.Counter
	SignaturesConfirmed   prometheus.Counter
	RemindersSent         prometheus.Counter
	DuplicatesDiscarded   prometheus.Counter
	CounterUpdateFailures prometheus.Counter
	MailFailures          prometheus.Counter
	ConfirmDuration       prometheus.Histogram
}

// New creates and registers all signature metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		SignaturesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "petities_signatures_created_total",
			Help: "Total number of signatures created",
		}),
		SignaturesConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "petities_signatures_confirmed_total",
			Help: "Total number of signatures confirmed (actual transitions only)",
		}),
		RemindersSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "petities_reminders_sent_total",
			Help: "Total number of confirmation reminders dispatched",
		}),
		DuplicatesDiscarded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "petities_duplicate_signatures_discarded_total",
			Help: "Total number of stale duplicate signatures removed by the reminder sweep",
		}),
		CounterUpdateFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "petities_counter_update_failures_total",
			Help: "Total number of non-fatal counter store update failures",
		}),
		MailFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "petities_mail_failures_total",
			Help: "Total number of non-fatal mail dispatch failures",
		}),
		ConfirmDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "petities_confirm_duration_seconds",
			Help:    "Latency of signature confirmations",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
