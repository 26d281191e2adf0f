package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for SubmissionsTotal.
const (
	OutcomeAccepted   = "accepted"
	OutcomeDeclined   = "declined"
	OutcomeRolledBack = "rolled_back"
	OutcomeError      = "error"
)

// Metrics holds the Prometheus collectors of the intake portal.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SubmissionsTotal     *prometheus.CounterVec
	DocumentsStored      prometheus.Counter
	IDCollisions         prometheus.Counter
	NotificationFailures prometheus.Counter
	NotificationsSent    prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SubmissionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loanportal_submissions_total",
			Help: "Loan application submissions by outcome",
		}, []string{"outcome"}),
		DocumentsStored: f.NewCounter(prometheus.CounterOpts{
			Name: "loanportal_documents_stored_total",
			Help: "Documents persisted against accepted applications",
		}),
		IDCollisions: f.NewCounter(prometheus.CounterOpts{
			Name: "loanportal_application_id_collisions_total",
			Help: "Generated application ids that were already taken",
		}),
		NotificationFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "loanportal_notification_failures_total",
			Help: "Confirmation notifications that could not be delivered",
		}),
		NotificationsSent: f.NewCounter(prometheus.CounterOpts{
			Name: "loanportal_notifications_sent_total",
			Help: "Confirmation emails handed to the mail transport",
		}),
	}
}

func (m *Metrics) IncSubmission(outcome string) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddDocumentsStored(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DocumentsStored.Add(float64(n))
}

func (m *Metrics) IncIDCollision() {
	if m == nil {
		return
	}
	m.IDCollisions.Inc()
}

func (m *Metrics) IncNotificationFailure() {
	if m == nil {
		return
	}
	m.NotificationFailures.Inc()
}

func (m *Metrics) IncNotificationSent() {
	if m == nil {
		return
	}
	m.NotificationsSent.Inc()
}
