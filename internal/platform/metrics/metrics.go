package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application Prometheus collectors. Every method is safe
// on a nil receiver so services can run without metrics in tests.
type Metrics struct {
	SignUps          prometheus.Counter
	SignIns          *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
	AuthFailures     *prometheus.CounterVec
	MFAVerifications *prometheus.CounterVec
	MFACodesSent     *prometheus.CounterVec
	InvitationsSent  *prometheus.CounterVec
	InvitationsUsed  prometheus.Counter
	PartnerFetches   *prometheus.CounterVec
	CleanupRemoved   *prometheus.CounterVec
	EndpointLatency  *prometheus.HistogramVec
}

// New creates and registers all collectors with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the collectors with reg; tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SignUps: factory.NewCounter(prometheus.CounterOpts{
			Name: "partnerdash_signups_total",
			Help: "Total number of accounts created",
		}),
		SignIns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerdash_signins_total",
			Help: "Sign-in attempts by result",
		}, []string{"result"}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "partnerdash_active_sessions",
			Help: "Sessions issued minus sessions signed out since start",
		}),
		AuthFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerdash_auth_failures_total",
			Help: "Rejected bearer credentials by reason",
		}, []string{"reason"}),
		MFAVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerdash_mfa_verifications_total",
			Help: "MFA code checks by factor and result",
		}, []string{"mfa_type", "result"}),
		MFACodesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerdash_mfa_codes_sent_total",
			Help: "Email codes issued by result",
		}, []string{"result"}),
		InvitationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerdash_invitations_created_total",
			Help: "Invitations created, labeled by whether the email went out",
		}, []string{"delivery"}),
		InvitationsUsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "partnerdash_invitations_accepted_total",
			Help: "Invitations redeemed",
		}),
		PartnerFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerdash_partner_fetches_total",
			Help: "Partner data fetches by result",
		}, []string{"result"}),
		CleanupRemoved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "partnerdash_cleanup_removed_total",
			Help: "Records cleared by the cleanup worker",
		}, []string{"kind"}),
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "partnerdash_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) IncrementSignUps() {
	if m == nil {
		return
	}
	m.SignUps.Inc()
}

func (m *Metrics) IncrementSignIns(result string) {
	if m == nil {
		return
	}
	m.SignIns.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementActiveSessions() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) DecrementActiveSessions() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

func (m *Metrics) IncrementAuthFailures(reason string) {
	if m == nil {
		return
	}
	m.AuthFailures.WithLabelValues(reason).Inc()
}

// ObserveMFAVerification records one code check; result is "verified" or the failure reason.
func (m *Metrics) ObserveMFAVerification(mfaType, result string) {
	if m == nil {
		return
	}
	m.MFAVerifications.WithLabelValues(mfaType, result).Inc()
}

func (m *Metrics) IncrementCodesSent(result string) {
	if m == nil {
		return
	}
	m.MFACodesSent.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementInvitationsSent(delivery string) {
	if m == nil {
		return
	}
	m.InvitationsSent.WithLabelValues(delivery).Inc()
}

func (m *Metrics) IncrementInvitationsAccepted() {
	if m == nil {
		return
	}
	m.InvitationsUsed.Inc()
}

func (m *Metrics) IncrementPartnerFetches(result string) {
	if m == nil {
		return
	}
	m.PartnerFetches.WithLabelValues(result).Inc()
}

func (m *Metrics) AddCleanupRemoved(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CleanupRemoved.WithLabelValues(kind).Add(float64(n))
}

// ObserveEndpointLatency records the latency for a given endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}
