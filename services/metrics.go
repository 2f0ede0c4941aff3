package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts game activity. A nil *Metrics records nothing.
type Metrics struct {
	turns       *prometheus.CounterVec
	completions *prometheus.CounterVec
	exhausted   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindguesser",
			Name:      "turns_appended_total",
			Help:      "Turns persisted to the conversation store, by role.",
		}, []string{"role"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindguesser",
			Name:      "completions_total",
			Help:      "Calls to the completion service, by outcome.",
		}, []string{"outcome"}),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mindguesser",
			Name:      "exhausted_replies_total",
			Help:      "Requests answered with the termination message because the turn cap was reached.",
		}),
	}
	reg.MustRegister(m.turns, m.completions, m.exhausted)
	return m
}

func (m *Metrics) turnAppended(role string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(role).Inc()
}

func (m *Metrics) completion(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.completions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) exhaustedReply() {
	if m == nil {
		return
	}
	m.exhausted.Inc()
}
