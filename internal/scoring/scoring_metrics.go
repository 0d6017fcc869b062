package scoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AssessmentsTotal counts scored transactions by status and variant.
	AssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudguard",
			Name:      "assessments_total",
			Help:      "Total risk assessments by status and scoring variant.",
		},
		[]string{"status", "variant"},
	)

	// RiskScores observes the distribution of final risk scores.
	RiskScores = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraudguard",
			Name:      "risk_score",
			Help:      "Distribution of final risk scores.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"variant"},
	)

	// RuleFiringsTotal counts how often each rule contributed to a score.
	RuleFiringsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudguard",
			Name:      "rule_firings_total",
			Help:      "Total rule firings by rule name.",
		},
		[]string{"rule"},
	)
)

func init() {
	prometheus.MustRegister(
		AssessmentsTotal,
		RiskScores,
		RuleFiringsTotal,
	)
}

// observeAssessment records metrics for a completed assessment.
func observeAssessment(a *Assessment) {
	AssessmentsTotal.WithLabelValues(string(a.Status), a.Variant).Inc()
	RiskScores.WithLabelValues(a.Variant).Observe(a.Score)
	for _, f := range a.Factors {
		RuleFiringsTotal.WithLabelValues(f.Rule).Inc()
	}
}
