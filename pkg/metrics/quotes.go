package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// QuoteMetrics counts pricing engine outcomes.
type QuoteMetrics struct {
	created  prometheus.Counter
	priced   prometheus.Counter
	failures *prometheus.CounterVec
}

// NewQuoteMetrics registers the quotation metrics on the provided registerer.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quotations_created_total",
		Help: "Quotations created via requirement derivation.",
	})
	priced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quotations_priced_total",
		Help: "Successful quotation recomputes.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotation_failures_total",
		Help: "Failed quotation operations by error code.",
	}, []string{"code"})
	reg.MustRegister(created, priced, failures)
	return &QuoteMetrics{
		created:  created,
		priced:   priced,
		failures: failures,
	}
}

// IncCreated increments the created counter.
func (q *QuoteMetrics) IncCreated() {
	if q == nil || q.created == nil {
		return
	}
	q.created.Inc()
}

// IncPriced increments the priced counter.
func (q *QuoteMetrics) IncPriced() {
	if q == nil || q.priced == nil {
		return
	}
	q.priced.Inc()
}

// IncFailure increments the failure counter for the given error code.
func (q *QuoteMetrics) IncFailure(code string) {
	if q == nil || q.failures == nil {
		return
	}
	q.failures.WithLabelValues(normalizeLabel(code)).Inc()
}
