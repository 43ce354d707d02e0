package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts quote computations by outcome.
	QuoteTotal *prometheus.CounterVec
	// PromoTotal counts promo code evaluations by kind and outcome.
	PromoTotal *prometheus.CounterVec
	// SessionMutationTotal counts checkout session mutations by operation and outcome.
	SessionMutationTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_total",
			Help:      "Count of pricing quote outcomes.",
		}, []string{"result"})
		PromoTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promo_total",
			Help:      "Count of promo code evaluations by kind and outcome.",
		}, []string{"kind", "result"})
		SessionMutationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_session_mutations_total",
			Help:      "Count of checkout session mutation outcomes by operation.",
		}, []string{"op", "result"})

		mustRegisterCollector(reg, QuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteTotal = v
			}
		})
		mustRegisterCollector(reg, PromoTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PromoTotal = v
			}
		})
		mustRegisterCollector(reg, SessionMutationTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SessionMutationTotal = v
			}
		})
	})
}

// ObserveQuote records a quote outcome. Safe to call before registration.
func ObserveQuote(result string) {
	if QuoteTotal != nil {
		QuoteTotal.WithLabelValues(result).Inc()
	}
}

// ObservePromo records a promo evaluation outcome.
func ObservePromo(kind, result string) {
	if PromoTotal != nil {
		PromoTotal.WithLabelValues(kind, result).Inc()
	}
}

// ObserveSessionMutation records a checkout session mutation outcome.
func ObserveSessionMutation(op, result string) {
	if SessionMutationTotal != nil {
		SessionMutationTotal.WithLabelValues(op, result).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
