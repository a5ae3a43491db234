// Package metrics exposes the service counters on the prometheus default
// registry. The HTTP layer serves them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sealreg",
		Name:      "registrations_total",
		Help:      "Proof registration attempts by outcome.",
	}, []string{"outcome"})

	ApprovalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sealreg",
		Name:      "approvals_total",
		Help:      "Approval decisions by path and outcome.",
	}, []string{"path", "outcome"})

	PurchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sealreg",
		Name:      "purchases_total",
		Help:      "Listing purchase attempts by outcome.",
	}, []string{"outcome"})

	PlatformFeesCollected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sealreg",
		Name:      "platform_fees_collected_total",
		Help:      "Cumulative platform fee amount collected from settled purchases.",
	})

	RateLimitedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sealreg",
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected by the rate limiter.",
	})
)

const (
	OutcomeOK       = "ok"
	OutcomeDenied   = "denied"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"

	PathACL          = "acl"
	PathSubscription = "subscription"
)
