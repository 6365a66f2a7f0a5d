// Package metrics exposes prometheus counters for the login and order
// flows. They are registered on the default registry and served at
// /metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/example/omnilaze/internal/errs"
)

var (
	CodesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "omnilaze",
		Name:      "verification_codes_sent_total",
		Help:      "Verification codes issued, by delivery result.",
	}, []string{"result"})

	CodeVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "omnilaze",
		Name:      "verification_attempts_total",
		Help:      "Verification attempts, by outcome.",
	}, []string{"outcome"})

	InviteRedemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "omnilaze",
		Name:      "invite_redemptions_total",
		Help:      "Invite redemption attempts, by outcome.",
	}, []string{"outcome"})

	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "omnilaze",
		Name:      "order_transitions_total",
		Help:      "Order lifecycle operations, by operation and outcome.",
	}, []string{"operation", "outcome"})
)

// Outcome maps an error to a short, bounded label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrValidation):
		return "invalid"
	case errors.Is(err, errs.ErrNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrExpired):
		return "expired"
	case errors.Is(err, errs.ErrMismatch):
		return "mismatch"
	case errors.Is(err, errs.ErrInvalidInvite):
		return "invalid_invite"
	case errors.Is(err, errs.ErrAccountExists):
		return "account_exists"
	case errors.Is(err, errs.ErrAlreadySubmitted):
		return "already_submitted"
	case errors.Is(err, errs.ErrDelivery):
		return "delivery_failed"
	default:
		return "error"
	}
}
