package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/example/omnilaze/internal/errs"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "invalid", Outcome(errs.Validation("bad phone")))
	assert.Equal(t, "not_found", Outcome(fmt.Errorf("submit order: %w", errs.ErrNotFound)))
	assert.Equal(t, "expired", Outcome(errs.ErrExpired))
	assert.Equal(t, "mismatch", Outcome(errs.ErrMismatch))
	assert.Equal(t, "invalid_invite", Outcome(errs.ErrInvalidInvite))
	assert.Equal(t, "already_submitted", Outcome(errs.ErrAlreadySubmitted))
	assert.Equal(t, "delivery_failed", Outcome(errs.ErrDelivery))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(OrderTransitions.WithLabelValues("submit", "ok"))
	OrderTransitions.WithLabelValues("submit", "ok").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(OrderTransitions.WithLabelValues("submit", "ok")))
}
