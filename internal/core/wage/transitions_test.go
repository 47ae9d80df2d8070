// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package wage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wdtp/api/internal/core/wage"
)

/*
TestCounterDelta walks every status transition the lifecycle can produce
and checks its effect on the denormalized counters. Only entering or
leaving the approved state moves a counter.
*/
func TestCounterDelta(t *testing.T) {
	tests := []struct {
		name string
		from wage.Status
		to   wage.Status
		want int
	}{
		// Creation and restoration
		{"create_approved", wage.StatusNone, wage.StatusApproved, 1},
		{"create_pending", wage.StatusNone, wage.StatusPending, 0},
		{"create_rejected", wage.StatusNone, wage.StatusRejected, 0},

		// Deletion
		{"delete_approved", wage.StatusApproved, wage.StatusNone, -1},
		{"delete_pending", wage.StatusPending, wage.StatusNone, 0},
		{"delete_rejected", wage.StatusRejected, wage.StatusNone, 0},

		// Moderation and rescoring
		{"approve_pending", wage.StatusPending, wage.StatusApproved, 1},
		{"approve_rejected", wage.StatusRejected, wage.StatusApproved, 1},
		{"demote_to_pending", wage.StatusApproved, wage.StatusPending, -1},
		{"reject_approved", wage.StatusApproved, wage.StatusRejected, -1},
		{"reject_pending", wage.StatusPending, wage.StatusRejected, 0},
		{"unreject_to_pending", wage.StatusRejected, wage.StatusPending, 0},

		// No-ops
		{"approved_stays_approved", wage.StatusApproved, wage.StatusApproved, 0},
		{"pending_stays_pending", wage.StatusPending, wage.StatusPending, 0},
		{"rejected_stays_rejected", wage.StatusRejected, wage.StatusRejected, 0},
		{"nothing_to_nothing", wage.StatusNone, wage.StatusNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wage.CounterDelta(tt.from, tt.to))
		})
	}
}

/*
TestCounterDelta_RoundTrips confirms that any transition followed by its
inverse nets to zero, so no lifecycle loop can leak counter drift.
*/
func TestCounterDelta_RoundTrips(t *testing.T) {
	states := []wage.Status{
		wage.StatusNone,
		wage.StatusApproved,
		wage.StatusPending,
		wage.StatusRejected,
	}

	for _, from := range states {
		for _, to := range states {
			forward := wage.CounterDelta(from, to)
			backward := wage.CounterDelta(to, from)
			assert.Zero(t, forward+backward, "round trip %q -> %q -> %q must not drift", from, to, from)
		}
	}
}
