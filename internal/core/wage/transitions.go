// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package wage

/*
CounterDelta returns the wage_reports_count adjustment for a lifecycle
transition.

Description: The denormalized counters on locations and organizations count
exactly the approved, non-deleted reports. A transition therefore adjusts
them only when it changes membership in that set. Creation and restoration
use StatusNone as the from-state, deletion uses it as the to-state.

	from              to                delta
	none              approved          +1   (create approved, restore approved)
	none              pending/rejected   0
	approved          pending/rejected  -1   (demotion)
	pending/rejected  approved          +1   (promotion)
	approved          none              -1   (delete while approved)
	pending/rejected  none               0
	x                 x                  0   (no status change)

Parameters:
  - from: The status before the transition (StatusNone for create/restore)
  - to: The status after the transition (StatusNone for delete)

Returns:
  - int: -1, 0 or +1
*/
func CounterDelta(from, to Status) int {
	fromCounted := from == StatusApproved
	toCounted := to == StatusApproved

	switch {
	case !fromCounted && toCounted:
		return 1
	case fromCounted && !toCounted:
		return -1
	default:
		return 0
	}
}
