// Package engine implements the burn-rate estimation and depletion
// prediction core. Everything here is a pure function over immutable
// snapshots except the Notifier, which owns the only mutable state.
package engine

import "time"

// OverlapMinutes returns the duration, in minutes, of the intersection of
// [blockStart, blockEnd] and [winStart, winEnd]. Disjoint intervals yield
// exactly 0, never a negative value.
func OverlapMinutes(blockStart, blockEnd, winStart, winEnd time.Time) float64 {
	start := blockStart
	if winStart.After(start) {
		start = winStart
	}
	end := blockEnd
	if winEnd.Before(end) {
		end = winEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Minutes()
}
