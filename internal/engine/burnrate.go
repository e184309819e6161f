package engine

import (
	"time"

	"github.com/GiGiDKR/tokenwatch/internal/model"
)

// burnWindow is the trailing window the burn rate is estimated over.
const burnWindow = time.Hour

// HourlyBurnRate estimates tokens consumed per minute from all blocks that
// overlap the trailing hour ending at now.
//
// Each block contributes TotalTokens scaled by the fraction of its lifetime
// that falls inside the window, assuming uniform token density across the
// block. That is a deliberate approximation: per-minute metering is not
// recorded, only per-block totals.
//
// Gap blocks and blocks that ended before the window never contribute.
// Zero- or negative-duration blocks are skipped to avoid dividing by zero.
// An empty or fully idle snapshot yields 0.0, a valid steady state.
func HourlyBurnRate(blocks []model.UsageBlock, now time.Time) float64 {
	windowStart := now.Add(-burnWindow)

	var total float64
	for _, b := range blocks {
		if b.IsGap {
			continue
		}

		end := b.EffectiveEnd(now)
		if end.Before(windowStart) {
			continue
		}

		overlap := OverlapMinutes(b.StartTime, end, windowStart, now)
		if overlap <= 0 {
			continue
		}

		duration := end.Sub(b.StartTime).Minutes()
		if duration <= 0 {
			continue
		}

		total += float64(b.TotalTokens) * (overlap / duration)
	}

	if total <= 0 {
		return 0
	}
	return total / burnWindow.Minutes()
}
