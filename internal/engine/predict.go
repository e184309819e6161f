package engine

import (
	"time"

	"github.com/GiGiDKR/tokenwatch/internal/model"
)

// Predict projects when the remaining quota reaches zero at the current
// burn rate. With no burn or nothing left to burn there is no meaningful
// projection, so the reset boundary itself is returned.
func Predict(now, resetTime time.Time, burnRate float64, tokensLeft int64) model.Prediction {
	var end time.Time
	if burnRate > 0 && tokensLeft > 0 {
		minutes := float64(tokensLeft) / burnRate
		end = now.Add(time.Duration(minutes * float64(time.Minute)))
	} else {
		end = resetTime
	}

	p := model.Prediction{
		PredictedEndTime:       end,
		WillExhaustBeforeReset: end.Before(resetTime),
	}
	if end.After(now) {
		p.MinutesToDepletion = end.Sub(now).Minutes()
	}
	return p
}

// ResolveResetTime determines the quota reset boundary for the active
// block: its explicit end time when recorded, StartTime + BlockDuration
// otherwise. The 5-hour default is the documented period length, not an
// arbitrary fallback.
func ResolveResetTime(active *model.UsageBlock, now time.Time) time.Time {
	if active == nil {
		return now.Add(model.BlockDuration)
	}
	return active.PeriodEnd()
}
