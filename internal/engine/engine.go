package engine

import (
	"fmt"
	"time"

	"github.com/GiGiDKR/tokenwatch/internal/model"
)

// Evaluator runs one full evaluation cycle: limit resolution, burn rate,
// depletion prediction, and notification debouncing. The Notifier is the
// only stateful collaborator and is injected rather than shared globally.
type Evaluator struct {
	Limits   LimitResolver
	Notifier *Notifier
}

// NewEvaluator returns an Evaluator with a fresh Notifier and the default
// custom-limit buffer.
func NewEvaluator() *Evaluator {
	return &Evaluator{Notifier: NewNotifier()}
}

// Evaluate produces a Report for one snapshot at the given instant.
//
// Missing data degrades instead of failing: a nil snapshot yields a
// StatusNoData report, a snapshot without an active block yields
// StatusNoActiveSession, both with the requested plan's static limit so a
// consumer always has a quota to display. The only error case is a
// negative token count, which is a caller contract violation rather than
// a degradable input.
func (e *Evaluator) Evaluate(data *model.UsageData, plan model.Plan, now time.Time) (model.Report, error) {
	report := model.Report{
		Timestamp: now,
		Plan:      plan,
	}

	if data == nil || data.Blocks == nil {
		report.Status = model.StatusNoData
		report.TokenLimit = e.Limits.Resolve(plan, nil)
		return report, nil
	}

	for _, b := range data.Blocks {
		if b.TotalTokens < 0 {
			return model.Report{}, fmt.Errorf("block %s: negative token count %d", b.ID, b.TotalTokens)
		}
	}

	active := data.ActiveBlock()
	if active == nil {
		report.Status = model.StatusNoActiveSession
		report.TokenLimit = e.Limits.Resolve(plan, data.Blocks)
		return report, nil
	}

	tokensUsed := active.TotalTokens
	limit, switched := e.Limits.EffectiveLimit(plan, data.Blocks, tokensUsed)
	originalLimit := e.Limits.Resolve(plan, data.Blocks)

	tokensLeft := limit - tokensUsed
	if tokensLeft < 0 {
		tokensLeft = 0
	}

	resetTime := ResolveResetTime(active, now)
	burnRate := HourlyBurnRate(data.Blocks, now)
	prediction := Predict(now, resetTime, burnRate, tokensLeft)

	report.Status = model.StatusActive
	report.TokensUsed = tokensUsed
	report.TokenLimit = limit
	report.TokensLeft = tokensLeft
	if limit > 0 {
		report.UsagePercent = float64(tokensUsed) / float64(limit) * 100
	}
	report.BurnRatePerMin = burnRate
	report.PlanAutoSwitched = switched
	report.SessionStart = active.StartTime
	report.ResetTime = resetTime
	report.Prediction = prediction
	report.Notifications = model.Notifications{
		SwitchToCustom:   e.Notifier.Update(KindSwitchToCustom, limit > originalLimit, now),
		ExceedMaxLimit:   e.Notifier.Update(KindExceedMaxLimit, tokensUsed > limit, now),
		TokensWillRunOut: e.Notifier.Update(KindTokensWillRunOut, prediction.WillExhaustBeforeReset, now),
	}

	return report, nil
}
