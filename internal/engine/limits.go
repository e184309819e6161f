package engine

import (
	"github.com/GiGiDKR/tokenwatch/internal/model"
)

// Static per-plan token quotas. The legacy web frontend carried an inflated
// 44000-series table for the same plan names; this table is the canonical one.
var planLimits = map[model.Plan]int64{
	model.PlanPro:   7000,
	model.PlanMax5:  35000,
	model.PlanMax20: 140000,
}

// DefaultCustomBuffer is the multiplier applied to the historical peak when
// deriving the custom plan ceiling. 1.0 means no headroom.
const DefaultCustomBuffer = 1.0

// LimitResolver resolves token quotas for plans, including the adaptive
// custom ceiling.
type LimitResolver struct {
	// CustomBuffer scales the custom ceiling; values <= 0 fall back to
	// DefaultCustomBuffer.
	CustomBuffer float64
}

// Resolve returns the token quota for a plan. For the custom plan the
// ceiling is the highest TotalTokens among completed, non-gap blocks,
// scaled by CustomBuffer; if no qualifying block exists the pro limit
// applies. Unknown plans also resolve to the pro limit so that a display
// cycle always has some number to work with.
func (r LimitResolver) Resolve(plan model.Plan, blocks []model.UsageBlock) int64 {
	if plan == model.PlanCustom {
		var peak int64
		for _, b := range blocks {
			if b.IsGap || b.IsActive {
				continue
			}
			if b.TotalTokens > peak {
				peak = b.TotalTokens
			}
		}
		if peak > 0 {
			buf := r.CustomBuffer
			if buf <= 0 {
				buf = DefaultCustomBuffer
			}
			return int64(float64(peak) * buf)
		}
		return planLimits[model.PlanPro]
	}

	if limit, ok := planLimits[plan]; ok {
		return limit
	}
	return planLimits[model.PlanPro]
}

// EffectiveLimit applies the auto-switch rule: when usage exceeds the
// requested plan's quota, the custom ceiling is adopted if it is strictly
// larger. The effective limit therefore never shrinks mid-session.
// The returned bool reports whether the switch happened.
func (r LimitResolver) EffectiveLimit(plan model.Plan, blocks []model.UsageBlock, tokensUsed int64) (int64, bool) {
	limit := r.Resolve(plan, blocks)
	if plan == model.PlanCustom || tokensUsed <= limit {
		return limit, false
	}

	custom := r.Resolve(model.PlanCustom, blocks)
	if custom > limit {
		return custom, true
	}
	return limit, false
}
