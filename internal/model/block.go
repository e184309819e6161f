// Package model defines domain types for tokenwatch usage tracking.
package model

import "time"

// BlockDuration is the default length of a usage block when no explicit
// end time is recorded. Quota periods reset on this boundary.
const BlockDuration = 5 * time.Hour

// UsageBlock is a contiguous interval of recorded activity with a token count.
// All timestamps are UTC; display conversion is the caller's concern.
type UsageBlock struct {
	ID            string     `json:"id"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	ActualEndTime *time.Time `json:"actual_end_time,omitempty"`
	TotalTokens   int64      `json:"total_tokens"`
	Entries       int        `json:"entries"`
	IsActive      bool       `json:"is_active"`
	IsGap         bool       `json:"is_gap"`
}

// EffectiveEnd returns the closing timestamp used in rate calculations:
// now for active blocks, ActualEndTime for closed blocks when recorded,
// now otherwise.
func (b UsageBlock) EffectiveEnd(now time.Time) time.Time {
	if b.IsActive {
		return now
	}
	if b.ActualEndTime != nil {
		return *b.ActualEndTime
	}
	return now
}

// PeriodEnd returns the quota reset boundary for the block: the explicit
// end time when present, StartTime + BlockDuration otherwise.
func (b UsageBlock) PeriodEnd() time.Time {
	if b.EndTime != nil {
		return *b.EndTime
	}
	return b.StartTime.Add(BlockDuration)
}

// UsageData is a snapshot of all known blocks, as supplied by a data source.
// A nil *UsageData means the source had no data this cycle.
type UsageData struct {
	Blocks    []UsageBlock `json:"blocks"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// ActiveBlock returns the first active block in slice order, or nil.
// At most one block should be active; when the snapshot carries more than
// one the first wins, which keeps repeated evaluations stable.
func (d *UsageData) ActiveBlock() *UsageBlock {
	if d == nil {
		return nil
	}
	for i := range d.Blocks {
		if d.Blocks[i].IsActive {
			return &d.Blocks[i]
		}
	}
	return nil
}
