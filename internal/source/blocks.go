package source

import (
	"sort"
	"time"

	"github.com/GiGiDKR/tokenwatch/internal/model"
)

// BuildBlocks groups usage entries into fixed-length usage blocks.
//
// A block starts at the first entry's timestamp floored to the hour and
// spans model.BlockDuration. An entry falling past the current block's end
// opens a new block; when the silence between two consecutive entries
// itself exceeds the block duration, a synthetic gap block is inserted to
// mark the idle stretch. Gap blocks carry no tokens and are excluded from
// rate math downstream.
//
// The final block is active while now is inside its span and the last
// recorded activity is more recent than one block duration.
func BuildBlocks(entries []UsageEntry, now time.Time) []model.UsageBlock {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]UsageEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var blocks []model.UsageBlock
	var cur *model.UsageBlock
	var lastActivity time.Time

	flush := func() {
		if cur == nil {
			return
		}
		end := lastActivity
		cur.ActualEndTime = &end
		blocks = append(blocks, *cur)
		cur = nil
	}

	for _, e := range sorted {
		startNew := cur == nil ||
			!e.Timestamp.Before(cur.PeriodEnd()) ||
			e.Timestamp.Sub(lastActivity) >= model.BlockDuration

		if startNew {
			prevEnd := lastActivity
			flush()

			// Mark the idle stretch between sessions with a gap block.
			if !prevEnd.IsZero() && e.Timestamp.Sub(prevEnd) >= model.BlockDuration {
				gapEnd := e.Timestamp
				blocks = append(blocks, model.UsageBlock{
					ID:        prevEnd.Format(time.RFC3339) + "-gap",
					StartTime: prevEnd,
					EndTime:   &gapEnd,
					IsGap:     true,
				})
			}

			start := e.Timestamp.Truncate(time.Hour)
			end := start.Add(model.BlockDuration)
			cur = &model.UsageBlock{
				ID:        start.Format(time.RFC3339),
				StartTime: start,
				EndTime:   &end,
			}
		}

		cur.TotalTokens += e.Tokens
		cur.Entries++
		lastActivity = e.Timestamp
	}

	// The trailing block stays open when it is still inside its span and
	// saw activity recently enough.
	if cur != nil {
		if now.Before(cur.PeriodEnd()) && now.Sub(lastActivity) < model.BlockDuration {
			cur.IsActive = true
			blocks = append(blocks, *cur)
		} else {
			flush()
		}
	}

	return blocks
}
