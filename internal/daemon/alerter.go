package daemon

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"

	"github.com/GiGiDKR/tokenwatch/internal/model"
)

// Alerter sends desktop notifications on rising edges of report alert
// flags. The engine already debounces flicker; this layer only ensures a
// sustained condition notifies once instead of every poll.
type Alerter struct {
	enabled bool
	logger  zerolog.Logger
	prev    model.Notifications
}

// NewAlerter returns an Alerter; when enabled is false Notify is a no-op.
func NewAlerter(enabled bool, logger zerolog.Logger) *Alerter {
	return &Alerter{enabled: enabled, logger: logger}
}

// Notify compares the report's alert flags against the previous poll and
// raises a desktop notification for each flag that just turned on.
func (a *Alerter) Notify(r model.Report) {
	if !a.enabled {
		return
	}

	n := r.Notifications
	if n.SwitchToCustom && !a.prev.SwitchToCustom {
		a.send("Plan limit exceeded",
			fmt.Sprintf("Usage exceeds the %s limit; tracking against historical peak instead.", r.Plan))
	}
	if n.ExceedMaxLimit && !a.prev.ExceedMaxLimit {
		a.send("Token limit exceeded",
			fmt.Sprintf("%d tokens used of a %d token limit.", r.TokensUsed, r.TokenLimit))
	}
	if n.TokensWillRunOut && !a.prev.TokensWillRunOut {
		a.send("Tokens running out",
			fmt.Sprintf("At the current burn rate, tokens run out in %.0f minutes.", r.Prediction.MinutesToDepletion))
	}
	a.prev = n
}

func (a *Alerter) send(title, body string) {
	if err := beeep.Notify(title, body, ""); err != nil {
		a.logger.Warn().Err(err).Str("title", title).Msg("desktop notification failed")
	}
}
