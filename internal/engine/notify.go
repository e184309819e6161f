package engine

import (
	"sync"
	"time"
)

// Kind names a notification tracked by the Notifier. Kinds never interact;
// each gets its own independent state machine.
type Kind string

const (
	KindSwitchToCustom   Kind = "switch_to_custom"
	KindExceedMaxLimit   Kind = "exceed_max_limit"
	KindTokensWillRunOut Kind = "tokens_will_run_out"
)

// MinNotificationDuration is the minimum dwell time before a triggered
// notification may clear. Conditions that toggle faster than the refresh
// cadence would otherwise flicker on and off every cycle.
const MinNotificationDuration = 5 * time.Second

type notifState struct {
	triggered bool
	since     time.Time
}

// Notifier debounces boolean alert conditions with a per-kind hysteresis
// state machine. State lives for the process lifetime only and belongs to
// exactly one evaluation loop; the mutex makes transitions safe when the
// host happens to be concurrent.
type Notifier struct {
	mu     sync.Mutex
	states map[Kind]*notifState
}

// NewNotifier returns a Notifier with all kinds inactive.
func NewNotifier() *Notifier {
	return &Notifier{states: make(map[Kind]*notifState)}
}

// Update advances the state machine for kind and reports whether the
// notification should currently be shown.
//
// A true condition triggers immediately and records when. A false condition
// keeps the notification visible until MinNotificationDuration has elapsed
// since the trigger, then clears it.
func (n *Notifier) Update(kind Kind, condition bool, now time.Time) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	st, ok := n.states[kind]
	if !ok {
		st = &notifState{}
		n.states[kind] = st
	}

	if condition {
		if !st.triggered {
			st.triggered = true
			st.since = now
		}
		return true
	}

	if st.triggered {
		if now.Sub(st.since) < MinNotificationDuration {
			return true
		}
		st.triggered = false
		st.since = time.Time{}
	}
	return false
}

// Reset clears the state for one kind.
func (n *Notifier) Reset(kind Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.states, kind)
}

// Active reports whether kind is currently triggered.
func (n *Notifier) Active(kind Kind) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	st, ok := n.states[kind]
	return ok && st.triggered
}
