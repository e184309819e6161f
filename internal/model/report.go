package model

import "time"

// Status describes the terminal state of one evaluation cycle.
type Status string

const (
	// StatusActive means an active block was found and all metrics are populated.
	StatusActive Status = "active"
	// StatusNoActiveSession means data was available but no block is currently open.
	StatusNoActiveSession Status = "no_active_session"
	// StatusNoData means the data source returned nothing this cycle.
	StatusNoData Status = "no_data"
)

// Prediction is the depletion projection against the reset boundary.
type Prediction struct {
	PredictedEndTime       time.Time `json:"predicted_end_time"`
	WillExhaustBeforeReset bool      `json:"will_exhaust_before_reset"`
	MinutesToDepletion     float64   `json:"minutes_to_depletion"`
}

// Notifications holds the debounced alert flags for one cycle.
type Notifications struct {
	SwitchToCustom   bool `json:"switch_to_custom"`
	ExceedMaxLimit   bool `json:"exceed_max_limit"`
	TokensWillRunOut bool `json:"tokens_will_run_out"`
}

// Report is the immutable output of one evaluation cycle. Raw numbers and
// UTC timestamps only; formatting belongs to the consumer.
type Report struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Plan      Plan      `json:"plan"`

	TokensUsed       int64   `json:"tokens_used"`
	TokenLimit       int64   `json:"token_limit"`
	TokensLeft       int64   `json:"tokens_left"`
	UsagePercent     float64 `json:"usage_percent"`
	BurnRatePerMin   float64 `json:"burn_rate_per_min"`
	PlanAutoSwitched bool    `json:"plan_auto_switched"`

	SessionStart time.Time `json:"session_start,omitzero"`
	ResetTime    time.Time `json:"reset_time,omitzero"`

	Prediction    Prediction    `json:"prediction"`
	Notifications Notifications `json:"notifications"`
}
