package engine

import (
	"math"
	"testing"

	"github.com/GiGiDKR/tokenwatch/internal/model"
)

func TestEvaluateNoData(t *testing.T) {
	e := NewEvaluator()

	for _, data := range []*model.UsageData{nil, {}} {
		report, err := e.Evaluate(data, model.PlanPro, at(0))
		if err != nil {
			t.Fatalf("Evaluate returned error for missing data: %v", err)
		}
		if report.Status != model.StatusNoData {
			t.Fatalf("Status = %s, want %s", report.Status, model.StatusNoData)
		}
		if report.TokenLimit != 7000 {
			t.Fatalf("TokenLimit = %d, want pro limit 7000", report.TokenLimit)
		}
	}
}

func TestEvaluateNoActiveSession(t *testing.T) {
	e := NewEvaluator()
	data := &model.UsageData{Blocks: []model.UsageBlock{
		closedBlock(at(-600), at(-400), 5000),
	}}

	report, err := e.Evaluate(data, model.PlanPro, at(0))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Status != model.StatusNoActiveSession {
		t.Fatalf("Status = %s, want %s", report.Status, model.StatusNoActiveSession)
	}
	if report.TokensUsed != 0 || report.BurnRatePerMin != 0 {
		t.Fatal("inactive snapshot must not report usage metrics")
	}
}

func TestEvaluateEmptyBlockSliceIsNoSession(t *testing.T) {
	e := NewEvaluator()
	data := &model.UsageData{Blocks: []model.UsageBlock{}}
	report, err := e.Evaluate(data, model.PlanPro, at(0))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Status != model.StatusNoActiveSession {
		t.Fatalf("Status = %s, want %s", report.Status, model.StatusNoActiveSession)
	}
}

func TestEvaluateActiveSession(t *testing.T) {
	e := NewEvaluator()
	now := at(0)
	data := &model.UsageData{Blocks: []model.UsageBlock{
		{StartTime: at(-30), TotalTokens: 3000, IsActive: true},
	}}

	report, err := e.Evaluate(data, model.PlanPro, now)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Status != model.StatusActive {
		t.Fatalf("Status = %s, want active", report.Status)
	}
	if report.TokensUsed != 3000 || report.TokenLimit != 7000 {
		t.Fatalf("usage = %d/%d, want 3000/7000", report.TokensUsed, report.TokenLimit)
	}
	if report.TokensLeft != 4000 {
		t.Fatalf("TokensLeft = %d, want 4000", report.TokensLeft)
	}
	if math.Abs(report.UsagePercent-42.857142857) > 1e-6 {
		t.Fatalf("UsagePercent = %v, want ≈42.86", report.UsagePercent)
	}
	if math.Abs(report.BurnRatePerMin-50.0) > 1e-9 {
		t.Fatalf("BurnRatePerMin = %v, want 50", report.BurnRatePerMin)
	}
	wantReset := at(-30).Add(model.BlockDuration)
	if !report.ResetTime.Equal(wantReset) {
		t.Fatalf("ResetTime = %v, want %v", report.ResetTime, wantReset)
	}
	// 4000 left at 50/min → 80 minutes, well before the 4.5h reset.
	if !report.Prediction.WillExhaustBeforeReset {
		t.Fatal("expected exhaustion before reset")
	}
	if !report.Notifications.TokensWillRunOut {
		t.Fatal("tokens_will_run_out flag not raised")
	}
	if report.Notifications.SwitchToCustom || report.Notifications.ExceedMaxLimit {
		t.Fatal("unexpected notification flags raised")
	}
}

func TestEvaluateAutoSwitch(t *testing.T) {
	e := NewEvaluator()
	now := at(0)
	data := &model.UsageData{Blocks: []model.UsageBlock{
		closedBlock(at(-900), at(-700), 9000),
		{StartTime: at(-30), TotalTokens: 8000, IsActive: true},
	}}

	report, err := e.Evaluate(data, model.PlanPro, now)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !report.PlanAutoSwitched {
		t.Fatal("expected plan auto-switch")
	}
	if report.TokenLimit != 9000 {
		t.Fatalf("TokenLimit = %d, want 9000", report.TokenLimit)
	}
	if report.TokenLimit < 7000 {
		t.Fatal("auto-switch shrank the effective limit")
	}
	if !report.Notifications.SwitchToCustom {
		t.Fatal("switch_to_custom flag not raised")
	}
	if report.Notifications.ExceedMaxLimit {
		t.Fatal("exceed flag raised although usage fits the new ceiling")
	}
}

func TestEvaluateExceedFlag(t *testing.T) {
	e := NewEvaluator()
	data := &model.UsageData{Blocks: []model.UsageBlock{
		{StartTime: at(-30), TotalTokens: 8000, IsActive: true},
	}}

	// No historical block to switch to: usage stays over the pro limit.
	report, err := e.Evaluate(data, model.PlanPro, at(0))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !report.Notifications.ExceedMaxLimit {
		t.Fatal("exceed_max_limit flag not raised")
	}
	if report.TokensLeft != 0 {
		t.Fatalf("TokensLeft = %d, want clamped 0", report.TokensLeft)
	}
}

func TestEvaluateNegativeTokensFails(t *testing.T) {
	e := NewEvaluator()
	data := &model.UsageData{Blocks: []model.UsageBlock{
		{StartTime: at(-30), TotalTokens: -1, IsActive: true},
	}}

	if _, err := e.Evaluate(data, model.PlanPro, at(0)); err == nil {
		t.Fatal("expected error for negative token count")
	}
}

func TestEvaluateFirstActiveBlockWins(t *testing.T) {
	e := NewEvaluator()
	data := &model.UsageData{Blocks: []model.UsageBlock{
		{StartTime: at(-30), TotalTokens: 1000, IsActive: true},
		{StartTime: at(-20), TotalTokens: 2000, IsActive: true},
	}}

	report, err := e.Evaluate(data, model.PlanPro, at(0))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.TokensUsed != 1000 {
		t.Fatalf("TokensUsed = %d, want first active block's 1000", report.TokensUsed)
	}
}
