package engine

import (
	"testing"
	"time"

	"github.com/GiGiDKR/tokenwatch/internal/model"
)

func TestPredictDepletion(t *testing.T) {
	now := at(0)
	reset := at(120)

	// 1000 tokens left at 100 tokens/min → depleted in 10 minutes.
	p := Predict(now, reset, 100, 1000)
	want := now.Add(10 * time.Minute)
	if !p.PredictedEndTime.Equal(want) {
		t.Fatalf("PredictedEndTime = %v, want %v", p.PredictedEndTime, want)
	}
	if !p.WillExhaustBeforeReset {
		t.Fatal("expected exhaustion before reset")
	}
	if p.MinutesToDepletion != 10 {
		t.Fatalf("MinutesToDepletion = %v, want 10", p.MinutesToDepletion)
	}
}

func TestPredictZeroBurnRate(t *testing.T) {
	now := at(0)
	reset := at(90)

	p := Predict(now, reset, 0, 1000)
	if !p.PredictedEndTime.Equal(reset) {
		t.Fatalf("PredictedEndTime = %v, want reset time %v", p.PredictedEndTime, reset)
	}
	if p.WillExhaustBeforeReset {
		t.Fatal("idle session must not report exhaustion before reset")
	}
}

func TestPredictNothingLeft(t *testing.T) {
	now := at(0)
	reset := at(90)

	p := Predict(now, reset, 50, 0)
	if !p.PredictedEndTime.Equal(reset) {
		t.Fatalf("PredictedEndTime = %v, want reset time %v", p.PredictedEndTime, reset)
	}
}

func TestPredictSlowBurnOutlastsReset(t *testing.T) {
	now := at(0)
	reset := at(60)

	// 12000 tokens at 100/min → 120 minutes, past the reset boundary.
	p := Predict(now, reset, 100, 12000)
	if p.WillExhaustBeforeReset {
		t.Fatal("depletion after reset must not set WillExhaustBeforeReset")
	}
}

func TestResolveResetTimeExplicitEnd(t *testing.T) {
	end := at(180)
	active := &model.UsageBlock{StartTime: at(-60), EndTime: &end, IsActive: true}
	if got := ResolveResetTime(active, at(0)); !got.Equal(end) {
		t.Fatalf("ResolveResetTime = %v, want explicit end %v", got, end)
	}
}

func TestResolveResetTimeDefaultDuration(t *testing.T) {
	active := &model.UsageBlock{StartTime: at(-60), IsActive: true}
	want := at(-60).Add(model.BlockDuration)
	if got := ResolveResetTime(active, at(0)); !got.Equal(want) {
		t.Fatalf("ResolveResetTime = %v, want start+5h %v", got, want)
	}
}

func TestResolveResetTimeNilBlock(t *testing.T) {
	now := at(0)
	want := now.Add(model.BlockDuration)
	if got := ResolveResetTime(nil, now); !got.Equal(want) {
		t.Fatalf("ResolveResetTime(nil) = %v, want %v", got, want)
	}
}
