package daemon

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/GiGiDKR/tokenwatch/internal/model"
)

type stubSource struct {
	data *model.UsageData
}

func (s *stubSource) Fetch(now time.Time) *model.UsageData {
	return s.data
}

func TestDiffReports(t *testing.T) {
	prev := model.Report{
		TokensUsed:     1000,
		TokensLeft:     6000,
		UsagePercent:   14.3,
		BurnRatePerMin: 50,
	}
	curr := model.Report{
		TokensUsed:     1500,
		TokensLeft:     5500,
		UsagePercent:   21.4,
		BurnRatePerMin: 75,
	}

	delta := diffReports(prev, curr)
	if delta.TokensUsed != 500 {
		t.Fatalf("TokensUsed delta = %d, want 500", delta.TokensUsed)
	}
	if delta.TokensLeft != -500 {
		t.Fatalf("TokensLeft delta = %d, want -500", delta.TokensLeft)
	}
	if math.Abs(delta.BurnRatePerMin-25) > 1e-9 {
		t.Fatalf("BurnRatePerMin delta = %.2f, want 25", delta.BurnRatePerMin)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		DataDir:      ".",
		Interval:     3 * time.Second,
		EventsBuffer: 2,
	}, &stubSource{}, nil, zerolog.Nop())

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnceNoDataEmitsSingleEvent(t *testing.T) {
	s := New(Config{DataDir: "."}, &stubSource{}, nil, zerolog.Nop())

	s.pollOnce()
	s.pollOnce()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasReport {
		t.Fatal("expected a report after pollOnce")
	}
	if s.report.Status != model.StatusNoData {
		t.Fatalf("report status = %q, want %q", s.report.Status, model.StatusNoData)
	}
	// First poll seeds a report event; the identical second poll is silent.
	if len(s.events) != 1 {
		t.Fatalf("events len = %d, want 1", len(s.events))
	}
	if s.events[0].Type != "report" {
		t.Fatalf("event type = %q, want %q", s.events[0].Type, "report")
	}
	if s.pollCount != 2 {
		t.Fatalf("pollCount = %d, want 2", s.pollCount)
	}
}

func TestPollOnceActiveSessionEvent(t *testing.T) {
	now := time.Now().UTC()
	start := now.Add(-time.Hour).Truncate(time.Hour)
	src := &stubSource{data: &model.UsageData{
		Blocks: []model.UsageBlock{{
			ID:          start.Format(time.RFC3339),
			StartTime:   start,
			TotalTokens: 3000,
			Entries:     4,
			IsActive:    true,
		}},
		FetchedAt: now,
	}}

	s := New(Config{DataDir: ".", Plan: model.PlanPro}, src, nil, zerolog.Nop())
	s.pollOnce()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.report.Status != model.StatusActive {
		t.Fatalf("report status = %q, want %q", s.report.Status, model.StatusActive)
	}
	if s.report.TokensUsed != 3000 {
		t.Fatalf("TokensUsed = %d, want 3000", s.report.TokensUsed)
	}
	if s.report.TokenLimit != 7000 {
		t.Fatalf("TokenLimit = %d, want 7000", s.report.TokenLimit)
	}
	if s.lastError != "" {
		t.Fatalf("lastError = %q, want empty", s.lastError)
	}
}

func TestAlerterRisingEdgeOnly(t *testing.T) {
	a := NewAlerter(false, zerolog.Nop())

	on := model.Report{Notifications: model.Notifications{ExceedMaxLimit: true}}
	a.Notify(on)
	a.Notify(on)

	// Disabled alerter must not track state either.
	if a.prev.ExceedMaxLimit {
		t.Fatal("disabled alerter recorded state")
	}

	a.enabled = true
	a.Notify(on)
	if !a.prev.ExceedMaxLimit {
		t.Fatal("enabled alerter did not record rising edge")
	}
}
