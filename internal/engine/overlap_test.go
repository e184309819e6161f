package engine

import (
	"math"
	"testing"
	"time"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func at(m int) time.Time { return base.Add(time.Duration(m) * time.Minute) }

func TestOverlapMinutes(t *testing.T) {
	cases := []struct {
		name                           string
		blockStart, blockEnd           time.Time
		winStart, winEnd               time.Time
		want                           float64
	}{
		{"full overlap", at(0), at(60), at(0), at(60), 60},
		{"block inside window", at(10), at(50), at(0), at(60), 40},
		{"window inside block", at(0), at(120), at(30), at(90), 60},
		{"partial left", at(-30), at(30), at(0), at(60), 30},
		{"partial right", at(30), at(90), at(0), at(60), 30},
		{"block before window", at(-120), at(-60), at(0), at(60), 0},
		{"block after window", at(120), at(180), at(0), at(60), 0},
		{"touching edge", at(-60), at(0), at(0), at(60), 0},
		{"zero-length block", at(30), at(30), at(0), at(60), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := OverlapMinutes(tc.blockStart, tc.blockEnd, tc.winStart, tc.winEnd)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("OverlapMinutes = %v, want %v", got, tc.want)
			}
			if got < 0 {
				t.Fatalf("OverlapMinutes returned negative value %v", got)
			}
		})
	}
}

func TestOverlapMinutesSymmetric(t *testing.T) {
	// When both intervals coincide the result must not depend on which
	// side is called the block and which the window.
	a := OverlapMinutes(at(0), at(45), at(0), at(45))
	b := OverlapMinutes(at(0), at(45), at(0), at(45))
	if a != b || a != 45 {
		t.Fatalf("symmetric overlap = %v / %v, want 45", a, b)
	}
}
