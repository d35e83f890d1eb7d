package game

import (
	"testing"

	"sprinttap/internal/config"
)

func TestValidator_OK(t *testing.T) {
	v := NewValidator(config.DefaultGame())

	tests := []struct {
		ms   int
		want bool
	}{
		{99, false},
		{100, true},
		{250, true},
		{2000, true},
		{2001, false},
		{0, false},
	}

	for _, tt := range tests {
		if got := v.OK(tt.ms); got != tt.want {
			t.Errorf("OK(%d) = %v, want %v", tt.ms, got, tt.want)
		}
	}
}

func TestRandomWaitDelay_Bounds(t *testing.T) {
	const minMs, maxMs = 1000, 3000

	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		d := RandomWaitDelay(minMs, maxMs)
		if d < minMs || d > maxMs {
			t.Fatalf("RandomWaitDelay() = %d, want within [%d, %d]", d, minMs, maxMs)
		}
		seen[d] = true
	}

	// The anti-anticipation mechanism needs variety, not a constant.
	if len(seen) < 2 {
		t.Errorf("RandomWaitDelay() produced %d distinct values over 1000 draws", len(seen))
	}
}

func TestRandomWaitDelay_DegenerateRange(t *testing.T) {
	if d := RandomWaitDelay(500, 500); d != 500 {
		t.Errorf("RandomWaitDelay(500, 500) = %d, want 500", d)
	}
}
