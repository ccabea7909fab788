package stream

import (
	"testing"
	"time"
)

func TestBackoffFloor(t *testing.T) {
	b := backoff{base: time.Second, max: 30 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // 32s capped
		{6, 30 * time.Second},
		{20, 30 * time.Second},
		{-1, 1 * time.Second},
	}

	for _, tt := range tests {
		if got := b.floor(tt.attempt); got != tt.want {
			t.Errorf("floor(%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffDelayForBounds(t *testing.T) {
	b := backoff{base: time.Second, max: 30 * time.Second, jitter: time.Second}

	for attempt := 0; attempt < 8; attempt++ {
		floor := b.floor(attempt)
		for i := 0; i < 50; i++ {
			d := b.delayFor(attempt)
			if d < floor || d >= floor+b.jitter {
				t.Fatalf("delayFor(%d) = %s, want in [%s, %s)", attempt, d, floor, floor+b.jitter)
			}
		}
	}
}

func TestBackoffNoJitter(t *testing.T) {
	b := backoff{base: time.Second, max: 30 * time.Second}

	if got := b.delayFor(2); got != 4*time.Second {
		t.Errorf("delayFor(2) = %s, want 4s with zero jitter", got)
	}
}
