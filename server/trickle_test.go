package server

import (
	"testing"
	"time"
)

func TestTrickleAccumulatesWholeIntervals(t *testing.T) {
	tr := NewTrickle(100*time.Millisecond, 2)
	if got := tr.Advance(60 * time.Millisecond); got != 0 {
		t.Fatalf("partial interval = %d", got)
	}
	if got := tr.Advance(60 * time.Millisecond); got != 2 {
		t.Fatalf("one interval = %d, want 2", got)
	}
	if got := tr.Advance(250 * time.Millisecond); got != 4 {
		t.Fatalf("two intervals = %d, want 4", got)
	}
}

func TestTrickleDiscardsPausedTime(t *testing.T) {
	tr := NewTrickle(100*time.Millisecond, 1)
	tr.Advance(90 * time.Millisecond)
	tr.Pause()
	if got := tr.Advance(time.Second); got != 0 {
		t.Fatalf("scored while paused: %d", got)
	}
	tr.Resume()
	if got := tr.Advance(20 * time.Millisecond); got != 0 {
		t.Fatalf("pre-pause remainder carried over: %d", got)
	}
	if got := tr.Advance(80 * time.Millisecond); got != 1 {
		t.Fatalf("after resume = %d, want 1", got)
	}
}
