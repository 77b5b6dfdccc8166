package scheduler

import (
	"testing"
	"time"
)

func TestStopwatchStartsAtZero(t *testing.T) {
	w := NewStopwatch()
	if w.Elapsed() != 0 {
		t.Errorf("Elapsed = %d, want 0", w.Elapsed())
	}
	if w.Paused() {
		t.Error("new stopwatch reports paused")
	}
}

func TestStopwatchCounts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 1s-ticker test in short mode")
	}
	w := NewStopwatch()
	w.Start()
	defer w.Stop()

	time.Sleep(2100 * time.Millisecond)
	if got := w.Elapsed(); got < 2 {
		t.Errorf("Elapsed = %d after ~2.1s, want >= 2", got)
	}
}

func TestStopwatchPauseFreezesReading(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 1s-ticker test in short mode")
	}
	w := NewStopwatch()
	w.Start()
	defer w.Stop()

	w.Pause()
	if !w.Paused() {
		t.Fatal("Paused = false after Pause")
	}
	before := w.Elapsed()
	time.Sleep(1500 * time.Millisecond)
	if got := w.Elapsed(); got != before {
		t.Errorf("Elapsed advanced while paused: %d -> %d", before, got)
	}

	w.Resume()
	if w.Paused() {
		t.Error("Paused = true after Resume")
	}
}

func TestStopwatchStopIdempotent(t *testing.T) {
	w := NewStopwatch()
	w.Start()
	w.Stop()
	w.Stop()

	// Stop on a never-started stopwatch is also a no-op
	NewStopwatch().Stop()
}

func TestStopwatchStartWhileRunning(t *testing.T) {
	w := NewStopwatch()
	w.Start()
	defer w.Stop()
	w.Start() // must not spawn a second ticker or reset the reading
	if w.Elapsed() != 0 {
		t.Errorf("Elapsed = %d, want 0", w.Elapsed())
	}
}
