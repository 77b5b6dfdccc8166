package scheduler

import (
	"sync"
	"time"
)

// Stopwatch tracks elapsed session wall-clock time on a 1-second ticker. It
// is independent of the capture cadence and independently pausable, so the
// displayed session duration keeps running while captures are suspended
// (and vice versa).
type Stopwatch struct {
	mu      sync.Mutex
	elapsed int
	running bool
	paused  bool
	stop    chan struct{}
}

// NewStopwatch returns a stopped stopwatch at zero.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{}
}

// Start begins counting from the current reading. Starting a running
// stopwatch is a no-op.
func (w *Stopwatch) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.paused = false
	w.stop = make(chan struct{})
	go w.loop(w.stop)
}

func (w *Stopwatch) loop(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.mu.Lock()
			if !w.paused {
				w.elapsed++
			}
			w.mu.Unlock()
		}
	}
}

// Pause freezes the reading without stopping the ticker goroutine.
func (w *Stopwatch) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused = true
}

// Resume continues counting after a Pause.
func (w *Stopwatch) Resume() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused = false
}

// Stop halts the stopwatch; the reading is retained. Idempotent.
func (w *Stopwatch) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stop)
}

// Elapsed returns the current reading in whole seconds.
func (w *Stopwatch) Elapsed() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.elapsed
}

// Paused reports whether the stopwatch is currently paused.
func (w *Stopwatch) Paused() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paused
}
