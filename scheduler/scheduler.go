// Package scheduler owns the capture control loop: while a session is live
// it paces frame capture on a fixed cadence, submits frames to the vision
// gateway and routes the resulting observation batches into aggregation.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/classpulse/classpulsebackend/vision"
)

// State is the scheduler lifecycle. Transitions are explicit with defined
// preconditions; there is no nullable timer-handle juggling.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrNotIdle        = errors.New("scheduler has already been started")
	ErrNotCapturing   = errors.New("scheduler is not capturing")
	ErrNotPaused      = errors.New("scheduler is not paused")
	ErrSourceDisabled = errors.New("frame source is not enabled")
)

// FrameSource supplies frames, typically a camera. Capture must honor ctx
// cancellation.
type FrameSource interface {
	Enabled() bool
	Capture(ctx context.Context) (vision.Frame, error)
}

// Gateway converts a frame into an observation batch.
type Gateway interface {
	ProcessFrame(ctx context.Context, sessionID string, frame vision.Frame) (*vision.DetectionResponse, error)
}

// Sink receives successful observation batches.
type Sink interface {
	HandleDetections(ctx context.Context, sessionID string, detection *vision.DetectionResponse) error
}

// TrendPoint is one entry of the session-scoped trend series kept for
// display. It is a peripheral aggregate, not authoritative state.
type TrendPoint struct {
	Timestamp         int64   `json:"timestamp"`
	FocusedPercentage float64 `json:"focused_percentage"`
	TotalFaces        int     `json:"total_faces"`
}

const trendSeriesCapacity = 10

// Scheduler drives capture for one session. Ticks are strictly sequential:
// the next tick is only armed after the current request settles, so
// observation batches for the session are applied in capture order and at
// most one gateway request is outstanding.
type Scheduler struct {
	sessionID string
	interval  time.Duration
	source    FrameSource
	gateway   Gateway
	sink      Sink
	stopwatch *Stopwatch

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
	trend  []TrendPoint
}

// New builds a scheduler for one session. interval <= 0 falls back to 5s,
// the cadence the system has always assumed.
func New(sessionID string, interval time.Duration, source FrameSource, gateway Gateway, sink Sink) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Scheduler{
		sessionID: sessionID,
		interval:  interval,
		source:    source,
		gateway:   gateway,
		sink:      sink,
		stopwatch: NewStopwatch(),
		state:     StateIdle,
	}
}

// Interval returns the configured capture cadence.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed returns the session stopwatch reading in whole seconds.
func (s *Scheduler) Elapsed() int { return s.stopwatch.Elapsed() }

// Start transitions Idle -> Capturing and begins the periodic capture loop
// and the session stopwatch. It requires the frame source to be enabled.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return ErrNotIdle
	}
	if !s.source.Enabled() {
		return ErrSourceDisabled
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateCapturing
	s.stopwatch.Start()

	go s.run(ctx)
	log.Printf("scheduler: session %s capturing every %s", s.sessionID, s.interval)
	return nil
}

// Pause suspends the capture timer without resetting any counters. The
// session stopwatch keeps running; it is pausable independently via
// PauseStopwatch.
func (s *Scheduler) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCapturing {
		return ErrNotCapturing
	}
	s.state = StatePaused
	log.Printf("scheduler: session %s paused", s.sessionID)
	return nil
}

// Resume transitions Paused -> Capturing.
func (s *Scheduler) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return ErrNotPaused
	}
	s.state = StateCapturing
	log.Printf("scheduler: session %s resumed", s.sessionID)
	return nil
}

// PauseStopwatch suspends only the wall-clock stopwatch.
func (s *Scheduler) PauseStopwatch() { s.stopwatch.Pause() }

// ResumeStopwatch resumes only the wall-clock stopwatch.
func (s *Scheduler) ResumeStopwatch() { s.stopwatch.Resume() }

// Stop cancels the timer and any in-flight gateway request and transitions
// to Stopped. It is idempotent; stopping an already-stopped (or never
// started) scheduler is a no-op. A response arriving after Stop is
// discarded, never applied.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	started := s.cancel != nil
	s.state = StateStopped
	if s.cancel != nil {
		s.cancel()
	}
	done := s.done
	s.mu.Unlock()

	s.stopwatch.Stop()
	if started && done != nil {
		<-done
	}
	log.Printf("scheduler: session %s stopped", s.sessionID)
}

// TrendSeries returns a copy of the bounded recent-batch series, oldest
// first.
func (s *Scheduler) TrendSeries() []TrendPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TrendPoint, len(s.trend))
	copy(out, s.trend)
	return out
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if s.State() == StateCapturing {
				s.tick(ctx)
			}
			// re-armed only after the tick settles; ticks never overlap
			timer.Reset(s.interval)
		}
	}
}

// tick runs one capture cycle. Any failure is logged and abandoned; the
// next tick proceeds unaffected and the same frame is never retried.
func (s *Scheduler) tick(ctx context.Context) {
	frame, err := s.source.Capture(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("scheduler: session %s frame capture failed: %v", s.sessionID, err)
		}
		return
	}

	detection, err := s.gateway.ProcessFrame(ctx, s.sessionID, frame)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("scheduler: session %s gateway error: %v", s.sessionID, err)
		}
		return
	}

	// the loop may have been stopped while the request was in flight; a
	// late-arriving response must not mutate any record
	if ctx.Err() != nil {
		log.Printf("scheduler: session %s discarding detection response received after stop", s.sessionID)
		return
	}

	if err := s.sink.HandleDetections(ctx, s.sessionID, detection); err != nil {
		log.Printf("scheduler: session %s failed to apply detections: %v", s.sessionID, err)
		return
	}
	s.recordTrend(detection)
}

func (s *Scheduler) recordTrend(detection *vision.DetectionResponse) {
	point := TrendPoint{
		Timestamp:  time.Now().Unix(),
		TotalFaces: detection.TotalFaces,
	}
	if detection.Summary != nil && detection.TotalFaces > 0 {
		point.FocusedPercentage = float64(detection.Summary.FocusedFaces) / float64(detection.TotalFaces) * 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.trend) >= trendSeriesCapacity {
		s.trend = s.trend[len(s.trend)-trendSeriesCapacity+1:]
	}
	s.trend = append(s.trend, point)
}
