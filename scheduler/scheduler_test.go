package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/classpulse/classpulsebackend/vision"
)

type fakeSource struct {
	enabled bool
	err     error
}

func (s *fakeSource) Enabled() bool { return s.enabled }

func (s *fakeSource) Capture(ctx context.Context) (vision.Frame, error) {
	if s.err != nil {
		return vision.Frame{}, s.err
	}
	return vision.Frame{JPEG: []byte("jpeg"), Width: 640, Height: 480}, nil
}

type fakeGateway struct {
	mu       sync.Mutex
	calls    int
	errs     []error
	response *vision.DetectionResponse
	started  chan struct{} // closed on first call, if set
	block    bool          // wait for ctx cancellation before returning
}

func (g *fakeGateway) ProcessFrame(ctx context.Context, sessionID string, frame vision.Frame) (*vision.DetectionResponse, error) {
	g.mu.Lock()
	call := g.calls
	g.calls++
	if g.started != nil && call == 0 {
		close(g.started)
	}
	g.mu.Unlock()

	if g.block {
		<-ctx.Done()
	}
	if call < len(g.errs) && g.errs[call] != nil {
		return nil, g.errs[call]
	}
	if g.response != nil {
		return g.response, nil
	}
	return &vision.DetectionResponse{LectureID: sessionID, TotalFaces: 1}, nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeSink struct {
	mu       sync.Mutex
	batches  []*vision.DetectionResponse
	received chan struct{}
}

func newFakeSink() *fakeSink {
	return &fakeSink{received: make(chan struct{}, 16)}
}

func (s *fakeSink) HandleDetections(ctx context.Context, sessionID string, detection *vision.DetectionResponse) error {
	s.mu.Lock()
	s.batches = append(s.batches, detection)
	s.mu.Unlock()
	s.received <- struct{}{}
	return nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func waitFor(t *testing.T, ch chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestStartRequiresEnabledSource(t *testing.T) {
	sched := New("sess-1", 10*time.Millisecond, &fakeSource{enabled: false}, &fakeGateway{}, newFakeSink())
	if err := sched.Start(); !errors.Is(err, ErrSourceDisabled) {
		t.Fatalf("Start error = %v, want ErrSourceDisabled", err)
	}
	if sched.State() != StateIdle {
		t.Errorf("State = %v, want idle after failed start", sched.State())
	}
}

func TestStartIsSingleShot(t *testing.T) {
	sched := New("sess-1", time.Hour, &fakeSource{enabled: true}, &fakeGateway{}, newFakeSink())
	if err := sched.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer sched.Stop()

	if err := sched.Start(); !errors.Is(err, ErrNotIdle) {
		t.Errorf("second Start error = %v, want ErrNotIdle", err)
	}
}

func TestTickDeliversBatchToSink(t *testing.T) {
	sink := newFakeSink()
	sched := New("sess-1", 10*time.Millisecond, &fakeSource{enabled: true}, &fakeGateway{}, sink)
	if err := sched.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer sched.Stop()

	waitFor(t, sink.received, "first batch")
	sink.mu.Lock()
	batch := sink.batches[0]
	sink.mu.Unlock()
	if batch.LectureID != "sess-1" {
		t.Errorf("batch LectureID = %q, want sess-1", batch.LectureID)
	}

	trend := sched.TrendSeries()
	if len(trend) == 0 {
		t.Error("TrendSeries is empty after a successful tick")
	}
}

func TestTickFailureDoesNotStopLoop(t *testing.T) {
	sink := newFakeSink()
	gateway := &fakeGateway{errs: []error{errors.New("gateway down")}}
	sched := New("sess-1", 10*time.Millisecond, &fakeSource{enabled: true}, gateway, sink)
	if err := sched.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer sched.Stop()

	// first tick fails, second must still reach the sink
	waitFor(t, sink.received, "batch after a failed tick")
	if gateway.callCount() < 2 {
		t.Errorf("gateway calls = %d, want at least 2", gateway.callCount())
	}
}

func TestPauseSuspendsTicks(t *testing.T) {
	sink := newFakeSink()
	sched := New("sess-1", 10*time.Millisecond, &fakeSource{enabled: true}, &fakeGateway{}, sink)
	if err := sched.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer sched.Stop()

	waitFor(t, sink.received, "first batch")
	if err := sched.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}

	// drain anything already in flight, then expect silence
	time.Sleep(30 * time.Millisecond)
	for len(sink.received) > 0 {
		<-sink.received
	}
	before := sink.count()
	time.Sleep(50 * time.Millisecond)
	if sink.count() != before {
		t.Errorf("sink received batches while paused: %d -> %d", before, sink.count())
	}

	if err := sched.Resume(); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	waitFor(t, sink.received, "batch after resume")
}

func TestPauseResumePreconditions(t *testing.T) {
	sched := New("sess-1", time.Hour, &fakeSource{enabled: true}, &fakeGateway{}, newFakeSink())
	if err := sched.Pause(); !errors.Is(err, ErrNotCapturing) {
		t.Errorf("Pause before start: error = %v, want ErrNotCapturing", err)
	}
	if err := sched.Resume(); !errors.Is(err, ErrNotPaused) {
		t.Errorf("Resume before start: error = %v, want ErrNotPaused", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	sched := New("sess-1", 10*time.Millisecond, &fakeSource{enabled: true}, &fakeGateway{}, newFakeSink())
	if err := sched.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	sched.Stop()
	sched.Stop()
	if sched.State() != StateStopped {
		t.Errorf("State = %v, want stopped", sched.State())
	}

	// stopping a never-started scheduler must not hang
	idle := New("sess-2", time.Hour, &fakeSource{enabled: true}, &fakeGateway{}, newFakeSink())
	idle.Stop()
	if idle.State() != StateStopped {
		t.Errorf("State = %v, want stopped", idle.State())
	}
}

func TestLateResponseIsDiscarded(t *testing.T) {
	sink := newFakeSink()
	gateway := &fakeGateway{block: true, started: make(chan struct{})}
	sched := New("sess-1", 10*time.Millisecond, &fakeSource{enabled: true}, gateway, sink)
	if err := sched.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// stop while the gateway request is in flight; the response that the
	// blocked call returns afterwards must never reach the sink
	waitFor(t, gateway.started, "gateway call")
	sched.Stop()

	if sink.count() != 0 {
		t.Errorf("sink received %d batches after stop, want 0", sink.count())
	}
	if len(sched.TrendSeries()) != 0 {
		t.Error("trend series recorded a discarded response")
	}
}

func TestTrendSeriesBounded(t *testing.T) {
	sched := New("sess-1", time.Hour, &fakeSource{enabled: true}, &fakeGateway{}, newFakeSink())
	detection := &vision.DetectionResponse{
		TotalFaces: 4,
		Summary:    &vision.Summary{FocusedFaces: 2},
	}
	for i := 0; i < trendSeriesCapacity+5; i++ {
		sched.recordTrend(detection)
	}

	trend := sched.TrendSeries()
	if len(trend) != trendSeriesCapacity {
		t.Fatalf("TrendSeries length = %d, want %d", len(trend), trendSeriesCapacity)
	}
	if trend[0].FocusedPercentage != 50 {
		t.Errorf("FocusedPercentage = %v, want 50", trend[0].FocusedPercentage)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateCapturing, "capturing"},
		{StatePaused, "paused"},
		{StateStopped, "stopped"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
