package services

import (
	"errors"
	"sync"
	"time"

	"github.com/classpulse/classpulsebackend/scheduler"
)

var ErrNoScheduler = errors.New("no capture scheduler for session")

// CaptureManager owns one scheduler per live session. Schedulers are created
// on Start and removed on Stop; a stopped scheduler is never reused.
type CaptureManager struct {
	source   scheduler.FrameSource
	gateway  scheduler.Gateway
	sink     scheduler.Sink
	interval time.Duration

	mu         sync.Mutex
	schedulers map[string]*scheduler.Scheduler
}

func NewCaptureManager(source scheduler.FrameSource, gateway scheduler.Gateway, sink scheduler.Sink, interval time.Duration) *CaptureManager {
	return &CaptureManager{
		source:     source,
		gateway:    gateway,
		sink:       sink,
		interval:   interval,
		schedulers: make(map[string]*scheduler.Scheduler),
	}
}

// Start creates and starts the session's scheduler. Starting a session that
// already has one returns ErrNotIdle.
func (m *CaptureManager) Start(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedulers[sessionID]; ok {
		return scheduler.ErrNotIdle
	}

	sched := scheduler.New(sessionID, m.interval, m.source, m.gateway, m.sink)
	if err := sched.Start(); err != nil {
		return err
	}
	m.schedulers[sessionID] = sched
	return nil
}

// Get returns the session's scheduler, if any.
func (m *CaptureManager) Get(sessionID string) (*scheduler.Scheduler, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sched, ok := m.schedulers[sessionID]
	return sched, ok
}

func (m *CaptureManager) Pause(sessionID string) error {
	sched, ok := m.Get(sessionID)
	if !ok {
		return ErrNoScheduler
	}
	return sched.Pause()
}

func (m *CaptureManager) Resume(sessionID string) error {
	sched, ok := m.Get(sessionID)
	if !ok {
		return ErrNoScheduler
	}
	return sched.Resume()
}

// Stop stops and removes the session's scheduler. Stopping a session with no
// scheduler is a no-op so the endpoint stays idempotent.
func (m *CaptureManager) Stop(sessionID string) {
	m.mu.Lock()
	sched, ok := m.schedulers[sessionID]
	delete(m.schedulers, sessionID)
	m.mu.Unlock()
	if ok {
		sched.Stop()
	}
}

// StopAll stops every live scheduler; used during server shutdown.
func (m *CaptureManager) StopAll() {
	m.mu.Lock()
	scheds := make([]*scheduler.Scheduler, 0, len(m.schedulers))
	for id, sched := range m.schedulers {
		scheds = append(scheds, sched)
		delete(m.schedulers, id)
	}
	m.mu.Unlock()
	for _, sched := range scheds {
		sched.Stop()
	}
}
