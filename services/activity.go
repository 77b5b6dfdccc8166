package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Activity action types surfaced to dashboards.
const (
	ActionJoin       = "join"
	ActionHandRaised = "hand_raised"
)

const (
	activityCapacity = 50
	activityTTL      = 30 * time.Minute
	janitorInterval  = time.Minute
)

// ActivityEntry is one line of a session's live activity feed.
type ActivityEntry struct {
	ID         string `json:"id"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
	Type       string `json:"type"` // info, warning, error, success
	StudentID  string `json:"student_id,omitempty"`
	ActionType string `json:"action_type,omitempty"`
}

type sessionActivity struct {
	lastUpdated time.Time
	entries     []ActivityEntry
}

// ActivityFeed keeps a bounded in-memory activity list per session. Sessions
// idle for longer than the TTL are dropped by a janitor goroutine.
type ActivityFeed struct {
	mu       sync.Mutex
	sessions map[string]*sessionActivity
	stop     chan struct{}
	stopOnce sync.Once
}

// NewActivityFeed builds a feed and starts its janitor.
func NewActivityFeed() *ActivityFeed {
	f := &ActivityFeed{
		sessions: make(map[string]*sessionActivity),
		stop:     make(chan struct{}),
	}
	go f.janitor()
	return f
}

// Add appends an entry to the session's feed, evicting the oldest entries
// beyond capacity.
func (f *ActivityFeed) Add(sessionID string, entry ActivityEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().Unix()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	sa, ok := f.sessions[sessionID]
	if !ok {
		sa = &sessionActivity{}
		f.sessions[sessionID] = sa
	}
	sa.lastUpdated = time.Now()
	sa.entries = append(sa.entries, entry)
	if len(sa.entries) > activityCapacity {
		sa.entries = sa.entries[len(sa.entries)-activityCapacity:]
	}
}

// List returns a copy of the session's feed, oldest first.
func (f *ActivityFeed) List(sessionID string) []ActivityEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	sa, ok := f.sessions[sessionID]
	if !ok {
		return []ActivityEntry{}
	}
	out := make([]ActivityEntry, len(sa.entries))
	copy(out, sa.entries)
	return out
}

// Close stops the janitor. Idempotent.
func (f *ActivityFeed) Close() {
	f.stopOnce.Do(func() { close(f.stop) })
}

func (f *ActivityFeed) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-f.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-activityTTL)
			f.mu.Lock()
			for id, sa := range f.sessions {
				if sa.lastUpdated.Before(cutoff) {
					delete(f.sessions, id)
				}
			}
			f.mu.Unlock()
		}
	}
}
