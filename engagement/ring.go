package engagement

import "github.com/classpulse/classpulsebackend/models"

// DefaultSnapshotCapacity bounds the per-record detection history.
const DefaultSnapshotCapacity = 50

// SnapshotRing is a fixed-capacity FIFO over detection snapshots. It is
// append-only from the consumer's perspective and is only ever touched
// through the aggregator's serialized update path.
type SnapshotRing struct {
	capacity int
	items    []models.DetectionSnapshot
}

// NewSnapshotRing builds a ring with the given capacity, seeded with any
// existing history. Oldest entries beyond capacity are evicted immediately.
func NewSnapshotRing(capacity int, existing []models.DetectionSnapshot) *SnapshotRing {
	if capacity <= 0 {
		capacity = DefaultSnapshotCapacity
	}
	r := &SnapshotRing{capacity: capacity}
	if len(existing) > 0 {
		start := 0
		if len(existing) > capacity {
			start = len(existing) - capacity
		}
		r.items = append(r.items, existing[start:]...)
	}
	return r
}

// Append adds a snapshot, evicting the oldest entry when full.
func (r *SnapshotRing) Append(s models.DetectionSnapshot) {
	if len(r.items) >= r.capacity {
		drop := len(r.items) - r.capacity + 1
		r.items = r.items[drop:]
	}
	r.items = append(r.items, s)
}

// Len returns the number of stored snapshots.
func (r *SnapshotRing) Len() int {
	return len(r.items)
}

// Items returns the snapshots oldest-first. The returned slice is a copy.
func (r *SnapshotRing) Items() []models.DetectionSnapshot {
	out := make([]models.DetectionSnapshot, len(r.items))
	copy(out, r.items)
	return out
}
