package engagement

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/models"
)

// ErrNotRecognized is returned when an observation without a known student
// reaches the aggregator; such observations only ever count toward
// session-level summary statistics.
var ErrNotRecognized = errors.New("observation is not for a recognized student")

// Engagement level thresholds over the running focus score.
const (
	highEngagementThreshold = 75
	lowEngagementThreshold  = 30
)

// EngagementLevels derived from the focus score.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

// DefaultSampleIntervalSeconds is the capture cadence assumed when the
// caller does not thread a configured interval through.
const DefaultSampleIntervalSeconds = 5

const lockStripes = 64

// RecordStore is the persistence surface the aggregator writes through.
// GetBySessionAndStudent must return gorm.ErrRecordNotFound when no record
// exists for the pair.
type RecordStore interface {
	GetBySessionAndStudent(sessionID, studentID string) (*models.EngagementRecord, error)
	Upsert(record *models.EngagementRecord) error
}

// Aggregator folds observations into per-(student, session) running
// statistics. Updates for one key are serialized through a striped mutex so
// concurrent batches can never interleave the read-modify-write of the
// running-mean fields; updates for different keys proceed concurrently.
type Aggregator struct {
	store       RecordStore
	snapshotCap int
	locks       [lockStripes]sync.Mutex

	now func() time.Time
}

// NewAggregator builds an aggregator over the given store with the default
// snapshot history capacity.
func NewAggregator(store RecordStore) *Aggregator {
	return &Aggregator{
		store:       store,
		snapshotCap: DefaultSnapshotCapacity,
		now:         time.Now,
	}
}

func (a *Aggregator) lockFor(sessionID, studentID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	h.Write([]byte{0})
	h.Write([]byte(studentID))
	return &a.locks[h.Sum32()%lockStripes]
}

// Update folds one observation into the (student, session) record and
// persists the result. sampleIntervalSeconds is the capture cadence used to
// advance attention duration; pass DefaultSampleIntervalSeconds when the
// scheduler's interval is not configured. Update is deliberately not
// idempotent: replaying an observation advances DetectionCount and the
// running means again.
func (a *Aggregator) Update(sessionID, studentID string, obs Observation, sampleIntervalSeconds int) (*models.EngagementRecord, error) {
	if !obs.Known() {
		return nil, ErrNotRecognized
	}
	if sampleIntervalSeconds <= 0 {
		sampleIntervalSeconds = DefaultSampleIntervalSeconds
	}

	mu := a.lockFor(sessionID, studentID)
	mu.Lock()
	defer mu.Unlock()

	now := a.now().Unix()
	snapshot := models.DetectionSnapshot{
		Timestamp:       now,
		AttentionStatus: string(obs.Attention),
		BoundingBox:     obs.BoundingBox,
		Confidence:      obs.Confidence,
		HandRaised:      obs.HandRaised,
	}

	record, err := a.store.GetBySessionAndStudent(sessionID, studentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load engagement record for student %s in session %s: %w", studentID, sessionID, err)
		}
		record = a.newRecord(sessionID, studentID, obs, snapshot, sampleIntervalSeconds, now)
	} else {
		a.fold(record, obs, snapshot, sampleIntervalSeconds, now)
	}

	if err := a.store.Upsert(record); err != nil {
		return nil, fmt.Errorf("failed to persist engagement record for student %s in session %s: %w", studentID, sessionID, err)
	}
	return record, nil
}

func (a *Aggregator) newRecord(sessionID, studentID string, obs Observation, snapshot models.DetectionSnapshot, sampleIntervalSeconds int, now int64) *models.EngagementRecord {
	record := &models.EngagementRecord{
		SessionID:         sessionID,
		StudentID:         studentID,
		DetectionCount:    1,
		AverageConfidence: obs.Confidence,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if obs.Focused() {
		record.FocusScore = 100
		record.AttentionDurationSeconds = sampleIntervalSeconds
		record.EngagementLevel = LevelHigh
	} else {
		record.FocusScore = 0
		record.DistractionCount = 1
		record.EngagementLevel = LevelLow
	}
	if obs.HandRaised {
		record.HandRaisedCount = 1
	}
	record.DetectionSnapshots = []models.DetectionSnapshot{snapshot}
	return record
}

// fold applies the exact running-mean update. With n previous samples and
// n' = n+1:
//
//	focusScore'        = round((focusScore*n + indicator) / n')
//	averageConfidence' = (averageConfidence*n + confidence) / n'
//
// where indicator is 100 for focused and 0 for unfocused. The mean form must
// be preserved; an exponential decay here would silently change every
// downstream score.
func (a *Aggregator) fold(record *models.EngagementRecord, obs Observation, snapshot models.DetectionSnapshot, sampleIntervalSeconds int, now int64) {
	n := record.DetectionCount
	next := n + 1

	indicator := 0.0
	if obs.Focused() {
		indicator = 100.0
		record.AttentionDurationSeconds += sampleIntervalSeconds
	} else {
		record.DistractionCount++
	}
	if obs.HandRaised {
		record.HandRaisedCount++
	}

	record.FocusScore = roundHalfUp((float64(record.FocusScore)*float64(n) + indicator) / float64(next))
	record.AverageConfidence = (record.AverageConfidence*float64(n) + obs.Confidence) / float64(next)
	record.DetectionCount = next
	record.EngagementLevel = LevelForScore(record.FocusScore)
	record.UpdatedAt = now

	ring := NewSnapshotRing(a.snapshotCap, record.DetectionSnapshots)
	ring.Append(snapshot)
	record.DetectionSnapshots = ring.Items()
}

// LevelForScore derives the coarse engagement level from a focus score. It
// is a pure function of the current score.
func LevelForScore(score int) string {
	switch {
	case score >= highEngagementThreshold:
		return LevelHigh
	case score <= lowEngagementThreshold:
		return LevelLow
	default:
		return LevelMedium
	}
}

// roundHalfUp rounds to the nearest integer with ties away from zero toward
// positive infinity, matching the source system's rounding.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
