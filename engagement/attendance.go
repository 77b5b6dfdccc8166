package engagement

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/models"
)

// AttendanceStore is the persistence surface for attendance records.
// GetBySessionAndStudent must return gorm.ErrRecordNotFound when no record
// exists for the pair.
type AttendanceStore interface {
	GetBySessionAndStudent(sessionID, studentID string) (*models.AttendanceRecord, error)
	Create(record *models.AttendanceRecord) error
	Save(record *models.AttendanceRecord) error
}

// AttendanceTracker is the observation-driven attendance state machine.
// States are ABSENT (implicit: no record), PRESENT and LATE. This engine
// only ever creates PRESENT records and advances LeaveTime; LATE is set
// exclusively by the manual attendance workflow, and nothing here ever
// reverts a student to ABSENT.
type AttendanceTracker struct {
	store AttendanceStore
	now   func() time.Time
}

// NewAttendanceTracker builds a tracker over the given store.
func NewAttendanceTracker(store AttendanceStore) *AttendanceTracker {
	return &AttendanceTracker{store: store, now: time.Now}
}

// MarkSeen records that the student was observed in the session right now.
// First sighting creates the record with JoinTime = LeaveTime = now and
// status PRESENT; later sightings only move LeaveTime forward. JoinTime is
// never modified after creation and the existing status is left untouched.
// The boolean result reports whether this sighting created the record, i.e.
// the student just joined.
func (t *AttendanceTracker) MarkSeen(sessionID, studentID string) (*models.AttendanceRecord, bool, error) {
	now := t.now().Unix()

	record, err := t.store.GetBySessionAndStudent(sessionID, studentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("failed to load attendance for student %s in session %s: %w", studentID, sessionID, err)
		}
		record = &models.AttendanceRecord{
			SessionID: sessionID,
			StudentID: studentID,
			Status:    models.AttendancePresent,
			JoinTime:  now,
			LeaveTime: now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := t.store.Create(record); err != nil {
			return nil, false, fmt.Errorf("failed to create attendance for student %s in session %s: %w", studentID, sessionID, err)
		}
		return record, true, nil
	}

	// LeaveTime is monotonically non-decreasing across updates
	if now > record.LeaveTime {
		record.LeaveTime = now
	}
	record.UpdatedAt = now
	if err := t.store.Save(record); err != nil {
		return nil, false, fmt.Errorf("failed to update attendance for student %s in session %s: %w", studentID, sessionID, err)
	}
	return record, false, nil
}
