package engagement

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/models"
)

type fakeAttendanceStore struct {
	records map[string]*models.AttendanceRecord
}

func newFakeAttendanceStore() *fakeAttendanceStore {
	return &fakeAttendanceStore{records: make(map[string]*models.AttendanceRecord)}
}

func (s *fakeAttendanceStore) GetBySessionAndStudent(sessionID, studentID string) (*models.AttendanceRecord, error) {
	record, ok := s.records[sessionID+"|"+studentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *fakeAttendanceStore) Create(record *models.AttendanceRecord) error {
	clone := *record
	s.records[record.SessionID+"|"+record.StudentID] = &clone
	return nil
}

func (s *fakeAttendanceStore) Save(record *models.AttendanceRecord) error {
	clone := *record
	s.records[record.SessionID+"|"+record.StudentID] = &clone
	return nil
}

func trackerAt(store AttendanceStore, unix int64) *AttendanceTracker {
	tracker := NewAttendanceTracker(store)
	tracker.now = func() time.Time { return time.Unix(unix, 0) }
	return tracker
}

func TestMarkSeenCreatesPresent(t *testing.T) {
	store := newFakeAttendanceStore()
	tracker := trackerAt(store, 1000)

	record, joined, err := tracker.MarkSeen("sess-1", "student-1")
	if err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	if !joined {
		t.Error("joined = false on first sighting, want true")
	}
	if record.Status != models.AttendancePresent {
		t.Errorf("Status = %q, want %q", record.Status, models.AttendancePresent)
	}
	if record.JoinTime != 1000 || record.LeaveTime != 1000 {
		t.Errorf("JoinTime/LeaveTime = %d/%d, want 1000/1000", record.JoinTime, record.LeaveTime)
	}
}

func TestMarkSeenAdvancesLeaveTimeOnly(t *testing.T) {
	store := newFakeAttendanceStore()
	tracker := trackerAt(store, 1000)
	if _, _, err := tracker.MarkSeen("sess-1", "student-1"); err != nil {
		t.Fatalf("first MarkSeen failed: %v", err)
	}

	tracker.now = func() time.Time { return time.Unix(1060, 0) }
	record, joined, err := tracker.MarkSeen("sess-1", "student-1")
	if err != nil {
		t.Fatalf("second MarkSeen failed: %v", err)
	}
	if joined {
		t.Error("joined = true on repeat sighting, want false")
	}
	if record.JoinTime != 1000 {
		t.Errorf("JoinTime = %d, want 1000 (must never change)", record.JoinTime)
	}
	if record.LeaveTime != 1060 {
		t.Errorf("LeaveTime = %d, want 1060", record.LeaveTime)
	}
}

func TestMarkSeenLeaveTimeMonotonic(t *testing.T) {
	store := newFakeAttendanceStore()
	tracker := trackerAt(store, 2000)
	if _, _, err := tracker.MarkSeen("sess-1", "student-1"); err != nil {
		t.Fatalf("first MarkSeen failed: %v", err)
	}

	// clock skew must not move LeaveTime backwards
	tracker.now = func() time.Time { return time.Unix(1500, 0) }
	record, _, err := tracker.MarkSeen("sess-1", "student-1")
	if err != nil {
		t.Fatalf("second MarkSeen failed: %v", err)
	}
	if record.LeaveTime != 2000 {
		t.Errorf("LeaveTime = %d, want 2000", record.LeaveTime)
	}
}

func TestMarkSeenPreservesManualStatus(t *testing.T) {
	store := newFakeAttendanceStore()
	store.records["sess-1|student-1"] = &models.AttendanceRecord{
		SessionID: "sess-1",
		StudentID: "student-1",
		Status:    models.AttendanceLate,
		JoinTime:  500,
		LeaveTime: 500,
	}
	tracker := trackerAt(store, 900)

	record, joined, err := tracker.MarkSeen("sess-1", "student-1")
	if err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	if joined {
		t.Error("joined = true for existing record, want false")
	}
	if record.Status != models.AttendanceLate {
		t.Errorf("Status = %q, want %q (manual status must survive sightings)", record.Status, models.AttendanceLate)
	}
	if record.LeaveTime != 900 {
		t.Errorf("LeaveTime = %d, want 900", record.LeaveTime)
	}
}
