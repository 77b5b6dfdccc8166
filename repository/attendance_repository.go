package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/models"
)

// AttendanceRepository handles database operations for AttendanceRecord entities
type AttendanceRepository struct {
	DB *gorm.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository
func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{DB: db}
}

// GetBySessionAndStudent passes gorm.ErrRecordNotFound through untouched.
func (r *AttendanceRepository) GetBySessionAndStudent(sessionID, studentID string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := r.DB.Where("session_id = ? AND student_id = ?", sessionID, studentID).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get attendance for student %s in session %s: %w", studentID, sessionID, err)
	}
	return &record, nil
}

// Create inserts a new attendance record.
func (r *AttendanceRepository) Create(record *models.AttendanceRecord) error {
	now := time.Now().Unix()
	if record.CreatedAt == 0 {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	if err := r.DB.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create attendance for student %s in session %s: %w", record.StudentID, record.SessionID, err)
	}
	return nil
}

// Save persists all fields of an existing record.
func (r *AttendanceRepository) Save(record *models.AttendanceRecord) error {
	record.UpdatedAt = time.Now().Unix()
	if err := r.DB.Save(record).Error; err != nil {
		return fmt.Errorf("failed to save attendance for student %s in session %s: %w", record.StudentID, record.SessionID, err)
	}
	return nil
}

// ListBySession retrieves all attendance records for a session, preloading
// the associated Student.
func (r *AttendanceRepository) ListBySession(sessionID string) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := r.DB.Preload("Student").Where("session_id = ?", sessionID).Order("join_time ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for session %s: %w", sessionID, err)
	}
	return records, nil
}

// ListByStudent retrieves all attendance records for one student across
// sessions.
func (r *AttendanceRepository) ListByStudent(studentID string) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := r.DB.Where("student_id = ?", studentID).Order("join_time DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for student %s: %w", studentID, err)
	}
	return records, nil
}
