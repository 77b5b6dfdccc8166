package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/classpulse/classpulsebackend/models"
)

// EngagementRepository handles database operations for EngagementRecord entities
type EngagementRepository struct {
	DB *gorm.DB
}

// NewEngagementRepository creates a new instance of EngagementRepository
func NewEngagementRepository(db *gorm.DB) *EngagementRepository {
	return &EngagementRepository{DB: db}
}

// GetBySessionAndStudent retrieves the single record for a (session, student)
// pair, passing gorm.ErrRecordNotFound through untouched so callers can
// distinguish absence from failure.
func (r *EngagementRepository) GetBySessionAndStudent(sessionID, studentID string) (*models.EngagementRecord, error) {
	var record models.EngagementRecord
	err := r.DB.Where("session_id = ? AND student_id = ?", sessionID, studentID).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get engagement record for student %s in session %s: %w", studentID, sessionID, err)
	}
	return &record, nil
}

// Upsert inserts or replaces the record keyed by (session_id, student_id).
func (r *EngagementRepository) Upsert(record *models.EngagementRecord) error {
	now := time.Now().Unix()
	if record.CreatedAt == 0 {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	err := r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"detection_count", "focus_score", "distraction_count", "hand_raised_count",
			"attention_duration_seconds", "average_confidence", "engagement_level",
			"detection_snapshots", "updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert engagement record for student %s in session %s: %w", record.StudentID, record.SessionID, err)
	}
	return nil
}

// ListBySession retrieves all records for a session, preloading the
// associated Student for display.
func (r *EngagementRepository) ListBySession(sessionID string) ([]models.EngagementRecord, error) {
	var records []models.EngagementRecord
	err := r.DB.Preload("Student").Where("session_id = ?", sessionID).Order("student_id ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list engagement records for session %s: %w", sessionID, err)
	}
	return records, nil
}

// ListBySessionAndStudent retrieves records for one student in a session
// (zero or one rows, returned as a slice for symmetry with ListBySession).
func (r *EngagementRepository) ListBySessionAndStudent(sessionID, studentID string) ([]models.EngagementRecord, error) {
	var records []models.EngagementRecord
	err := r.DB.Preload("Student").Where("session_id = ? AND student_id = ?", sessionID, studentID).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list engagement records for student %s in session %s: %w", studentID, sessionID, err)
	}
	return records, nil
}
