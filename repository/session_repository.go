package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/models"
)

// SessionRepository handles database operations for Session entities
type SessionRepository struct {
	DB *gorm.DB
}

// NewSessionRepository creates a new instance of SessionRepository
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// Create inserts a new session.
func (r *SessionRepository) Create(session *models.Session) error {
	now := time.Now().Unix()
	if session.CreatedAt == 0 {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	if err := r.DB.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session %s: %w", session.ID, err)
	}
	return nil
}

// GetByID retrieves a session with its course, passing
// gorm.ErrRecordNotFound through untouched.
func (r *SessionRepository) GetByID(id string) (*models.Session, error) {
	var session models.Session
	err := r.DB.Preload("Course").First(&session, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return &session, nil
}

// ListByCourse retrieves all sessions for a course, newest first.
func (r *SessionRepository) ListByCourse(courseID uint) ([]models.Session, error) {
	var sessions []models.Session
	err := r.DB.Where("course_id = ?", courseID).Order("start_time DESC").Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for course %d: %w", courseID, err)
	}
	return sessions, nil
}

// MarkActive flips is_active true. Called on the first observation batch of
// a session; calling it on an already-active session is harmless.
func (r *SessionRepository) MarkActive(id string) error {
	err := r.DB.Model(&models.Session{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": true, "updated_at": time.Now().Unix()}).Error
	if err != nil {
		return fmt.Errorf("failed to mark session %s active: %w", id, err)
	}
	return nil
}

// End sets the end time and clears the active flag.
func (r *SessionRepository) End(id string, endTime int64) error {
	err := r.DB.Model(&models.Session{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "end_time": endTime, "updated_at": time.Now().Unix()}).Error
	if err != nil {
		return fmt.Errorf("failed to end session %s: %w", id, err)
	}
	return nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(id string) error {
	if err := r.DB.Delete(&models.Session{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}
