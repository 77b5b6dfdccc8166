package models

// Session is one lecture/observation window. IsActive flips true on the
// first observation batch and false when the session is ended.
type Session struct {
	ID                     string `gorm:"primaryKey" json:"id"` // UUID string
	CourseID               uint   `gorm:"not null;index" json:"course_id"`
	Title                  string `gorm:"not null" json:"title"`
	StartTime              int64  `gorm:"not null" json:"start_time"` // Unix timestamp
	PlannedDurationSeconds int    `gorm:"not null" json:"planned_duration_seconds"`
	EndTime                *int64 `json:"end_time,omitempty"`
	IsActive               bool   `gorm:"not null;default:false" json:"is_active"`
	CreatedAt              int64  `gorm:"not null" json:"created_at"`
	UpdatedAt              int64  `gorm:"not null" json:"updated_at"`

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Session) TableName() string {
	return "sessions"
}
