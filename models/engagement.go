package models

// BoundingBox locates a detected face within a frame, normalized to [0,1].
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DetectionSnapshot summarizes one observation for later review. A bounded,
// time-ordered history of these is kept on each engagement record.
type DetectionSnapshot struct {
	Timestamp       int64       `json:"timestamp"`
	AttentionStatus string      `json:"attention_status"`
	BoundingBox     BoundingBox `json:"bounding_box"`
	Confidence      float64     `json:"confidence"`
	HandRaised      bool        `json:"hand_raised"`
}

// EngagementRecord is the durable running-statistics object, one per
// (student, session). FocusScore and AverageConfidence are exact running
// means over DetectionCount samples, never exponential decay.
type EngagementRecord struct {
	ID                       uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID                string              `gorm:"not null;index:idx_session_student,unique" json:"session_id"`
	StudentID                string              `gorm:"not null;index:idx_session_student,unique" json:"student_id"`
	DetectionCount           int                 `gorm:"not null" json:"detection_count"`
	FocusScore               int                 `gorm:"not null" json:"focus_score"` // 0-100
	DistractionCount         int                 `gorm:"not null" json:"distraction_count"`
	HandRaisedCount          int                 `gorm:"not null" json:"hand_raised_count"`
	AttentionDurationSeconds int                 `gorm:"not null" json:"attention_duration_seconds"`
	AverageConfidence        float64             `gorm:"not null" json:"average_confidence"` // 0-1
	EngagementLevel          string              `gorm:"not null" json:"engagement_level"`   // high, medium, low
	DetectionSnapshots       []DetectionSnapshot `gorm:"serializer:json" json:"detection_snapshots"`
	CreatedAt                int64               `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp
	UpdatedAt                int64               `gorm:"not null" json:"updated_at"` // Stored as INTEGER in SQLite, Unix timestamp

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (EngagementRecord) TableName() string {
	return "engagement_records"
}
