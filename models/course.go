package models

// Course groups students and sessions under one instructor.
// It corresponds to the 'courses' table.
type Course struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string  `gorm:"not null" json:"name"`
	Code         string  `gorm:"uniqueIndex;not null" json:"code"`
	Description  *string `json:"description,omitempty"`
	InstructorID uint    `gorm:"not null;index" json:"instructor_id"`
	CreatedAt    int64   `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp
	UpdatedAt    int64   `gorm:"not null" json:"updated_at"` // Stored as INTEGER in SQLite, Unix timestamp

	Instructor *User     `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Sessions   []Session `gorm:"foreignKey:CourseID" json:"sessions,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Course) TableName() string {
	return "courses"
}
