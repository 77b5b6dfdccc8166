package models

// Student is a person the vision gateway can recognize. The gateway reports
// recognized faces with the student's id as person_id.
type Student struct {
	ID        string  `gorm:"primaryKey" json:"id"` // UUID string
	Name      string  `gorm:"not null" json:"name"`
	Email     string  `gorm:"uniqueIndex;not null" json:"email"`
	Avatar    *string `json:"avatar,omitempty"`
	CreatedAt int64   `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp
	UpdatedAt int64   `gorm:"not null" json:"updated_at"` // Stored as INTEGER in SQLite, Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Student) TableName() string {
	return "students"
}

// Enrollment links a student to a course. Ingestion only aggregates faces
// whose person_id is enrolled in the session's course.
type Enrollment struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID  uint   `gorm:"not null;index:idx_course_student,unique" json:"course_id"`
	StudentID string `gorm:"not null;index:idx_course_student,unique" json:"student_id"`
	CreatedAt int64  `gorm:"not null" json:"created_at"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Enrollment) TableName() string {
	return "enrollments"
}
