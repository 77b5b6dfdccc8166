package models

// Attendance statuses. ABSENT is implicit for observation-driven tracking
// (no record); it only appears when set through the manual endpoint.
const (
	AttendancePresent = "PRESENT"
	AttendanceLate    = "LATE"
	AttendanceAbsent  = "ABSENT"
)

// AttendanceRecord tracks one student's presence in one session. JoinTime is
// set once at creation and never changes; LeaveTime advances on every known
// observation of the student.
type AttendanceRecord struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string  `gorm:"not null;index:idx_attendance_session_student,unique" json:"session_id"`
	StudentID string  `gorm:"not null;index:idx_attendance_session_student,unique" json:"student_id"`
	Status    string  `gorm:"not null" json:"status"`
	JoinTime  int64   `gorm:"not null" json:"join_time"`  // Unix timestamp
	LeaveTime int64   `gorm:"not null" json:"leave_time"` // Unix timestamp
	Notes     *string `json:"notes,omitempty"`
	CreatedAt int64   `gorm:"not null" json:"created_at"`
	UpdatedAt int64   `gorm:"not null" json:"updated_at"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// IsValidAttendanceStatus reports whether s is one of the accepted statuses.
func IsValidAttendanceStatus(s string) bool {
	return s == AttendancePresent || s == AttendanceLate || s == AttendanceAbsent
}
