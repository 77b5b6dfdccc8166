package repository

import (
	"github.com/classpulse/classpulsebackend/models"
)

// UserRepositoryInterface defines the methods for instructor account data operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Update(user *models.User) error
}

// CourseRepositoryInterface defines the methods for course data operations
type CourseRepositoryInterface interface {
	Create(course *models.Course) error
	GetByID(id uint) (*models.Course, error)
	ListByInstructor(instructorID uint) ([]models.Course, error)
	Update(course *models.Course) error
	Delete(id uint) error
}

// StudentRepositoryInterface defines the methods for student data operations
type StudentRepositoryInterface interface {
	Create(student *models.Student) error
	GetByID(id string) (*models.Student, error)
	ListAll() ([]models.Student, error)
	Update(student *models.Student) error
	Delete(id string) error

	Enroll(courseID uint, studentID string) error
	IsEnrolled(courseID uint, studentID string) (bool, error)
	ListByCourse(courseID uint) ([]models.Student, error)
}

// SessionRepositoryInterface defines the methods for session data operations
type SessionRepositoryInterface interface {
	Create(session *models.Session) error
	GetByID(id string) (*models.Session, error)
	ListByCourse(courseID uint) ([]models.Session, error)
	MarkActive(id string) error
	End(id string, endTime int64) error
	Delete(id string) error
}

// EngagementRepositoryInterface defines the methods for engagement record
// data operations. GetBySessionAndStudent returns gorm.ErrRecordNotFound
// when no record exists for the pair.
type EngagementRepositoryInterface interface {
	GetBySessionAndStudent(sessionID, studentID string) (*models.EngagementRecord, error)
	Upsert(record *models.EngagementRecord) error
	ListBySession(sessionID string) ([]models.EngagementRecord, error)
	ListBySessionAndStudent(sessionID, studentID string) ([]models.EngagementRecord, error)
}

// AttendanceRepositoryInterface defines the methods for attendance record
// data operations. GetBySessionAndStudent returns gorm.ErrRecordNotFound
// when no record exists for the pair.
type AttendanceRepositoryInterface interface {
	GetBySessionAndStudent(sessionID, studentID string) (*models.AttendanceRecord, error)
	Create(record *models.AttendanceRecord) error
	Save(record *models.AttendanceRecord) error
	ListBySession(sessionID string) ([]models.AttendanceRecord, error)
	ListByStudent(studentID string) ([]models.AttendanceRecord, error)
}
