package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/models"
)

// StudentRepository handles database operations for Student and Enrollment entities
type StudentRepository struct {
	DB *gorm.DB
}

// NewStudentRepository creates a new instance of StudentRepository
func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

// Create inserts a new student.
func (r *StudentRepository) Create(student *models.Student) error {
	now := time.Now().Unix()
	if student.CreatedAt == 0 {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	if err := r.DB.Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student %s: %w", student.Email, err)
	}
	return nil
}

// GetByID retrieves a student, passing gorm.ErrRecordNotFound through
// untouched.
func (r *StudentRepository) GetByID(id string) (*models.Student, error) {
	var student models.Student
	err := r.DB.First(&student, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get student %s: %w", id, err)
	}
	return &student, nil
}

// ListAll retrieves every student.
func (r *StudentRepository) ListAll() ([]models.Student, error) {
	var students []models.Student
	if err := r.DB.Order("name ASC").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// Update persists changed student fields.
func (r *StudentRepository) Update(student *models.Student) error {
	student.UpdatedAt = time.Now().Unix()
	if err := r.DB.Save(student).Error; err != nil {
		return fmt.Errorf("failed to update student %s: %w", student.ID, err)
	}
	return nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(id string) error {
	if err := r.DB.Delete(&models.Student{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete student %s: %w", id, err)
	}
	return nil
}

// Enroll links a student to a course. Re-enrolling is a no-op.
func (r *StudentRepository) Enroll(courseID uint, studentID string) error {
	existing, err := r.IsEnrolled(courseID, studentID)
	if err != nil {
		return err
	}
	if existing {
		return nil
	}
	enrollment := models.Enrollment{
		CourseID:  courseID,
		StudentID: studentID,
		CreatedAt: time.Now().Unix(),
	}
	if err := r.DB.Create(&enrollment).Error; err != nil {
		return fmt.Errorf("failed to enroll student %s in course %d: %w", studentID, courseID, err)
	}
	return nil
}

// IsEnrolled reports whether the student is enrolled in the course.
func (r *StudentRepository) IsEnrolled(courseID uint, studentID string) (bool, error) {
	var enrollment models.Enrollment
	err := r.DB.Where("course_id = ? AND student_id = ?", courseID, studentID).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check enrollment of student %s in course %d: %w", studentID, courseID, err)
	}
	return true, nil
}

// ListByCourse retrieves the students enrolled in a course.
func (r *StudentRepository) ListByCourse(courseID uint) ([]models.Student, error) {
	var students []models.Student
	err := r.DB.Joins("JOIN enrollments ON enrollments.student_id = students.id").
		Where("enrollments.course_id = ?", courseID).
		Order("students.name ASC").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list students for course %d: %w", courseID, err)
	}
	return students, nil
}
