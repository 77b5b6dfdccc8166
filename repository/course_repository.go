package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/models"
)

// CourseRepository handles database operations for Course entities
type CourseRepository struct {
	DB *gorm.DB
}

// NewCourseRepository creates a new instance of CourseRepository
func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// Create inserts a new course.
func (r *CourseRepository) Create(course *models.Course) error {
	now := time.Now().Unix()
	if course.CreatedAt == 0 {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	if err := r.DB.Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course %s: %w", course.Code, err)
	}
	return nil
}

// GetByID retrieves a course, passing gorm.ErrRecordNotFound through
// untouched.
func (r *CourseRepository) GetByID(id uint) (*models.Course, error) {
	var course models.Course
	err := r.DB.First(&course, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}
	return &course, nil
}

// ListByInstructor retrieves the courses owned by an instructor.
func (r *CourseRepository) ListByInstructor(instructorID uint) ([]models.Course, error) {
	var courses []models.Course
	err := r.DB.Where("instructor_id = ?", instructorID).Order("code ASC").Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list courses for instructor %d: %w", instructorID, err)
	}
	return courses, nil
}

// Update persists changed course fields.
func (r *CourseRepository) Update(course *models.Course) error {
	course.UpdatedAt = time.Now().Unix()
	if err := r.DB.Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course %d: %w", course.ID, err)
	}
	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(id uint) error {
	if err := r.DB.Delete(&models.Course{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete course %d: %w", id, err)
	}
	return nil
}
