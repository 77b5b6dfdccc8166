package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/models"
	"github.com/classpulse/classpulsebackend/repository"
)

type CourseHandler struct {
	CourseRepo  repository.CourseRepositoryInterface
	StudentRepo repository.StudentRepositoryInterface
}

// CreateCourse registers a course owned by the caller.
// POST /api/courses
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req struct {
		Name        string  `json:"name"`
		Code        string  `json:"code"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Code) == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_fields", "name and code are required")
		return
	}

	course := models.Course{
		Name:         req.Name,
		Code:         req.Code,
		Description:  req.Description,
		InstructorID: user.ID,
	}
	if err := h.CourseRepo.Create(&course); err != nil {
		log.Printf("Error creating course '%s': %v", req.Code, err)
		WriteAPIError(w, http.StatusInternalServerError, "create_failed", "Failed to create course")
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

// ListCourses returns the caller's courses.
// GET /api/courses
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	courses, err := h.CourseRepo.ListByInstructor(user.ID)
	if err != nil {
		log.Printf("Error listing courses for instructor %d: %v", user.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to list courses")
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// courseFromPath parses the course id and checks ownership.
func (h *CourseHandler) courseFromPath(w http.ResponseWriter, r *http.Request) (*models.Course, bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return nil, false
	}
	courseID, err := strconv.ParseUint(chi.URLParam(r, "course_id"), 10, 32)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_parameter", "course_id must be an integer")
		return nil, false
	}
	course, err := h.CourseRepo.GetByID(uint(courseID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "course_not_found", "Course not found")
		} else {
			log.Printf("Error loading course %d: %v", courseID, err)
			WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to load course")
		}
		return nil, false
	}
	if course.InstructorID != user.ID {
		WriteAPIError(w, http.StatusForbidden, "forbidden", "You don't own this course")
		return nil, false
	}
	return course, true
}

// GetCourse returns one owned course.
// GET /api/courses/{course_id}
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// ListCourseStudents returns the students enrolled in a course.
// GET /api/courses/{course_id}/students
func (h *CourseHandler) ListCourseStudents(w http.ResponseWriter, r *http.Request) {
	course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}

	students, err := h.StudentRepo.ListByCourse(course.ID)
	if err != nil {
		log.Printf("Error listing students for course %d: %v", course.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to list students")
		return
	}
	writeJSON(w, http.StatusOK, students)
}

// EnrollStudent links a student to the course.
// POST /api/courses/{course_id}/students
func (h *CourseHandler) EnrollStudent(w http.ResponseWriter, r *http.Request) {
	course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		StudentID string `json:"student_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StudentID == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_fields", "student_id is required")
		return
	}

	if _, err := h.StudentRepo.GetByID(req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "student_not_found", "Student not found")
		} else {
			log.Printf("Error loading student %s: %v", req.StudentID, err)
			WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to verify student")
		}
		return
	}

	if err := h.StudentRepo.Enroll(course.ID, req.StudentID); err != nil {
		log.Printf("Error enrolling student %s in course %d: %v", req.StudentID, course.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "enroll_failed", "Failed to enroll student")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Student enrolled"})
}
