package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/models"
	"github.com/classpulse/classpulsebackend/repository"
)

type StudentHandler struct {
	StudentRepo repository.StudentRepositoryInterface
}

// CreateStudent registers a student record.
// POST /api/students
func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Email  string  `json:"email"`
		Avatar *string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_fields", "name and email are required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	student := models.Student{
		ID:     req.ID,
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	}
	if err := h.StudentRepo.Create(&student); err != nil {
		log.Printf("Error creating student '%s': %v", req.Email, err)
		WriteAPIError(w, http.StatusInternalServerError, "create_failed", "Failed to create student")
		return
	}
	writeJSON(w, http.StatusCreated, student)
}

// ListStudents returns every registered student.
// GET /api/students
func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.StudentRepo.ListAll()
	if err != nil {
		log.Printf("Error listing students: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to list students")
		return
	}
	writeJSON(w, http.StatusOK, students)
}

// GetStudent returns a single student by id.
// GET /api/students/{student_id}
func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "student_id")
	student, err := h.StudentRepo.GetByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "student_not_found", "Student not found")
		} else {
			log.Printf("Error loading student %s: %v", studentID, err)
			WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to load student")
		}
		return
	}
	writeJSON(w, http.StatusOK, student)
}

// UpdateStudent modifies name, email or avatar.
// PUT /api/students/{student_id}
func (h *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "student_id")
	student, err := h.StudentRepo.GetByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "student_not_found", "Student not found")
		} else {
			log.Printf("Error loading student %s: %v", studentID, err)
			WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to load student")
		}
		return
	}

	var req struct {
		Name   *string `json:"name"`
		Email  *string `json:"email"`
		Avatar *string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body: "+err.Error())
		return
	}
	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.Avatar != nil {
		student.Avatar = req.Avatar
	}

	if err := h.StudentRepo.Update(student); err != nil {
		log.Printf("Error updating student %s: %v", studentID, err)
		WriteAPIError(w, http.StatusInternalServerError, "update_failed", "Failed to update student")
		return
	}
	writeJSON(w, http.StatusOK, student)
}

// DeleteStudent removes a student record.
// DELETE /api/students/{student_id}
func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "student_id")
	if err := h.StudentRepo.Delete(studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "student_not_found", "Student not found")
		} else {
			log.Printf("Error deleting student %s: %v", studentID, err)
			WriteAPIError(w, http.StatusInternalServerError, "delete_failed", "Failed to delete student")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
