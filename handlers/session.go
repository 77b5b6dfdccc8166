package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/models"
	"github.com/classpulse/classpulsebackend/repository"
)

type SessionHandler struct {
	SessionRepo repository.SessionRepositoryInterface
	CourseRepo  repository.CourseRepositoryInterface
}

// ownsSessionCourse loads the session and verifies the caller owns its
// course, writing the error response itself on failure.
func (h *SessionHandler) ownsSessionCourse(w http.ResponseWriter, r *http.Request, sessionID string) (*models.Session, bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return nil, false
	}
	session, err := h.SessionRepo.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "session_not_found", "Session not found")
		} else {
			log.Printf("Error loading session %s: %v", sessionID, err)
			WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to load session")
		}
		return nil, false
	}
	course, err := h.CourseRepo.GetByID(session.CourseID)
	if err != nil {
		log.Printf("Error loading course %d: %v", session.CourseID, err)
		WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to verify course ownership")
		return nil, false
	}
	if course.InstructorID != user.ID {
		WriteAPIError(w, http.StatusForbidden, "forbidden", "You don't own this session's course")
		return nil, false
	}
	return session, true
}

type createSessionPayload struct {
	CourseID               uint   `json:"course_id"`
	Title                  string `json:"title"`
	StartTime              *int64 `json:"start_time,omitempty"`
	PlannedDurationSeconds int    `json:"planned_duration_seconds"`
}

// CreateSession starts a new observation window for a course.
// POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var payload createSessionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body: "+err.Error())
		return
	}
	if payload.CourseID == 0 || payload.Title == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_fields", "course_id and title are required")
		return
	}

	course, err := h.CourseRepo.GetByID(payload.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "course_not_found", "Course not found")
		} else {
			log.Printf("Error loading course %d: %v", payload.CourseID, err)
			WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to verify course")
		}
		return
	}
	if course.InstructorID != user.ID {
		WriteAPIError(w, http.StatusForbidden, "forbidden", "You don't own this course")
		return
	}

	startTime := time.Now().Unix()
	if payload.StartTime != nil {
		startTime = *payload.StartTime
	}
	duration := payload.PlannedDurationSeconds
	if duration <= 0 {
		duration = 3600
	}

	session := models.Session{
		ID:                     uuid.NewString(),
		CourseID:               payload.CourseID,
		Title:                  payload.Title,
		StartTime:              startTime,
		PlannedDurationSeconds: duration,
	}
	if err := h.SessionRepo.Create(&session); err != nil {
		log.Printf("Error creating session for course %d: %v", payload.CourseID, err)
		WriteAPIError(w, http.StatusInternalServerError, "create_failed", "Failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// GetSession returns one session.
// GET /api/sessions/{session_id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	session, ok := h.ownsSessionCourse(w, r, sessionID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// ListSessions returns the sessions of a course, newest first.
// GET /api/sessions?courseId=...
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	courseIDStr := r.URL.Query().Get("courseId")
	if courseIDStr == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_parameter", "Missing courseId parameter")
		return
	}
	courseID, err := strconv.ParseUint(courseIDStr, 10, 32)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_parameter", "courseId must be an integer")
		return
	}

	sessions, err := h.SessionRepo.ListByCourse(uint(courseID))
	if err != nil {
		log.Printf("Error listing sessions for course %d: %v", courseID, err)
		WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// EndSession closes the observation window.
// PUT /api/sessions/{session_id}/end
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	session, ok := h.ownsSessionCourse(w, r, sessionID)
	if !ok {
		return
	}

	if err := h.SessionRepo.End(session.ID, time.Now().Unix()); err != nil {
		log.Printf("Error ending session %s: %v", session.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "update_failed", "Failed to end session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session ended"})
}

// DeleteSession removes a session and is used when a lecture was started by
// mistake.
// DELETE /api/sessions/{session_id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	session, ok := h.ownsSessionCourse(w, r, sessionID)
	if !ok {
		return
	}

	if err := h.SessionRepo.Delete(session.ID); err != nil {
		log.Printf("Error deleting session %s: %v", session.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "delete_failed", "Failed to delete session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted"})
}
