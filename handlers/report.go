package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/database"
	"github.com/classpulse/classpulsebackend/repository"
)

// ReportHandler serves aggregate reports straight off the raw SQL handle.
type ReportHandler struct {
	DB          *sql.DB
	SessionRepo repository.SessionRepositoryInterface
	CourseRepo  repository.CourseRepositoryInterface
}

// SessionSummary returns the engagement rollup for one session.
// GET /api/reports/sessions/{session_id}
func (h *ReportHandler) SessionSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	sessionID := chi.URLParam(r, "session_id")
	session, err := h.SessionRepo.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "session_not_found", "Session not found")
		} else {
			log.Printf("Error loading session %s: %v", sessionID, err)
			WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to load session")
		}
		return
	}

	course, err := h.CourseRepo.GetByID(session.CourseID)
	if err != nil {
		log.Printf("Error loading course %d for session %s: %v", session.CourseID, sessionID, err)
		WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to load course")
		return
	}
	if course.InstructorID != user.ID {
		WriteAPIError(w, http.StatusForbidden, "forbidden", "You don't own this session")
		return
	}

	summary, err := database.GetSessionEngagementSummary(h.DB, sessionID)
	if err != nil {
		log.Printf("Error building session summary for %s: %v", sessionID, err)
		WriteAPIError(w, http.StatusInternalServerError, "report_failed", "Failed to build session report")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// CourseLeaderboard ranks a course's students by average focus score.
// GET /api/reports/courses/{course_id}/leaderboard?limit=
func (h *ReportHandler) CourseLeaderboard(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	courseID, err := strconv.ParseUint(chi.URLParam(r, "course_id"), 10, 32)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_parameter", "course_id must be an integer")
		return
	}

	course, err := h.CourseRepo.GetByID(uint(courseID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "course_not_found", "Course not found")
		} else {
			log.Printf("Error loading course %d: %v", courseID, err)
			WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to load course")
		}
		return
	}
	if course.InstructorID != user.ID {
		WriteAPIError(w, http.StatusForbidden, "forbidden", "You don't own this course")
		return
	}

	var limit uint64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.ParseUint(raw, 10, 32)
		if err != nil {
			WriteAPIError(w, http.StatusBadRequest, "invalid_parameter", "limit must be an integer")
			return
		}
	}

	entries, err := database.GetCourseLeaderboard(h.DB, course.ID, limit)
	if err != nil {
		log.Printf("Error building leaderboard for course %d: %v", course.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "report_failed", "Failed to build leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
