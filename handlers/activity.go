package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/repository"
	"github.com/classpulse/classpulsebackend/services"
)

type ActivityHandler struct {
	Feed        *services.ActivityFeed
	SessionRepo repository.SessionRepositoryInterface
	CourseRepo  repository.CourseRepositoryInterface
}

// ListActivity returns the session's recent activity feed, oldest first.
// GET /api/sessions/{session_id}/activity
func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, h.Feed.List(sessionID))
}
