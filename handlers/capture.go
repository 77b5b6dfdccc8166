package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/models"
	"github.com/classpulse/classpulsebackend/repository"
	"github.com/classpulse/classpulsebackend/scheduler"
	"github.com/classpulse/classpulsebackend/services"
)

// CaptureHandler exposes the per-session capture loop lifecycle over HTTP.
// These endpoints only exist when the server runs with a local camera; the
// router skips them otherwise.
type CaptureHandler struct {
	Manager     *services.CaptureManager
	SessionRepo repository.SessionRepositoryInterface
	CourseRepo  repository.CourseRepositoryInterface
}

// ownsSession checks the session exists and belongs to a course the caller
// instructs.
func (h *CaptureHandler) ownsSession(w http.ResponseWriter, r *http.Request) (*models.Session, bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return nil, false
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
		return nil, false
	}

	course, err := h.CourseRepo.GetByID(session.CourseID)
	if err != nil {
		log.Printf("Error loading course %d for session %s: %v", session.CourseID, sessionID, err)
		WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to load course")
		return nil, false
	}
	if course.InstructorID != user.ID {
		WriteAPIError(w, http.StatusForbidden, "forbidden", "You don't own this session")
		return nil, false
	}
	return session, true
}

// StartCapture begins the capture loop for a session.
// POST /api/sessions/{session_id}/capture/start
func (h *CaptureHandler) StartCapture(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownsSession(w, r)
	if !ok {
		return
	}

	if err := h.Manager.Start(session.ID); err != nil {
		switch {
		case errors.Is(err, scheduler.ErrNotIdle):
			WriteAPIError(w, http.StatusConflict, "already_capturing", "Capture is already running for this session")
		case errors.Is(err, scheduler.ErrSourceDisabled):
			WriteAPIError(w, http.StatusServiceUnavailable, "camera_unavailable", "No camera is available")
		default:
			log.Printf("Error starting capture for session %s: %v", session.ID, err)
			WriteAPIError(w, http.StatusInternalServerError, "start_failed", "Failed to start capture")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": scheduler.StateCapturing.String()})
}

// PauseCapture suspends the capture timer.
// POST /api/sessions/{session_id}/capture/pause
func (h *CaptureHandler) PauseCapture(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownsSession(w, r)
	if !ok {
		return
	}

	if err := h.Manager.Pause(session.ID); err != nil {
		h.writeLifecycleError(w, session.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": scheduler.StatePaused.String()})
}

// ResumeCapture resumes a paused capture loop.
// POST /api/sessions/{session_id}/capture/resume
func (h *CaptureHandler) ResumeCapture(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownsSession(w, r)
	if !ok {
		return
	}

	if err := h.Manager.Resume(session.ID); err != nil {
		h.writeLifecycleError(w, session.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": scheduler.StateCapturing.String()})
}

// StopCapture stops the capture loop. Idempotent.
// POST /api/sessions/{session_id}/capture/stop
func (h *CaptureHandler) StopCapture(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownsSession(w, r)
	if !ok {
		return
	}

	h.Manager.Stop(session.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": scheduler.StateStopped.String()})
}

// CaptureStatus reports the scheduler state, stopwatch and trend series.
// GET /api/sessions/{session_id}/capture
func (h *CaptureHandler) CaptureStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownsSession(w, r)
	if !ok {
		return
	}

	sched, ok := h.Manager.Get(session.ID)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":          scheduler.StateIdle.String(),
			"elapsed_seconds": 0,
			"trend":           []scheduler.TrendPoint{},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          sched.State().String(),
		"elapsed_seconds": sched.Elapsed(),
		"trend":           sched.TrendSeries(),
	})
}

// PauseStopwatch suspends only the session stopwatch.
// POST /api/sessions/{session_id}/capture/stopwatch/pause
func (h *CaptureHandler) PauseStopwatch(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownsSession(w, r)
	if !ok {
		return
	}

	sched, found := h.Manager.Get(session.ID)
	if !found {
		WriteAPIError(w, http.StatusConflict, "not_capturing", "No capture is running for this session")
		return
	}
	sched.PauseStopwatch()
	writeJSON(w, http.StatusOK, map[string]interface{}{"elapsed_seconds": sched.Elapsed()})
}

// ResumeStopwatch resumes the session stopwatch.
// POST /api/sessions/{session_id}/capture/stopwatch/resume
func (h *CaptureHandler) ResumeStopwatch(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownsSession(w, r)
	if !ok {
		return
	}

	sched, found := h.Manager.Get(session.ID)
	if !found {
		WriteAPIError(w, http.StatusConflict, "not_capturing", "No capture is running for this session")
		return
	}
	sched.ResumeStopwatch()
	writeJSON(w, http.StatusOK, map[string]interface{}{"elapsed_seconds": sched.Elapsed()})
}

func (h *CaptureHandler) writeLifecycleError(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, services.ErrNoScheduler), errors.Is(err, scheduler.ErrNotCapturing), errors.Is(err, scheduler.ErrNotPaused):
		WriteAPIError(w, http.StatusConflict, "invalid_state", err.Error())
	default:
		log.Printf("Error controlling capture for session %s: %v", sessionID, err)
		WriteAPIError(w, http.StatusInternalServerError, "capture_error", "Capture control failed")
	}
}
