package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/classpulse/classpulsebackend/repository"
	"github.com/classpulse/classpulsebackend/services"
	"github.com/classpulse/classpulsebackend/vision"
)

// BatchIngestor is the slice of the engagement service the handler needs.
type BatchIngestor interface {
	IngestBatch(ctx context.Context, callerID uint, batch *vision.DetectionResponse) (services.BatchResult, error)
}

type EngagementHandler struct {
	Ingestor       BatchIngestor
	EngagementRepo repository.EngagementRepositoryInterface
}

// SubmitBatch ingests one detection batch for a session.
// POST /api/sessions/engagement
func (h *EngagementHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var batch vision.DetectionResponse
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body: "+err.Error())
		return
	}

	result, err := h.Ingestor.IngestBatch(r.Context(), user.ID, &batch)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			WriteAPIError(w, http.StatusBadRequest, "missing_fields", "Missing required fields: lecture_id, faces, summary")
		case errors.Is(err, services.ErrSessionNotFound):
			WriteAPIError(w, http.StatusNotFound, "session_not_found", "Session not found")
		case errors.Is(err, services.ErrNotAuthorized):
			WriteAPIError(w, http.StatusForbidden, "forbidden", "You are not authorized to submit to this session")
		default:
			log.Printf("Error ingesting engagement batch for session %s: %v", batch.LectureID, err)
			WriteAPIError(w, http.StatusInternalServerError, "ingest_failed", "Failed to process engagement data")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"processed_faces": result.ProcessedFaces,
		"total_faces":     result.TotalFaces,
	})
}

// GetEngagement returns engagement records for a session, optionally
// filtered to one student.
// GET /api/sessions/engagement?sessionId=...&studentId=...
func (h *EngagementHandler) GetEngagement(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_parameter", "Missing sessionId parameter")
		return
	}
	studentID := r.URL.Query().Get("studentId")

	var err error
	var records interface{}
	if studentID != "" {
		records, err = h.EngagementRepo.ListBySessionAndStudent(sessionID, studentID)
	} else {
		records, err = h.EngagementRepo.ListBySession(sessionID)
	}
	if err != nil {
		log.Printf("Error listing engagement records for session %s: %v", sessionID, err)
		WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to fetch engagement data")
		return
	}

	writeJSON(w, http.StatusOK, records)
}
