package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/models"
	"github.com/classpulse/classpulsebackend/repository"
)

type AttendanceHandler struct {
	AttendanceRepo repository.AttendanceRepositoryInterface
	SessionRepo    repository.SessionRepositoryInterface
	CourseRepo     repository.CourseRepositoryInterface
}

// ListAttendance returns attendance records filtered by session and/or
// student.
// GET /api/attendance?sessionId=...&studentId=...
func (h *AttendanceHandler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	studentID := r.URL.Query().Get("studentId")

	switch {
	case sessionID != "":
		records, err := h.AttendanceRepo.ListBySession(sessionID)
		if err != nil {
			log.Printf("Error listing attendance for session %s: %v", sessionID, err)
			WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to fetch attendance")
			return
		}
		writeJSON(w, http.StatusOK, records)
	case studentID != "":
		records, err := h.AttendanceRepo.ListByStudent(studentID)
		if err != nil {
			log.Printf("Error listing attendance for student %s: %v", studentID, err)
			WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to fetch attendance")
			return
		}
		writeJSON(w, http.StatusOK, records)
	default:
		WriteAPIError(w, http.StatusBadRequest, "missing_parameter", "sessionId or studentId is required")
	}
}

type attendanceUpsertPayload struct {
	SessionID string  `json:"session_id"`
	StudentID string  `json:"student_id"`
	Status    string  `json:"status"`
	JoinTime  *int64  `json:"join_time,omitempty"`
	LeaveTime *int64  `json:"leave_time,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// UpsertAttendance creates or updates an attendance record with an explicit
// status. This manual workflow is the only path that ever sets LATE; the
// observation-driven engine never does.
// POST /api/attendance
func (h *AttendanceHandler) UpsertAttendance(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var payload attendanceUpsertPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body: "+err.Error())
		return
	}
	if payload.SessionID == "" || payload.StudentID == "" || payload.Status == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_fields", "session_id, student_id and status are required")
		return
	}
	if !models.IsValidAttendanceStatus(payload.Status) {
		WriteAPIError(w, http.StatusBadRequest, "invalid_status", "status must be PRESENT, LATE or ABSENT")
		return
	}

	session, err := h.SessionRepo.GetByID(payload.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "session_not_found", "Session not found")
		} else {
			log.Printf("Error loading session %s: %v", payload.SessionID, err)
			WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to verify session")
		}
		return
	}

	course, err := h.CourseRepo.GetByID(session.CourseID)
	if err != nil {
		log.Printf("Error loading course %d for session %s: %v", session.CourseID, session.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to verify course ownership")
		return
	}
	if course.InstructorID != user.ID {
		WriteAPIError(w, http.StatusForbidden, "forbidden", "You don't have permission to update attendance for this session")
		return
	}

	now := time.Now().Unix()
	record, err := h.AttendanceRepo.GetBySessionAndStudent(payload.SessionID, payload.StudentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error loading attendance for student %s in session %s: %v", payload.StudentID, payload.SessionID, err)
			WriteAPIError(w, http.StatusInternalServerError, "query_failed", "Failed to load attendance")
			return
		}
		record = &models.AttendanceRecord{
			SessionID: payload.SessionID,
			StudentID: payload.StudentID,
			Status:    payload.Status,
			JoinTime:  now,
			LeaveTime: now,
			Notes:     payload.Notes,
		}
		if payload.JoinTime != nil {
			record.JoinTime = *payload.JoinTime
			record.LeaveTime = *payload.JoinTime
		}
		if payload.LeaveTime != nil {
			record.LeaveTime = *payload.LeaveTime
		}
		if err := h.AttendanceRepo.Create(record); err != nil {
			log.Printf("Error creating attendance for student %s in session %s: %v", payload.StudentID, payload.SessionID, err)
			WriteAPIError(w, http.StatusInternalServerError, "create_failed", "Failed to create attendance record")
			return
		}
		writeJSON(w, http.StatusCreated, record)
		return
	}

	record.Status = payload.Status
	record.Notes = payload.Notes
	if payload.LeaveTime != nil && *payload.LeaveTime > record.LeaveTime {
		record.LeaveTime = *payload.LeaveTime
	}
	if err := h.AttendanceRepo.Save(record); err != nil {
		log.Printf("Error updating attendance for student %s in session %s: %v", payload.StudentID, payload.SessionID, err)
		WriteAPIError(w, http.StatusInternalServerError, "update_failed", "Failed to update attendance record")
		return
	}
	writeJSON(w, http.StatusOK, record)
}
