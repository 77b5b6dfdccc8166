package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/classpulse/classpulsebackend/engagement"
	"github.com/classpulse/classpulsebackend/models"
	"github.com/classpulse/classpulsebackend/realtime"
	"github.com/classpulse/classpulsebackend/repository"
	"github.com/classpulse/classpulsebackend/vision"
)

// InternalCaller skips the ownership check; used when the server's own
// capture loop submits batches rather than an authenticated HTTP caller.
const InternalCaller uint = 0

// BatchResult reports what happened to one observation batch.
type BatchResult struct {
	ProcessedFaces int `json:"processed_faces"`
	SkippedFaces   int `json:"skipped_faces"`
	TotalFaces     int `json:"total_faces"`
}

// EngagementService folds gateway detection batches into per-student
// engagement and attendance state. It is the only mutation path to either
// store.
type EngagementService struct {
	Sessions   repository.SessionRepositoryInterface
	Students   repository.StudentRepositoryInterface
	Courses    repository.CourseRepositoryInterface
	Aggregator *engagement.Aggregator
	Attendance *engagement.AttendanceTracker
	Activity   *ActivityFeed
	Hub        *realtime.Hub

	// SampleIntervalSeconds is the capture cadence credited per focused
	// observation; the scheduler's real interval is threaded through here.
	SampleIntervalSeconds int
}

// IngestBatch validates and applies one detection batch for a session.
// callerID identifies the authenticated instructor; InternalCaller bypasses
// the ownership check for the in-process capture loop. Batch-level failures
// (validation, unknown session, authorization) reject before any mutation;
// a bad individual face is skipped and the rest of the batch continues.
func (s *EngagementService) IngestBatch(ctx context.Context, callerID uint, batch *vision.DetectionResponse) (BatchResult, error) {
	var result BatchResult
	if batch == nil || batch.LectureID == "" || batch.Faces == nil || batch.Summary == nil {
		return result, ErrValidation
	}
	result.TotalFaces = batch.TotalFaces

	session, err := s.Sessions.GetByID(batch.LectureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, ErrSessionNotFound
		}
		return result, fmt.Errorf("failed to load session %s: %w", batch.LectureID, err)
	}

	if callerID != InternalCaller {
		course, err := s.Courses.GetByID(session.CourseID)
		if err != nil {
			return result, fmt.Errorf("failed to load course %d for session %s: %w", session.CourseID, session.ID, err)
		}
		if course.InstructorID != callerID {
			return result, ErrNotAuthorized
		}
	}

	// first batch of a session activates it
	if !session.IsActive {
		if err := s.Sessions.MarkActive(session.ID); err != nil {
			return result, fmt.Errorf("failed to activate session %s: %w", session.ID, err)
		}
	}

	for _, face := range batch.Faces {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		processed, err := s.applyFace(session, face, batch.FrameWidth, batch.FrameHeight)
		if err != nil {
			// one bad entry must not abort the whole batch
			log.Printf("engagement: session %s skipping face %s: %v", session.ID, face.PersonID, err)
			result.SkippedFaces++
			continue
		}
		if processed {
			result.ProcessedFaces++
		}
	}

	s.broadcast(session.ID, batch, result)
	return result, nil
}

// applyFace routes one face through attendance and aggregation. It returns
// false with no error for faces that are simply not recognized students;
// those only count toward session-level summary statistics.
func (s *EngagementService) applyFace(session *models.Session, face vision.Face, frameWidth, frameHeight int) (bool, error) {
	box := engagement.NormalizeBox(models.BoundingBox{
		X:      face.BoundingBox.X,
		Y:      face.BoundingBox.Y,
		Width:  face.BoundingBox.Width,
		Height: face.BoundingBox.Height,
	}, frameWidth, frameHeight)

	obs, err := engagement.NewObservation(
		face.PersonID,
		face.RecognitionStatus,
		face.AttentionStatus,
		face.HandRaisingStatus.IsHandRaised,
		face.Confidence,
		box,
	)
	if err != nil {
		return false, err
	}
	if !obs.Known() {
		return false, nil
	}

	student, err := s.Students.GetByID(obs.PersonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("unknown student id %q", obs.PersonID)
		}
		return false, fmt.Errorf("failed to look up student %s: %w", obs.PersonID, err)
	}

	enrolled, err := s.Students.IsEnrolled(session.CourseID, student.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment of student %s: %w", student.ID, err)
	}
	if !enrolled {
		return false, fmt.Errorf("student %s is not enrolled in course %d", student.ID, session.CourseID)
	}

	_, joined, err := s.Attendance.MarkSeen(session.ID, student.ID)
	if err != nil {
		return false, err
	}

	interval := s.SampleIntervalSeconds
	if interval <= 0 {
		interval = engagement.DefaultSampleIntervalSeconds
	}
	if _, err := s.Aggregator.Update(session.ID, student.ID, obs, interval); err != nil {
		return false, err
	}

	if s.Activity != nil {
		if joined {
			s.Activity.Add(session.ID, ActivityEntry{
				Message:    fmt.Sprintf("%s joined the session", student.Name),
				Type:       "info",
				StudentID:  student.ID,
				ActionType: ActionJoin,
			})
		}
		if obs.HandRaised {
			s.Activity.Add(session.ID, ActivityEntry{
				Message:    fmt.Sprintf("%s raised a hand", student.Name),
				Type:       "success",
				StudentID:  student.ID,
				ActionType: ActionHandRaised,
			})
		}
	}
	return true, nil
}

func (s *EngagementService) broadcast(sessionID string, batch *vision.DetectionResponse, result BatchResult) {
	if s.Hub == nil {
		return
	}
	extra := map[string]interface{}{
		"processed_faces": result.ProcessedFaces,
		"skipped_faces":   result.SkippedFaces,
		"total_faces":     result.TotalFaces,
	}
	if batch.Summary != nil {
		extra["focused_faces"] = batch.Summary.FocusedFaces
		extra["hands_raised"] = batch.Summary.HandsRaised
	}
	s.Hub.Broadcast(realtime.Event{
		Type:      "engagement_batch",
		SessionID: sessionID,
		Extra:     extra,
		Timestamp: time.Now().Unix(),
	})
}

// HandleDetections lets the service act as the capture scheduler's sink.
func (s *EngagementService) HandleDetections(ctx context.Context, sessionID string, detection *vision.DetectionResponse) error {
	if detection != nil && detection.LectureID == "" {
		detection.LectureID = sessionID
	}
	_, err := s.IngestBatch(ctx, InternalCaller, detection)
	return err
}
