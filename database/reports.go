package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// SessionEngagementSummary aggregates every engagement record of one session.
type SessionEngagementSummary struct {
	SessionID            string  `json:"session_id"`
	StudentCount         int     `json:"student_count"`
	AverageFocusScore    float64 `json:"average_focus_score"`
	TotalDetections      int     `json:"total_detections"`
	TotalHandsRaised     int     `json:"total_hands_raised"`
	TotalDistractions    int     `json:"total_distractions"`
	AverageConfidence    float64 `json:"average_confidence"`
	HighEngagementCount  int     `json:"high_engagement_count"`
	LowEngagementCount   int     `json:"low_engagement_count"`
	PresentCount         int     `json:"present_count"`
	LateCount            int     `json:"late_count"`
	TotalAttentionSecond int     `json:"total_attention_seconds"`
}

// LeaderboardEntry ranks one student across all sessions of a course.
type LeaderboardEntry struct {
	StudentID         string  `json:"student_id"`
	StudentName       string  `json:"student_name"`
	SessionCount      int     `json:"session_count"`
	AverageFocusScore float64 `json:"average_focus_score"`
	HandsRaised       int     `json:"hands_raised"`
	AttentionSeconds  int     `json:"attention_seconds"`
}

// GetSessionEngagementSummary produces the per-session rollup report.
func GetSessionEngagementSummary(db *sql.DB, sessionID string) (SessionEngagementSummary, error) {
	summary := SessionEngagementSummary{SessionID: sessionID}

	queryBuilder := psql.Select(
		"COUNT(*)",
		"COALESCE(AVG(focus_score), 0)",
		"COALESCE(SUM(detection_count), 0)",
		"COALESCE(SUM(hand_raised_count), 0)",
		"COALESCE(SUM(distraction_count), 0)",
		"COALESCE(AVG(average_confidence), 0)",
		"COALESCE(SUM(CASE WHEN engagement_level = 'high' THEN 1 ELSE 0 END), 0)",
		"COALESCE(SUM(CASE WHEN engagement_level = 'low' THEN 1 ELSE 0 END), 0)",
		"COALESCE(SUM(attention_duration_seconds), 0)",
	).
		From("engagement_records").
		Where(sq.Eq{"session_id": sessionID})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return summary, fmt.Errorf("failed to build SQL query for GetSessionEngagementSummary: %w", err)
	}

	err = db.QueryRow(sqlStr, args...).Scan(
		&summary.StudentCount,
		&summary.AverageFocusScore,
		&summary.TotalDetections,
		&summary.TotalHandsRaised,
		&summary.TotalDistractions,
		&summary.AverageConfidence,
		&summary.HighEngagementCount,
		&summary.LowEngagementCount,
		&summary.TotalAttentionSecond,
	)
	if err != nil {
		return summary, fmt.Errorf("failed to query engagement summary for session %s: %w", sessionID, err)
	}

	attendanceBuilder := psql.Select(
		"COALESCE(SUM(CASE WHEN status = 'PRESENT' THEN 1 ELSE 0 END), 0)",
		"COALESCE(SUM(CASE WHEN status = 'LATE' THEN 1 ELSE 0 END), 0)",
	).
		From("attendance_records").
		Where(sq.Eq{"session_id": sessionID})

	sqlStr, args, err = attendanceBuilder.ToSql()
	if err != nil {
		return summary, fmt.Errorf("failed to build SQL query for attendance counts: %w", err)
	}

	err = db.QueryRow(sqlStr, args...).Scan(&summary.PresentCount, &summary.LateCount)
	if err != nil {
		return summary, fmt.Errorf("failed to query attendance counts for session %s: %w", sessionID, err)
	}
	return summary, nil
}

// GetCourseLeaderboard ranks a course's students by mean focus score across
// its sessions, most focused first.
func GetCourseLeaderboard(db *sql.DB, courseID uint, limit uint64) ([]LeaderboardEntry, error) {
	if limit == 0 {
		limit = 20
	}

	queryBuilder := psql.Select(
		"er.student_id",
		"s.name",
		"COUNT(DISTINCT er.session_id)",
		"COALESCE(AVG(er.focus_score), 0)",
		"COALESCE(SUM(er.hand_raised_count), 0)",
		"COALESCE(SUM(er.attention_duration_seconds), 0)",
	).
		From("engagement_records er").
		Join("sessions se ON se.id = er.session_id").
		Join("students s ON s.id = er.student_id").
		Where(sq.Eq{"se.course_id": courseID}).
		GroupBy("er.student_id", "s.name").
		OrderBy("AVG(er.focus_score) DESC").
		Limit(limit)

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetCourseLeaderboard: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard for course %d: %w", courseID, err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var entry LeaderboardEntry
		if err := rows.Scan(
			&entry.StudentID,
			&entry.StudentName,
			&entry.SessionCount,
			&entry.AverageFocusScore,
			&entry.HandsRaised,
			&entry.AttentionSeconds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed while iterating leaderboard rows: %w", err)
	}
	return entries, nil
}
