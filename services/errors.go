package services

import "errors"

// Batch-level ingestion errors. Each rejects the whole request before any
// state mutation; per-observation problems are never surfaced as these.
var (
	ErrValidation      = errors.New("missing required fields")
	ErrSessionNotFound = errors.New("session not found")
	ErrNotAuthorized   = errors.New("caller does not own the session's course")
)
