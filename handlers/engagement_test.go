package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/classpulse/classpulsebackend/models"
	"github.com/classpulse/classpulsebackend/services"
	"github.com/classpulse/classpulsebackend/vision"
)

type fakeIngestor struct {
	result services.BatchResult
	err    error

	gotCaller uint
	gotBatch  *vision.DetectionResponse
}

func (f *fakeIngestor) IngestBatch(ctx context.Context, callerID uint, batch *vision.DetectionResponse) (services.BatchResult, error) {
	f.gotCaller = callerID
	f.gotBatch = batch
	return f.result, f.err
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	user := &models.User{ID: 7, Username: "teacher"}
	ctx := context.WithValue(req.Context(), UserContextKey, user)
	return req.WithContext(ctx)
}

func TestSubmitBatchRequiresAuth(t *testing.T) {
	handler := &EngagementHandler{Ingestor: &fakeIngestor{}}
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/engagement", strings.NewReader("{}"))
	rec := httptest.NewRecorder()

	handler.SubmitBatch(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestSubmitBatchSuccess(t *testing.T) {
	ingestor := &fakeIngestor{result: services.BatchResult{ProcessedFaces: 2, TotalFaces: 3}}
	handler := &EngagementHandler{Ingestor: ingestor}

	body := `{"lecture_id":"sess-1","total_faces":3,"faces":[],"summary":{}}`
	rec := httptest.NewRecorder()
	handler.SubmitBatch(rec, authedRequest(http.MethodPost, "/api/sessions/engagement", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ingestor.gotCaller != 7 {
		t.Errorf("caller id = %d, want 7", ingestor.gotCaller)
	}
	if ingestor.gotBatch == nil || ingestor.gotBatch.LectureID != "sess-1" {
		t.Errorf("batch not forwarded: %+v", ingestor.gotBatch)
	}

	var resp struct {
		Success        bool `json:"success"`
		ProcessedFaces int  `json:"processed_faces"`
		TotalFaces     int  `json:"total_faces"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.ProcessedFaces != 2 || resp.TotalFaces != 3 {
		t.Errorf("response = %+v, want success with 2/3 faces", resp)
	}
}

func TestSubmitBatchErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.ErrValidation, http.StatusBadRequest},
		{"unknown session", services.ErrSessionNotFound, http.StatusNotFound},
		{"not owner", services.ErrNotAuthorized, http.StatusForbidden},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &EngagementHandler{Ingestor: &fakeIngestor{err: tt.err}}
			rec := httptest.NewRecorder()
			handler.SubmitBatch(rec, authedRequest(http.MethodPost, "/api/sessions/engagement", "{}"))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSubmitBatchRejectsBadJSON(t *testing.T) {
	handler := &EngagementHandler{Ingestor: &fakeIngestor{}}
	rec := httptest.NewRecorder()
	handler.SubmitBatch(rec, authedRequest(http.MethodPost, "/api/sessions/engagement", "{not json"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetEngagementRequiresSessionID(t *testing.T) {
	handler := &EngagementHandler{}
	rec := httptest.NewRecorder()
	handler.GetEngagement(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/engagement", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
