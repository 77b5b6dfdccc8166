package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Client submits captured frames to the face analysis gateway over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a gateway client. baseURL is the gateway root, e.g.
// http://localhost:8000.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ProcessFrame uploads one frame as multipart form data and decodes the
// gateway's detection response. The request is cancelled through ctx; a
// caller that stops mid-flight gets ctx.Err() back and must discard any
// partial result.
func (c *Client) ProcessFrame(ctx context.Context, sessionID string, frame Frame) (*DetectionResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart image part: %w", err)
	}
	if _, err := part.Write(frame.JPEG); err != nil {
		return nil, fmt.Errorf("failed to write frame bytes: %w", err)
	}
	if err := writer.WriteField("lectureId", sessionID); err != nil {
		return nil, fmt.Errorf("failed to write lectureId field: %w", err)
	}
	if err := writer.WriteField("timestamp", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("failed to write timestamp field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/process-frame", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(msg))
	}

	var detection DetectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&detection); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	detection.FrameWidth = frame.Width
	detection.FrameHeight = frame.Height
	return &detection, nil
}
