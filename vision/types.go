// Package vision holds the wire contract of the external face analysis
// gateway and an HTTP client for it. The gateway itself is an opaque
// collaborator; only this request/response schema is depended on.
package vision

// Frame is one captured video frame, JPEG-encoded, ready for submission.
type Frame struct {
	JPEG   []byte
	Width  int
	Height int
}

// BoundingBox locates a face within the frame. The gateway normally emits
// normalized [0,1] coordinates but some builds emit pixel values; ingestion
// normalizes either form.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// HandRaising is the gateway's hand detection for one face.
type HandRaising struct {
	IsHandRaised bool    `json:"is_hand_raised"`
	Confidence   float64 `json:"confidence"`
}

// Face is one detected person in one frame as the gateway reports it.
// attention_status is case-insensitive on the wire (the gateway emits
// FOCUSED/UNFOCUSED).
type Face struct {
	PersonID          string      `json:"person_id"`
	RecognitionStatus string      `json:"recognition_status"`
	AttentionStatus   string      `json:"attention_status"`
	HandRaisingStatus HandRaising `json:"hand_raising_status"`
	Confidence        float64     `json:"confidence"`
	BoundingBox       BoundingBox `json:"bounding_box"`
}

// Summary aggregates one frame's detections.
type Summary struct {
	NewFaces       int `json:"new_faces"`
	KnownFaces     int `json:"known_faces"`
	FocusedFaces   int `json:"focused_faces"`
	UnfocusedFaces int `json:"unfocused_faces"`
	HandsRaised    int `json:"hands_raised"`
}

// DetectionResponse is the gateway's per-frame result and doubles as the
// body of the engagement ingestion endpoint. Summary is a pointer so a
// missing summary is distinguishable from an empty one during validation.
type DetectionResponse struct {
	LectureID  string   `json:"lecture_id"`
	Timestamp  string   `json:"timestamp,omitempty"` // ISO8601
	TotalFaces int      `json:"total_faces"`
	Faces      []Face   `json:"faces"`
	Summary    *Summary `json:"summary"`

	// FrameWidth/FrameHeight are set by the capture path so pixel-valued
	// bounding boxes can be normalized; absent on the HTTP ingest path.
	FrameWidth  int `json:"frame_width,omitempty"`
	FrameHeight int `json:"frame_height,omitempty"`
}
