package engagement

import (
	"fmt"
	"strings"

	"github.com/classpulse/classpulsebackend/models"
)

// RecognitionStatus reports whether the gateway matched a face to a known
// student.
type RecognitionStatus string

const (
	RecognitionKnown RecognitionStatus = "known"
	RecognitionNew   RecognitionStatus = "new"
)

// AttentionStatus is the gateway's focused/unfocused classification.
type AttentionStatus string

const (
	AttentionFocused   AttentionStatus = "focused"
	AttentionUnfocused AttentionStatus = "unfocused"
)

// Observation is one detected person in one captured frame, normalized into
// a closed internal type at the ingestion boundary. It is ephemeral: it only
// exists for the duration of one aggregation update.
type Observation struct {
	PersonID    string
	Recognition RecognitionStatus
	Attention   AttentionStatus
	HandRaised  bool
	Confidence  float64
	BoundingBox models.BoundingBox
}

// Focused reports whether the observation carries the focused indicator.
func (o Observation) Focused() bool {
	return o.Attention == AttentionFocused
}

// Known reports whether the observation references a recognized student.
func (o Observation) Known() bool {
	return o.Recognition == RecognitionKnown
}

// NewObservation validates and normalizes the loose wire fields into an
// Observation. Status strings are case-insensitive on input; the gateway is
// known to emit FOCUSED/UNFOCUSED and some builds emit "found" for "known".
func NewObservation(personID, recognition, attention string, handRaised bool, confidence float64, box models.BoundingBox) (Observation, error) {
	if personID == "" {
		return Observation{}, fmt.Errorf("observation has empty person_id")
	}

	var rec RecognitionStatus
	switch strings.ToLower(recognition) {
	case "known", "found":
		rec = RecognitionKnown
	case "new", "unknown":
		rec = RecognitionNew
	default:
		return Observation{}, fmt.Errorf("unrecognized recognition_status %q", recognition)
	}

	var att AttentionStatus
	switch strings.ToLower(attention) {
	case "focused":
		att = AttentionFocused
	case "unfocused":
		att = AttentionUnfocused
	default:
		return Observation{}, fmt.Errorf("unrecognized attention_status %q", attention)
	}

	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	return Observation{
		PersonID:    personID,
		Recognition: rec,
		Attention:   att,
		HandRaised:  handRaised,
		Confidence:  confidence,
		BoundingBox: ClampBox(box),
	}, nil
}

// NormalizeBox converts a pixel-valued bounding box to the [0,1] range using
// the frame dimensions. Boxes that are already normalized (all components
// within [0,1]) pass through unchanged apart from clamping.
func NormalizeBox(box models.BoundingBox, frameWidth, frameHeight int) models.BoundingBox {
	pixelValued := box.X > 1 || box.Y > 1 || box.Width > 1 || box.Height > 1
	if pixelValued && frameWidth > 0 && frameHeight > 0 {
		box.X /= float64(frameWidth)
		box.Width /= float64(frameWidth)
		box.Y /= float64(frameHeight)
		box.Height /= float64(frameHeight)
	}
	return ClampBox(box)
}

// ClampBox clamps every component of the box to [0,1].
func ClampBox(box models.BoundingBox) models.BoundingBox {
	box.X = clamp01(box.X)
	box.Y = clamp01(box.Y)
	box.Width = clamp01(box.Width)
	box.Height = clamp01(box.Height)
	return box
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
