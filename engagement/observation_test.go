package engagement

import (
	"testing"

	"github.com/classpulse/classpulsebackend/models"
)

func TestNewObservationNormalization(t *testing.T) {
	tests := []struct {
		name        string
		personID    string
		recognition string
		attention   string
		wantRec     RecognitionStatus
		wantAtt     AttentionStatus
		wantErr     bool
	}{
		{"lowercase known", "p1", "known", "focused", RecognitionKnown, AttentionFocused, false},
		{"uppercase statuses", "p1", "KNOWN", "FOCUSED", RecognitionKnown, AttentionFocused, false},
		{"found maps to known", "p1", "found", "unfocused", RecognitionKnown, AttentionUnfocused, false},
		{"unknown maps to new", "p1", "unknown", "focused", RecognitionNew, AttentionFocused, false},
		{"new face", "p1", "new", "UNFOCUSED", RecognitionNew, AttentionUnfocused, false},
		{"empty person id", "", "known", "focused", "", "", true},
		{"bad recognition", "p1", "maybe", "focused", "", "", true},
		{"bad attention", "p1", "known", "sleeping", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := NewObservation(tt.personID, tt.recognition, tt.attention, false, 0.5, models.BoundingBox{})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewObservation failed: %v", err)
			}
			if obs.Recognition != tt.wantRec {
				t.Errorf("Recognition = %q, want %q", obs.Recognition, tt.wantRec)
			}
			if obs.Attention != tt.wantAtt {
				t.Errorf("Attention = %q, want %q", obs.Attention, tt.wantAtt)
			}
		})
	}
}

func TestNewObservationClampsConfidence(t *testing.T) {
	obs, err := NewObservation("p1", "known", "focused", false, 1.7, models.BoundingBox{})
	if err != nil {
		t.Fatalf("NewObservation failed: %v", err)
	}
	if obs.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1", obs.Confidence)
	}

	obs, err = NewObservation("p1", "known", "focused", false, -0.2, models.BoundingBox{})
	if err != nil {
		t.Fatalf("NewObservation failed: %v", err)
	}
	if obs.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", obs.Confidence)
	}
}

func TestNormalizeBoxPixelValues(t *testing.T) {
	box := NormalizeBox(models.BoundingBox{X: 320, Y: 120, Width: 64, Height: 48}, 640, 480)
	want := models.BoundingBox{X: 0.5, Y: 0.25, Width: 0.1, Height: 0.1}
	if box != want {
		t.Errorf("NormalizeBox = %+v, want %+v", box, want)
	}
}

func TestNormalizeBoxAlreadyNormalized(t *testing.T) {
	in := models.BoundingBox{X: 0.2, Y: 0.3, Width: 0.4, Height: 0.5}
	if got := NormalizeBox(in, 640, 480); got != in {
		t.Errorf("NormalizeBox changed a normalized box: got %+v, want %+v", got, in)
	}
}

func TestNormalizeBoxClamps(t *testing.T) {
	// a box hanging off the frame edge clamps into range
	box := NormalizeBox(models.BoundingBox{X: 600, Y: -10, Width: 700, Height: 480}, 640, 480)
	if box.X < 0 || box.X > 1 || box.Y != 0 || box.Width != 1 || box.Height != 1 {
		t.Errorf("NormalizeBox out of range: %+v", box)
	}
}
