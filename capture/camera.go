// Package capture provides frame sources for the scheduler. The only
// production source is a local webcam read through OpenCV; deployments where
// the browser owns the camera submit batches over HTTP instead.
package capture

import (
	"context"
	"fmt"
	"log"
	"sync"

	"gocv.io/x/gocv"

	"github.com/classpulse/classpulsebackend/vision"
)

// Webcam reads JPEG frames from a local video device via gocv. Frames larger
// than maxSize on their longest side are downscaled before submission to
// keep gateway uploads small.
type Webcam struct {
	deviceID int
	maxSize  int

	mu     sync.Mutex
	cam    *gocv.VideoCapture
	closed bool
}

// OpenWebcam opens the given video device.
func OpenWebcam(deviceID, maxSize int) (*Webcam, error) {
	cam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open video device %d: %w", deviceID, err)
	}
	log.Printf("capture: opened video device %d", deviceID)
	return &Webcam{deviceID: deviceID, maxSize: maxSize, cam: cam}, nil
}

// Enabled reports whether the device is open and readable.
func (w *Webcam) Enabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.closed && w.cam != nil && w.cam.IsOpened()
}

// Capture grabs a single frame and encodes it as JPEG.
func (w *Webcam) Capture(ctx context.Context) (vision.Frame, error) {
	if err := ctx.Err(); err != nil {
		return vision.Frame{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.cam == nil {
		return vision.Frame{}, fmt.Errorf("video device %d is closed", w.deviceID)
	}

	img := gocv.NewMat()
	defer img.Close()
	if ok := w.cam.Read(&img); !ok || img.Empty() {
		return vision.Frame{}, fmt.Errorf("failed to read frame from device %d", w.deviceID)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return vision.Frame{}, fmt.Errorf("failed to encode frame from device %d: %w", w.deviceID, err)
	}
	defer buf.Close()

	frame := vision.Frame{
		JPEG:   append([]byte(nil), buf.GetBytes()...),
		Width:  img.Cols(),
		Height: img.Rows(),
	}
	if w.maxSize > 0 && (frame.Width > w.maxSize || frame.Height > w.maxSize) {
		scaled, err := DownscaleJPEG(frame, w.maxSize)
		if err != nil {
			// a full-size frame still works, just uploads more bytes
			log.Printf("capture: downscale failed, submitting full frame: %v", err)
			return frame, nil
		}
		frame = scaled
	}
	return frame, nil
}

// Close releases the device. Idempotent.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.cam != nil {
		if err := w.cam.Close(); err != nil {
			return fmt.Errorf("failed to close video device %d: %w", w.deviceID, err)
		}
	}
	log.Printf("capture: closed video device %d", w.deviceID)
	return nil
}
