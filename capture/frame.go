package capture

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/disintegration/imaging"

	"github.com/classpulse/classpulsebackend/vision"
)

const jpegQuality = 80

// DownscaleJPEG re-encodes the frame so its longest side is at most maxSize,
// preserving aspect ratio. Frames already within bounds are returned as-is.
func DownscaleJPEG(frame vision.Frame, maxSize int) (vision.Frame, error) {
	if maxSize <= 0 || (frame.Width <= maxSize && frame.Height <= maxSize) {
		return frame, nil
	}

	img, err := imaging.Decode(bytes.NewReader(frame.JPEG))
	if err != nil {
		return vision.Frame{}, fmt.Errorf("failed to decode frame: %w", err)
	}

	resized := imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return vision.Frame{}, fmt.Errorf("failed to re-encode frame: %w", err)
	}

	bounds := resized.Bounds()
	return vision.Frame{
		JPEG:   out.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
