package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/electrorescue/internal/entity"
	"github.com/ds124wfegd/electrorescue/internal/pkg/dataurl"
	_ "golang.org/x/image/webp"
)

// ImageProcessor checks uploads before they are sent for analysis and builds
// the preview shown next to the report. It never inspects board contents.
type ImageProcessor interface {
	Validate(mimeType string, raw []byte) error
	Preview(raw []byte) (string, error)
}

type imageProcessor struct {
	maxBytes      int64
	previewWidth  int
	previewHeight int
}

// mime type -> image.DecodeConfig format name
var supportedTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

func NewImageProcessor(maxBytes int64, previewWidth, previewHeight int) ImageProcessor {
	if previewWidth <= 0 {
		previewWidth = 1280
	}
	if previewHeight <= 0 {
		previewHeight = 720
	}
	return &imageProcessor{
		maxBytes:      maxBytes,
		previewWidth:  previewWidth,
		previewHeight: previewHeight,
	}
}

// IsSupportedType reports whether mimeType is an image type the analyzer accepts.
func IsSupportedType(mimeType string) bool {
	_, ok := supportedTypes[strings.ToLower(mimeType)]
	return ok
}

func (p *imageProcessor) Validate(mimeType string, raw []byte) error {
	want, ok := supportedTypes[strings.ToLower(mimeType)]
	if !ok {
		return entity.ErrUnsupportedImageType
	}
	if len(raw) == 0 {
		return entity.ErrInvalidImageFormat
	}
	if p.maxBytes > 0 && int64(len(raw)) > p.maxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", entity.ErrImageTooLarge, len(raw), p.maxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return entity.ErrInvalidImageFormat
	}
	if format != want {
		return fmt.Errorf("%w: declared %s, got %s", entity.ErrInvalidImageFormat, mimeType, format)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return entity.ErrInvalidImageFormat
	}
	return nil
}

func (p *imageProcessor) Preview(raw []byte) (string, error) {
	// GIF decodes to its first frame
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	fitted := imaging.Fit(img, p.previewWidth, p.previewHeight, imaging.Lanczos)

	// flatten transparency onto white, JPEG has no alpha
	b := fitted.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), color.White)
	canvas = imaging.Overlay(canvas, fitted, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}

	return dataurl.Encode("image/jpeg", buf.Bytes()), nil
}
