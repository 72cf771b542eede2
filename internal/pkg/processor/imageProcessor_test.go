package processor

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/electrorescue/internal/entity"
	"github.com/ds124wfegd/electrorescue/internal/pkg/dataurl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidate checks the pre-dispatch image checks
func TestValidate(t *testing.T) {
	p := NewImageProcessor(1<<20, 0, 0)

	pngData := encodePNG(t, 64, 48)
	jpegData := encodeJPEG(t, 64, 48)
	gifData := encodeGIF(t, 16, 16)

	tests := []struct {
		name     string
		mimeType string
		raw      []byte
		wantErr  error
	}{
		{name: "valid png", mimeType: "image/png", raw: pngData},
		{name: "valid jpeg", mimeType: "image/jpeg", raw: jpegData},
		{name: "jpg alias", mimeType: "image/jpg", raw: jpegData},
		{name: "upper case mime", mimeType: "IMAGE/PNG", raw: pngData},
		{name: "valid gif", mimeType: "image/gif", raw: gifData},
		{name: "unsupported type", mimeType: "application/pdf", raw: pngData, wantErr: entity.ErrUnsupportedImageType},
		{name: "empty payload", mimeType: "image/png", raw: nil, wantErr: entity.ErrInvalidImageFormat},
		{name: "garbage bytes", mimeType: "image/png", raw: []byte("definitely not an image"), wantErr: entity.ErrInvalidImageFormat},
		{name: "declared type mismatch", mimeType: "image/jpeg", raw: pngData, wantErr: entity.ErrInvalidImageFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Validate(tt.mimeType, tt.raw)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateSizeLimit(t *testing.T) {
	data := encodePNG(t, 200, 200)
	p := NewImageProcessor(int64(len(data)-1), 0, 0)

	err := p.Validate("image/png", data)
	assert.ErrorIs(t, err, entity.ErrImageTooLarge)

	unlimited := NewImageProcessor(0, 0, 0)
	assert.NoError(t, unlimited.Validate("image/png", data))
}

// TestPreview checks that previews fit the bounds and never upscale
func TestPreview(t *testing.T) {
	tests := []struct {
		name       string
		raw        []byte
		maxW, maxH int
		wantW      int
		wantH      int
	}{
		{name: "landscape downscaled", raw: encodePNG(t, 800, 600), maxW: 400, maxH: 400, wantW: 400, wantH: 300},
		{name: "portrait downscaled", raw: encodeJPEG(t, 600, 800), maxW: 400, maxH: 400, wantW: 300, wantH: 400},
		{name: "small image kept", raw: encodePNG(t, 100, 50), maxW: 400, maxH: 400, wantW: 100, wantH: 50},
		{name: "gif first frame", raw: encodeGIF(t, 40, 20), maxW: 400, maxH: 400, wantW: 40, wantH: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewImageProcessor(0, tt.maxW, tt.maxH)

			url, err := p.Preview(tt.raw)
			require.NoError(t, err)

			mime, raw, err := dataurl.Decode(url)
			require.NoError(t, err)
			assert.Equal(t, "image/jpeg", mime)

			img, err := jpeg.Decode(bytes.NewReader(raw))
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, img.Bounds().Dx())
			assert.Equal(t, tt.wantH, img.Bounds().Dy())
		})
	}
}

func TestPreviewFlattensTransparency(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10)) // fully transparent
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	url, err := NewImageProcessor(0, 0, 0).Preview(buf.Bytes())
	require.NoError(t, err)

	_, raw, err := dataurl.Decode(url)
	require.NoError(t, err)
	out, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	r, g, b, _ := out.At(5, 5).RGBA()
	assert.True(t, r>>8 > 240 && g>>8 > 240 && b>>8 > 240, "expected white background")
}

func TestPreviewRejectsGarbage(t *testing.T) {
	_, err := NewImageProcessor(0, 0, 0).Preview([]byte("nope"))
	assert.Error(t, err)
}

func TestIsSupportedType(t *testing.T) {
	assert.True(t, IsSupportedType("image/webp"))
	assert.True(t, IsSupportedType("image/PNG"))
	assert.False(t, IsSupportedType("image/bmp"))
	assert.False(t, IsSupportedType(""))
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func encodeGIF(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, solid(w, h), nil))
	return buf.Bytes()
}

// solid builds a board-green test image
func solid(w, h int) image.Image {
	return imaging.New(w, h, color.NRGBA{R: 20, G: 110, B: 60, A: 255})
}
