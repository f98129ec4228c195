package service

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickutil/pdfpress/common/logger"
	"github.com/quickutil/pdfpress/common/metrics"
)

func newConvertService() *ConvertService {
	return NewConvertService(85, metrics.Noop{}, logger.New("error", "json"))
}

func TestHEICToJPEGRejectsGarbage(t *testing.T) {
	svc := newConvertService()

	_, err := svc.HEICToJPEG(strings.NewReader("definitely not a heic container"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestHEICToJPEGRejectsEmptyInput(t *testing.T) {
	svc := newConvertService()

	_, err := svc.HEICToJPEG(bytes.NewReader(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestFlattenCompositesAlphaOverWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255}) // opaque red
	src.SetNRGBA(1, 1, color.NRGBA{A: 0})           // fully transparent

	flat := flatten(src)

	r, g, b, a := flat.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)
	assert.Equal(t, uint32(0xffff), a, "output must be fully opaque")

	r, g, b, _ = flat.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r, "transparent pixels flatten to white")
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)

	// The flattened image must encode cleanly as JPEG
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, flat, &jpeg.Options{Quality: 85}))
	decoded, err := jpeg.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, flat.Bounds(), decoded.Bounds())
}

func TestConvertedName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.heic", "photo_converted.jpg"},
		{"photo.HEIC", "photo_converted.jpg"},
		{"vacation pic.heif", "vacation_pic_converted.jpg"},
		{"", "upload_converted.jpg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ConvertedName(tt.in))
	}
}
