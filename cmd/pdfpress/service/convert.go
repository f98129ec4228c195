package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"path/filepath"
	"strings"

	"github.com/gen2brain/heic"

	"github.com/quickutil/pdfpress/common/logger"
	"github.com/quickutil/pdfpress/common/metrics"
)

// ErrInvalidImage marks uploads that cannot be decoded as HEIC
var ErrInvalidImage = errors.New("invalid or unsupported image")

// ConvertService converts HEIC images to JPEG entirely in memory. It keeps
// no state and touches neither the artifact store nor the filesystem.
type ConvertService struct {
	jpegQuality int
	metrics     metrics.Metrics
	log         *logger.Logger
}

// NewConvertService creates a new conversion service
func NewConvertService(jpegQuality int, m metrics.Metrics, log *logger.Logger) *ConvertService {
	return &ConvertService{
		jpegQuality: jpegQuality,
		metrics:     m,
		log:         log,
	}
}

// HEICToJPEG decodes a HEIC image, flattens it onto an opaque RGB canvas and
// re-encodes it as JPEG at the configured quality.
func (s *ConvertService) HEICToJPEG(src io.Reader) ([]byte, error) {
	img, err := heic.Decode(src)
	if err != nil {
		s.metrics.IncConversion("decode_error")
		return nil, fmt.Errorf("%w: %s", ErrInvalidImage, err)
	}

	flattened := flatten(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flattened, &jpeg.Options{Quality: s.jpegQuality}); err != nil {
		s.metrics.IncConversion("encode_error")
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}

	s.metrics.IncConversion("success")
	s.log.Info("image converted",
		"width", flattened.Bounds().Dx(),
		"height", flattened.Bounds().Dy(),
		"jpeg_bytes", buf.Len(),
	)

	return buf.Bytes(), nil
}

// ConvertedName derives the suggested download name for a converted image:
// the original basename with a _converted suffix and a .jpg extension.
func ConvertedName(filename string) string {
	safe := SanitizeFilename(filename)
	base := strings.TrimSuffix(safe, filepath.Ext(safe))
	if base == "" {
		base = "image"
	}
	return base + "_converted.jpg"
}

// flatten normalizes any decoded color model onto an opaque RGBA canvas,
// compositing alpha over white the way the JPEG format expects.
func flatten(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Over)
	return canvas
}
