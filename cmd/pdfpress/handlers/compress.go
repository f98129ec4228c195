package handlers

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quickutil/pdfpress/cmd/pdfpress/service"
	"github.com/quickutil/pdfpress/common/bootstrap"
)

// CompressHandler handles PDF compression uploads
type CompressHandler struct {
	components *bootstrap.Components
	svc        *service.CompressService
}

// NewCompressHandler creates a new compression handler
func NewCompressHandler(components *bootstrap.Components, svc *service.CompressService) *CompressHandler {
	return &CompressHandler{
		components: components,
		svc:        svc,
	}
}

// Compress accepts a multipart PDF upload and returns artifact metadata.
// POST /compress
func (h *CompressHandler) Compress(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "No file uploaded",
		})
	}

	if fileHeader.Filename == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "No file selected",
		})
	}

	// Extension check happens before anything touches disk: a rejected
	// upload must not create scratch files.
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "File must be a PDF",
		})
	}

	maxBytes := h.components.Config.Storage.MaxUploadBytes
	if fileHeader.Size > maxBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]interface{}{
			"success":   false,
			"error":     "File too large",
			"max_bytes": maxBytes,
		})
	}

	quality := c.FormValue("quality")

	src, err := fileHeader.Open()
	if err != nil {
		h.components.Logger.Error("failed to open uploaded file", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Failed to read upload",
		})
	}
	defer src.Close()

	result, err := h.svc.Compress(c.Request().Context(), src, fileHeader.Filename, quality)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPDF) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   "Invalid or corrupted PDF",
			})
		}

		// Tool details are logged by the service; clients get a generic message
		h.components.Logger.Error("compression failed",
			"filename", fileHeader.Filename,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Compression failed",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":           true,
		"download_id":       result.DownloadID,
		"original_size":     result.OriginalSize,
		"compressed_size":   result.CompressedSize,
		"compression_ratio": round2(result.CompressionRatio),
		"quality":           result.Quality,
		"page_count":        result.PageCount,
		"compression_time":  round2(result.Duration.Seconds()),
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
