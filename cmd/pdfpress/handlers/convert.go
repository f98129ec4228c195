package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quickutil/pdfpress/cmd/pdfpress/service"
	"github.com/quickutil/pdfpress/common/bootstrap"
)

// ConvertHandler converts HEIC uploads to JPEG in memory
type ConvertHandler struct {
	components *bootstrap.Components
	svc        *service.ConvertService
}

// NewConvertHandler creates a new conversion handler
func NewConvertHandler(components *bootstrap.Components, svc *service.ConvertService) *ConvertHandler {
	return &ConvertHandler{
		components: components,
		svc:        svc,
	}
}

// ConvertHEIC accepts a HEIC/HEIF image and streams back a JPEG. The whole
// path runs in memory: no artifact is registered and nothing is staged to
// disk, so there is no cleanup obligation.
// POST /convert-heic
func (h *ConvertHandler) ConvertHEIC(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "No file uploaded",
		})
	}

	if fileHeader.Filename == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "No file selected",
		})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".heic" && ext != ".heif" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "File must be a HEIC image",
		})
	}

	maxBytes := h.components.Config.Storage.MaxUploadBytes
	if fileHeader.Size > maxBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]interface{}{
			"error":     "File too large",
			"max_bytes": maxBytes,
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.components.Logger.Error("failed to open uploaded image", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "Conversion failed",
			"details": "could not read upload",
		})
	}
	defer src.Close()

	data, err := h.svc.HEICToJPEG(src)
	if err != nil {
		if errors.Is(err, service.ErrInvalidImage) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error":   "Failed to decode image",
				"details": "upload is not a valid HEIC image",
			})
		}

		h.components.Logger.Error("image conversion failed",
			"filename", fileHeader.Filename,
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "Conversion failed",
			"details": "internal error while re-encoding",
		})
	}

	name := service.ConvertedName(fileHeader.Filename)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))

	return c.Blob(http.StatusOK, "image/jpeg", data)
}
