package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickutil/pdfpress/cmd/pdfpress/service"
	"github.com/quickutil/pdfpress/common/bootstrap"
)

// MetaHandler serves service metadata and health
type MetaHandler struct {
	components *bootstrap.Components
	svc        *service.CompressService
}

// NewMetaHandler creates a new metadata handler
func NewMetaHandler(components *bootstrap.Components, svc *service.CompressService) *MetaHandler {
	return &MetaHandler{
		components: components,
		svc:        svc,
	}
}

// Index returns service metadata
// GET /
func (h *MetaHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"service": "QuickUtil PDF Compression API",
		"version": h.components.Config.Service.Version,
		"status":  "running",
	})
}

// Health reports service health and external tool availability
// GET /health
func (h *MetaHandler) Health(c echo.Context) error {
	version, available := h.svc.ToolVersion(c.Request().Context())

	status := "healthy"
	if !available {
		status = "degraded"
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":                status,
		"ghostscript_available": available,
		"ghostscript_version":   version,
	})
}
