package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/quickutil/pdfpress/cmd/pdfpress/handlers"
	"github.com/quickutil/pdfpress/common/metrics"
)

// RegisterMetaRoutes registers service metadata, health and metrics routes
func RegisterMetaRoutes(e *echo.Echo, meta *handlers.MetaHandler, metricsEnabled bool) {
	// GET / - service metadata
	e.GET("/", meta.Index)

	// GET /health - health check including external tool availability
	e.GET("/health", meta.Health)

	if metricsEnabled {
		// GET /metrics - Prometheus metrics
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}
}
