package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/quickutil/pdfpress/cmd/pdfpress/handlers"
)

// RegisterConvertRoutes registers image conversion routes
func RegisterConvertRoutes(e *echo.Echo, convert *handlers.ConvertHandler, uploadMiddleware ...echo.MiddlewareFunc) {
	// POST /convert-heic - convert a HEIC image to JPEG in memory
	e.POST("/convert-heic", convert.ConvertHEIC, uploadMiddleware...)
}
