package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/quickutil/pdfpress/cmd/pdfpress/handlers"
)

// RegisterCompressRoutes registers compression and download routes. Extra
// middleware (rate limiting) applies to the upload route only.
func RegisterCompressRoutes(e *echo.Echo, compress *handlers.CompressHandler, download *handlers.DownloadHandler, uploadMiddleware ...echo.MiddlewareFunc) {
	// POST /compress - upload a PDF and compress it
	e.POST("/compress", compress.Compress, uploadMiddleware...)

	// GET /download/:id - fetch a compressed artifact by identifier
	e.GET("/download/:id", download.Download)
}
