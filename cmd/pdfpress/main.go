package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/quickutil/pdfpress/cmd/pdfpress/container"
	"github.com/quickutil/pdfpress/cmd/pdfpress/routes"
	"github.com/quickutil/pdfpress/common/bootstrap"
	commonmw "github.com/quickutil/pdfpress/common/middleware"
	"github.com/quickutil/pdfpress/common/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bootstrap common components (config, logger, metrics, optional redis)
	components, err := bootstrap.Setup(ctx, "pdfpress")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap pdfpress: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	// Initialize Echo server
	e := setupEcho(serviceContainer)

	// Setup middleware
	setupMiddleware(e, components.Config.Service.CORSOrigins)

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Start the retention sweeper; it runs until ctx is cancelled on shutdown
	serviceContainer.Sweeper.Start(ctx)

	// Start server with graceful shutdown
	srv := server.New(
		components.Config.Service.Name,
		components.Config.Service.Port,
		e,
		components.Logger,
	)
	if err := srv.Start(); err != nil {
		components.Logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho(serviceContainer *container.Container) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(serviceContainer)
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo, corsOrigins []string) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(middleware.RequestID())
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	cfg := serviceContainer.Components.Config

	var uploadMiddleware []echo.MiddlewareFunc
	if serviceContainer.RateLimiter != nil {
		uploadMiddleware = append(uploadMiddleware, commonmw.ClientRateLimitMiddleware(
			serviceContainer.RateLimiter,
			cfg.RateLimit.RequestsPerWindow,
			cfg.RateLimit.Window,
		))
	}

	routes.RegisterMetaRoutes(e, serviceContainer.MetaHandler, cfg.Telemetry.EnableMetrics)
	routes.RegisterCompressRoutes(e, serviceContainer.CompressHandler, serviceContainer.DownloadHandler, uploadMiddleware...)
	routes.RegisterConvertRoutes(e, serviceContainer.ConvertHandler, uploadMiddleware...)
}

// errorHandler shapes uncaught errors into the service's structured form,
// logging detail while keeping internals out of the response body.
func errorHandler(serviceContainer *container.Container) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal server error"

		if httpErr, ok := err.(*echo.HTTPError); ok {
			code = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				message = msg
			}
		}

		if code >= http.StatusInternalServerError {
			serviceContainer.Components.Logger.Error("unhandled request error",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
			message = "Internal server error"
		}

		if jsonErr := c.JSON(code, map[string]interface{}{"error": message}); jsonErr != nil {
			serviceContainer.Components.Logger.Error("failed to write error response", "error", jsonErr)
		}
	}
}
