package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/quickutil/pdfpress/common/config"
	"github.com/quickutil/pdfpress/common/logger"
	"github.com/quickutil/pdfpress/common/metrics"
	"github.com/quickutil/pdfpress/common/redis"
)

// Setup initializes all service components
// This is the main entry point for the service
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	// Apply options
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(
			components.Config.Service.LogLevel,
			components.Config.Service.LogFormat,
		)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", components.Config.Service.Environment,
	)

	// 3. Ensure scratch directories exist
	for _, dir := range []string{components.Config.Storage.UploadDir, components.Config.Storage.CompressedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create scratch directory %s: %w", dir, err)
		}
	}

	// 4. Connect Redis (only needed for rate limiting)
	if !options.skipRedis && components.Config.RateLimit.Enabled {
		components.Logger.Info("connecting to redis", "addr", components.Config.RedisAddr())

		components.Redis, err = redis.Connect(
			ctx,
			components.Config.RedisAddr(),
			components.Config.Redis.Password,
			components.Config.Redis.DB,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		// Register cleanup
		components.addCleanup(func() error {
			components.Logger.Info("closing redis connection")
			return components.Redis.Close()
		})
	}

	// 5. Initialize metrics
	if !options.skipMetrics && components.Config.Telemetry.EnableMetrics {
		components.Metrics = metrics.NewProm(serviceName)
	} else {
		components.Metrics = metrics.Noop{}
	}

	// 6. Start pprof server if enabled
	if components.Config.Telemetry.EnablePprof {
		pprofAddr := fmt.Sprintf("localhost:%d", components.Config.Telemetry.PprofPort)
		go func() {
			components.Logger.Info("pprof server starting", "addr", pprofAddr)
			if err := http.ListenAndServe(pprofAddr, nil); err != nil {
				components.Logger.Error("pprof server error", "error", err)
			}
		}()
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"redis", components.Redis != nil,
		"metrics", components.Config.Telemetry.EnableMetrics,
	)

	return components, nil
}

// MustSetup is like Setup but panics on error
// Useful when the service can't recover from initialization failure
func MustSetup(ctx context.Context, serviceName string, opts ...Option) *Components {
	components, err := Setup(ctx, serviceName, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to setup service %s: %v", serviceName, err))
	}
	return components
}
