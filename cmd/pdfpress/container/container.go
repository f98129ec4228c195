package container

import (
	"github.com/quickutil/pdfpress/cmd/pdfpress/handlers"
	"github.com/quickutil/pdfpress/cmd/pdfpress/repository"
	"github.com/quickutil/pdfpress/cmd/pdfpress/service"
	"github.com/quickutil/pdfpress/common/bootstrap"
	"github.com/quickutil/pdfpress/common/ghostscript"
	"github.com/quickutil/pdfpress/common/pdfinfo"
	"github.com/quickutil/pdfpress/common/ratelimit"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Repositories
	ArtifactRepo *repository.ArtifactRepository

	// External tool wrappers
	Runner    *ghostscript.Runner
	Inspector *pdfinfo.Inspector

	// Services
	CompressService *service.CompressService
	ConvertService  *service.ConvertService
	Sweeper         *service.Sweeper

	// Rate limiting (nil when disabled)
	RateLimiter *ratelimit.RateLimiter

	// Handlers
	CompressHandler *handlers.CompressHandler
	DownloadHandler *handlers.DownloadHandler
	ConvertHandler  *handlers.ConvertHandler
	MetaHandler     *handlers.MetaHandler
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	// Initialize repositories
	artifactRepo := repository.NewArtifactRepository(components.Logger)

	// External tool wrappers
	runner := ghostscript.New(cfg.Tool.Binary, cfg.Tool.Timeout)
	inspector := pdfinfo.New()

	// Initialize services (bottom-up: dependencies first)
	compressService := service.NewCompressService(
		artifactRepo,
		runner,
		inspector,
		cfg.Storage.UploadDir,
		cfg.Storage.CompressedDir,
		components.Metrics,
		components.Logger,
	)
	convertService := service.NewConvertService(
		cfg.Convert.JPEGQuality,
		components.Metrics,
		components.Logger,
	)
	sweeper := service.NewSweeper(
		artifactRepo,
		cfg.Storage.UploadDir,
		cfg.Storage.CompressedDir,
		cfg.Storage.RetentionTTL,
		cfg.Storage.SweepInterval,
		components.Metrics,
		components.Logger,
	)

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && components.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(components.Redis, components.Logger)
	}

	return &Container{
		Components:      components,
		ArtifactRepo:    artifactRepo,
		Runner:          runner,
		Inspector:       inspector,
		CompressService: compressService,
		ConvertService:  convertService,
		Sweeper:         sweeper,
		RateLimiter:     rateLimiter,
		CompressHandler: handlers.NewCompressHandler(components, compressService),
		DownloadHandler: handlers.NewDownloadHandler(components, artifactRepo),
		ConvertHandler:  handlers.NewConvertHandler(components, convertService),
		MetaHandler:     handlers.NewMetaHandler(components, compressService),
	}, nil
}
