package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/quickutil/pdfpress/cmd/pdfpress/models"
	"github.com/quickutil/pdfpress/cmd/pdfpress/repository"
	"github.com/quickutil/pdfpress/common/ghostscript"
	"github.com/quickutil/pdfpress/common/logger"
	"github.com/quickutil/pdfpress/common/metrics"
)

// ErrInvalidPDF marks uploads that fail structural validation; a client
// error, not a tool failure.
var ErrInvalidPDF = errors.New("invalid or corrupted PDF")

// Runner produces a compressed output file from an input file under a
// quality profile, with a hard wall-clock timeout.
type Runner interface {
	Compress(ctx context.Context, inputPath, outputPath string, profile ghostscript.Profile) error
	Version(ctx context.Context) (string, error)
	Available(ctx context.Context) bool
}

// Inspector runs pre-flight checks on staged PDF uploads
type Inspector interface {
	Validate(path string) error
	PageCount(path string) (int, error)
}

// CompressService orchestrates one upload: stage, inspect, run the external
// tool, register the artifact. Every scratch file it creates is removed on
// its own failure path before returning.
type CompressService struct {
	repo          *repository.ArtifactRepository
	runner        Runner
	inspector     Inspector
	uploadDir     string
	compressedDir string
	metrics       metrics.Metrics
	log           *logger.Logger
}

// NewCompressService creates a new compression service
func NewCompressService(
	repo *repository.ArtifactRepository,
	runner Runner,
	inspector Inspector,
	uploadDir, compressedDir string,
	m metrics.Metrics,
	log *logger.Logger,
) *CompressService {
	return &CompressService{
		repo:          repo,
		runner:        runner,
		inspector:     inspector,
		uploadDir:     uploadDir,
		compressedDir: compressedDir,
		metrics:       m,
		log:           log,
	}
}

// CompressResult holds the outcome of a successful compression
type CompressResult struct {
	DownloadID       string
	OriginalSize     int64
	CompressedSize   int64
	CompressionRatio float64
	Quality          string
	PageCount        int
	Duration         time.Duration
}

// Compress stages the upload, validates it, runs the external tool and
// registers the resulting artifact. The staged upload is always removed
// before returning; on failure any partial output is removed as well.
func (s *CompressService) Compress(ctx context.Context, src io.Reader, filename, quality string) (*CompressResult, error) {
	profile := ghostscript.ResolveProfile(quality)
	safe := SanitizeFilename(filename)
	uploadID := uuid.New().String()

	uploadPath := filepath.Join(s.uploadDir, fmt.Sprintf("%s_%s", uploadID, safe))

	originalSize, err := s.stage(src, uploadPath)
	if err != nil {
		s.metrics.IncCompression(string(profile), "stage_error")
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	defer func() {
		if err := os.Remove(uploadPath); err != nil {
			s.log.Warn("failed to remove staged upload", "path", uploadPath, "error", err)
		}
	}()

	if err := s.inspector.Validate(uploadPath); err != nil {
		s.log.Info("rejected upload failing pdf validation", "filename", safe, "error", err)
		s.metrics.IncCompression(string(profile), "invalid")
		return nil, fmt.Errorf("%w: %s", ErrInvalidPDF, err)
	}

	pageCount, err := s.inspector.PageCount(uploadPath)
	if err != nil {
		// Page count is informational only; a failure here is not fatal
		s.log.Warn("failed to determine page count", "filename", safe, "error", err)
		pageCount = 0
	}

	outputPath := filepath.Join(s.compressedDir, fmt.Sprintf("compressed_%s_%s", uploadID, safe))

	start := time.Now()
	runErr := s.runner.Compress(ctx, uploadPath, outputPath, profile)
	duration := time.Since(start)
	s.metrics.ObserveCompressionDuration(string(profile), duration.Seconds())

	if runErr != nil {
		// Any partial output must be treated as invalid
		if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove partial output", "path", outputPath, "error", err)
		}
		s.metrics.IncCompression(string(profile), "tool_error")
		return nil, fmt.Errorf("compression failed: %w", runErr)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		s.metrics.IncCompression(string(profile), "tool_error")
		return nil, fmt.Errorf("compressed output missing: %w", err)
	}
	compressedSize := info.Size()

	artifact := &models.Artifact{
		OriginalFilename: safe,
		StoragePath:      outputPath,
		OriginalSize:     originalSize,
		CompressedSize:   compressedSize,
		Quality:          string(profile),
		PageCount:        pageCount,
		CreatedAt:        time.Now(),
	}
	downloadID := s.repo.Put(artifact)

	s.metrics.IncCompression(string(profile), "success")
	s.metrics.AddBytesProcessed(originalSize, compressedSize)

	s.log.Info("compression complete",
		"download_id", downloadID,
		"filename", safe,
		"quality", profile,
		"original_size", originalSize,
		"compressed_size", compressedSize,
		"pages", pageCount,
		"duration_ms", duration.Milliseconds(),
	)

	return &CompressResult{
		DownloadID:       downloadID,
		OriginalSize:     originalSize,
		CompressedSize:   compressedSize,
		CompressionRatio: artifact.CompressionRatio(),
		Quality:          string(profile),
		PageCount:        pageCount,
		Duration:         duration,
	}, nil
}

// ToolVersion reports the external tool's version for the health endpoint
func (s *CompressService) ToolVersion(ctx context.Context) (string, bool) {
	version, err := s.runner.Version(ctx)
	if err != nil {
		return "", false
	}
	return version, true
}

// stage copies the upload to a unique scratch path and returns its size.
// On failure the partially written file is removed before returning.
func (s *CompressService) stage(src io.Reader, path string) (int64, error) {
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.log.Warn("failed to remove partial upload", "path", path, "error", rmErr)
		}
		return 0, err
	}

	return n, nil
}
