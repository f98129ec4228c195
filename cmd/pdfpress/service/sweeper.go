package service

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/quickutil/pdfpress/cmd/pdfpress/repository"
	"github.com/quickutil/pdfpress/common/logger"
	"github.com/quickutil/pdfpress/common/metrics"
)

// Sweeper reclaims disk and memory for expired artifacts. One instance runs
// for the lifetime of the process as fire-and-forget background work: no
// caller waits on it and no failure propagates out of a cycle.
type Sweeper struct {
	repo          *repository.ArtifactRepository
	uploadDir     string
	compressedDir string
	ttl           time.Duration
	interval      time.Duration
	metrics       metrics.Metrics
	log           *logger.Logger
}

// NewSweeper creates a sweeper over the given scratch directories and store
func NewSweeper(
	repo *repository.ArtifactRepository,
	uploadDir, compressedDir string,
	ttl, interval time.Duration,
	m metrics.Metrics,
	log *logger.Logger,
) *Sweeper {
	return &Sweeper{
		repo:          repo,
		uploadDir:     uploadDir,
		compressedDir: compressedDir,
		ttl:           ttl,
		interval:      interval,
		metrics:       m,
		log:           log,
	}
}

// Start launches the background sweep loop. It is started once at process
// startup; cancellation of ctx stops it (best-effort, process exit reclaims
// scratch directories in the worst case).
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.log.Info("retention sweeper started",
			"ttl", s.ttl.String(),
			"interval", s.interval.String(),
		)

		for {
			select {
			case <-ctx.Done():
				s.log.Info("retention sweeper stopped")
				return
			case now := <-ticker.C:
				s.SweepOnce(now)
			}
		}
	}()
}

// SweepOnce runs a single sweep cycle. Individual deletion failures are
// logged and skipped; the remainder of the cycle always proceeds.
func (s *Sweeper) SweepOnce(now time.Time) {
	cutoff := now.Add(-s.ttl)

	// Directory scans run independently of the store: they catch files that
	// were staged but never registered (e.g. a crash mid-transformation).
	s.sweepDir(s.uploadDir, cutoff)
	s.sweepDir(s.compressedDir, cutoff)

	expired := s.repo.ListExpired(now, s.ttl)
	for _, id := range expired {
		artifact, ok := s.repo.Get(id)
		if !ok {
			// Get already purged the stale record
			continue
		}

		if err := os.Remove(artifact.StoragePath); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove expired artifact file",
				"download_id", id,
				"path", artifact.StoragePath,
				"error", err,
			)
		}

		s.repo.Delete(id)
		s.metrics.IncSweepDeleted("artifact")

		s.log.Info("expired artifact removed",
			"download_id", id,
			"age", now.Sub(artifact.CreatedAt).String(),
		)
	}
}

// sweepDir deletes regular files under dir whose mtime is older than cutoff
func (s *Sweeper) sweepDir(dir string, cutoff time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Warn("failed to scan scratch directory", "dir", dir, "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.log.Warn("failed to stat scratch file", "name", entry.Name(), "error", err)
			continue
		}

		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove stale scratch file", "path", path, "error", err)
			continue
		}

		s.metrics.IncSweepDeleted("scratch")
		s.log.Debug("stale scratch file removed", "path", path)
	}
}
