package repository

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quickutil/pdfpress/cmd/pdfpress/models"
	"github.com/quickutil/pdfpress/common/logger"
)

// ArtifactRepository is a thread-safe in-memory registry of artifacts.
// It holds no durable state: the registry is expected to be lost on process
// restart, and the retention sweeper bounds its growth.
type ArtifactRepository struct {
	mu        sync.RWMutex
	artifacts map[string]*models.Artifact
	log       *logger.Logger
}

// NewArtifactRepository creates an empty registry
func NewArtifactRepository(log *logger.Logger) *ArtifactRepository {
	return &ArtifactRepository{
		artifacts: make(map[string]*models.Artifact),
		log:       log,
	}
}

// Put assigns a fresh unique identifier to the artifact, stores the record
// and returns the identifier. It performs no I/O: the caller must only
// register artifacts whose backing file is fully written.
func (r *ArtifactRepository) Put(artifact *models.Artifact) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	for {
		if _, exists := r.artifacts[id]; !exists {
			break
		}
		// Practically unreachable, but identifier uniqueness is an invariant
		id = uuid.New().String()
	}

	artifact.ID = id
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now()
	}
	r.artifacts[id] = artifact

	return id
}

// Get looks up an artifact by identifier. When the record's backing file no
// longer exists on disk the stale record is removed and the lookup reports
// not-found (self-healing).
func (r *ArtifactRepository) Get(id string) (*models.Artifact, bool) {
	r.mu.RLock()
	artifact, ok := r.artifacts[id]
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if _, err := os.Stat(artifact.StoragePath); err != nil {
		r.log.Warn("artifact file missing, purging stale record",
			"download_id", id,
			"path", artifact.StoragePath,
		)
		r.Delete(id)
		return nil, false
	}

	return artifact, true
}

// Delete removes a record if present; absent identifiers are a no-op
func (r *ArtifactRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.artifacts, id)
}

// ListExpired returns a snapshot of identifiers whose creation timestamp is
// older than now-ttl. The snapshot does not mutate the store and stays valid
// while concurrent puts and deletes proceed.
func (r *ArtifactRepository) ListExpired(now time.Time, ttl time.Duration) []string {
	cutoff := now.Add(-ttl)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var expired []string
	for id, artifact := range r.artifacts {
		if artifact.CreatedAt.Before(cutoff) {
			expired = append(expired, id)
		}
	}

	return expired
}

// Len returns the number of registered artifacts
func (r *ArtifactRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.artifacts)
}
