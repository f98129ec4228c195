package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickutil/pdfpress/cmd/pdfpress/models"
	"github.com/quickutil/pdfpress/common/logger"
)

func testLogger() *logger.Logger {
	return logger.New("error", "json")
}

// writeBackingFile creates a real file so Get's existence check passes
func writeBackingFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("pdf bytes"), 0o644))
	return path
}

func TestPutAssignsUniqueIDs(t *testing.T) {
	repo := NewArtifactRepository(testLogger())
	dir := t.TempDir()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := repo.Put(&models.Artifact{
			StoragePath: writeBackingFile(t, dir, fmt.Sprintf("f%d.pdf", i)),
		})
		assert.False(t, seen[id], "identifier %s was reused", id)
		seen[id] = true
	}

	assert.Equal(t, 100, repo.Len())
}

func TestGetReturnsRegisteredArtifact(t *testing.T) {
	repo := NewArtifactRepository(testLogger())
	path := writeBackingFile(t, t.TempDir(), "out.pdf")

	id := repo.Put(&models.Artifact{
		OriginalFilename: "doc.pdf",
		StoragePath:      path,
		OriginalSize:     1000,
		CompressedSize:   400,
	})

	got, ok := repo.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, path, got.StoragePath)
	assert.Equal(t, "doc.pdf", got.OriginalFilename)
	assert.False(t, got.CreatedAt.IsZero(), "registration must stamp a creation time")
}

func TestGetUnknownID(t *testing.T) {
	repo := NewArtifactRepository(testLogger())

	_, ok := repo.Get("unknown-id")
	assert.False(t, ok)
}

func TestGetSelfHealsWhenFileVanished(t *testing.T) {
	repo := NewArtifactRepository(testLogger())
	path := writeBackingFile(t, t.TempDir(), "out.pdf")

	id := repo.Put(&models.Artifact{StoragePath: path})
	require.NoError(t, os.Remove(path))

	_, ok := repo.Get(id)
	assert.False(t, ok, "lookup must report not-found once the file is gone")
	assert.Equal(t, 0, repo.Len(), "stale record must be purged")

	// And again: the purge is idempotent
	_, ok = repo.Get(id)
	assert.False(t, ok)
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := NewArtifactRepository(testLogger())
	path := writeBackingFile(t, t.TempDir(), "out.pdf")

	id := repo.Put(&models.Artifact{StoragePath: path})
	repo.Delete(id)
	repo.Delete(id) // absent: no-op, no panic
	repo.Delete("never-existed")

	assert.Equal(t, 0, repo.Len())
}

func TestListExpired(t *testing.T) {
	repo := NewArtifactRepository(testLogger())
	dir := t.TempDir()
	now := time.Now()

	oldID := repo.Put(&models.Artifact{
		StoragePath: writeBackingFile(t, dir, "old.pdf"),
		CreatedAt:   now.Add(-2 * time.Hour),
	})
	freshID := repo.Put(&models.Artifact{
		StoragePath: writeBackingFile(t, dir, "fresh.pdf"),
		CreatedAt:   now.Add(-time.Minute),
	})

	expired := repo.ListExpired(now, time.Hour)
	require.Len(t, expired, 1)
	assert.Equal(t, oldID, expired[0])

	// The snapshot must not mutate the store
	assert.Equal(t, 2, repo.Len())

	_, ok := repo.Get(freshID)
	assert.True(t, ok)
}

func TestConcurrentPutsKeepIDsUnique(t *testing.T) {
	repo := NewArtifactRepository(testLogger())
	dir := t.TempDir()

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	ids := make(chan string, workers*perWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- repo.Put(&models.Artifact{
					StoragePath: filepath.Join(dir, "shared"),
				})
			}
		}(w)
	}

	// Concurrent readers and expiry scans must not race with the puts
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			repo.ListExpired(time.Now(), time.Hour)
			repo.Len()
		}
	}()

	wg.Wait()
	<-done
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "identifier %s issued twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
}
