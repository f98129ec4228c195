package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickutil/pdfpress/cmd/pdfpress/models"
)

func newDownloadContext(id string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest("GET", "/download/"+id, nil)
	rec := httptest.NewRecorder()

	e := echo.New()
	c := e.NewContext(req, rec)
	c.SetPath("/download/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestDownloadUnknownID(t *testing.T) {
	env := newTestEnv(t, &stubRunner{output: []byte("out")})
	h := NewDownloadHandler(env.components, env.repo)

	c, rec := newDownloadContext("unknown-id")

	require.NoError(t, h.Download(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, "File not found or expired", body["error"])
}

func TestDownloadStreamsArtifact(t *testing.T) {
	env := newTestEnv(t, &stubRunner{output: []byte("out")})
	h := NewDownloadHandler(env.components, env.repo)

	content := []byte("compressed pdf bytes")
	path := filepath.Join(env.compressedDir, "compressed_abc_report.pdf")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	id := env.repo.Put(&models.Artifact{
		OriginalFilename: "report.pdf",
		StoragePath:      path,
		OriginalSize:     int64(len(content)) * 4,
		CompressedSize:   int64(len(content)),
		CreatedAt:        time.Now(),
	})

	c, rec := newDownloadContext(id)

	require.NoError(t, h.Download(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, content, rec.Body.Bytes(), "served bytes must match the generated file")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), `filename="compressed_report.pdf"`)
}

func TestDownloadAfterFileVanished(t *testing.T) {
	// The sweeper may reclaim an artifact between upload and download; that
	// surfaces as a plain not-found, not an error
	env := newTestEnv(t, &stubRunner{output: []byte("out")})
	h := NewDownloadHandler(env.components, env.repo)

	path := filepath.Join(env.compressedDir, "compressed_gone.pdf")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	id := env.repo.Put(&models.Artifact{
		OriginalFilename: "gone.pdf",
		StoragePath:      path,
		CreatedAt:        time.Now(),
	})
	require.NoError(t, os.Remove(path))

	c, rec := newDownloadContext(id)

	require.NoError(t, h.Download(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, env.repo.Len(), "stale record must be purged by the lookup")
}
