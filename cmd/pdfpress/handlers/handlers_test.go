package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/quickutil/pdfpress/cmd/pdfpress/repository"
	"github.com/quickutil/pdfpress/cmd/pdfpress/service"
	"github.com/quickutil/pdfpress/common/bootstrap"
	"github.com/quickutil/pdfpress/common/config"
	"github.com/quickutil/pdfpress/common/ghostscript"
	"github.com/quickutil/pdfpress/common/logger"
	"github.com/quickutil/pdfpress/common/metrics"
)

// stubRunner fakes the external tool for handler tests
type stubRunner struct {
	output []byte
	err    error
}

func (r *stubRunner) Compress(ctx context.Context, inputPath, outputPath string, profile ghostscript.Profile) error {
	if r.err != nil {
		return r.err
	}
	return os.WriteFile(outputPath, r.output, 0o644)
}

func (r *stubRunner) Version(ctx context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "10.02.1", nil
}

func (r *stubRunner) Available(ctx context.Context) bool {
	return r.err == nil
}

// stubInspector accepts everything
type stubInspector struct {
	validateErr error
	pages       int
}

func (i *stubInspector) Validate(path string) error         { return i.validateErr }
func (i *stubInspector) PageCount(path string) (int, error) { return i.pages, nil }

type testEnv struct {
	components    *bootstrap.Components
	repo          *repository.ArtifactRepository
	compressSvc   *service.CompressService
	uploadDir     string
	compressedDir string
}

func newTestEnv(t *testing.T, runner service.Runner) *testEnv {
	t.Helper()

	uploadDir := t.TempDir()
	compressedDir := t.TempDir()

	cfg := &config.Config{
		Service: config.ServiceConfig{
			Name:    "pdfpress",
			Version: "2.0.0",
			Port:    5000,
		},
		Storage: config.StorageConfig{
			UploadDir:      uploadDir,
			CompressedDir:  compressedDir,
			MaxUploadBytes: 1 << 20,
			RetentionTTL:   time.Hour,
			SweepInterval:  time.Hour,
		},
	}
	log := logger.New("error", "json")

	components := &bootstrap.Components{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics.Noop{},
	}

	repo := repository.NewArtifactRepository(log)
	svc := service.NewCompressService(repo, runner, &stubInspector{pages: 1}, uploadDir, compressedDir, metrics.Noop{}, log)

	return &testEnv{
		components:    components,
		repo:          repo,
		compressSvc:   svc,
		uploadDir:     uploadDir,
		compressedDir: compressedDir,
	}
}

// multipartBody builds a multipart form with one file field and optional
// extra form values
func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(content))
		require.NoError(t, err)
	}

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func newUploadContext(t *testing.T, path, filename string, content []byte, fields map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	body, contentType := multipartBody(t, filename, content, fields)
	req := httptest.NewRequest("POST", path, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()

	e := echo.New()
	return e.NewContext(req, rec), rec
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}
