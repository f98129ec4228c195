package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickutil/pdfpress/cmd/pdfpress/repository"
	"github.com/quickutil/pdfpress/common/bootstrap"
)

// DownloadHandler serves compressed artifacts by identifier
type DownloadHandler struct {
	components *bootstrap.Components
	repo       *repository.ArtifactRepository
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(components *bootstrap.Components, repo *repository.ArtifactRepository) *DownloadHandler {
	return &DownloadHandler{
		components: components,
		repo:       repo,
	}
}

// Download streams an artifact back as an attachment. Unknown, expired and
// vanished-on-disk identifiers all surface as the same not-found result: the
// sweeper may legitimately reclaim an artifact between upload and download.
// GET /download/:id
func (h *DownloadHandler) Download(c echo.Context) error {
	id := c.Param("id")

	artifact, ok := h.repo.Get(id)
	if !ok {
		h.components.Metrics.IncDownload("not_found")
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "File not found or expired",
		})
	}

	h.components.Metrics.IncDownload("success")
	h.components.Logger.Info("serving artifact",
		"download_id", id,
		"filename", artifact.DownloadName(),
		"size", artifact.CompressedSize,
	)

	return c.Attachment(artifact.StoragePath, artifact.DownloadName())
}
