package models

import (
	"time"
)

// Artifact represents one generated downloadable output and its metadata.
// Records are immutable after registration; the ID is assigned by the
// repository and is unique for the lifetime of the process.
type Artifact struct {
	// Unique download identifier (UUID v4), assigned at registration
	ID string `json:"download_id"`

	// Original client-supplied filename, sanitized; used only for the
	// suggested download name
	OriginalFilename string `json:"original_filename"`

	// Absolute path of the generated file on scratch storage. A path is
	// never shared between two identifiers.
	StoragePath string `json:"-"`

	// Byte counts, both >= 0
	OriginalSize   int64 `json:"original_size"`
	CompressedSize int64 `json:"compressed_size"`

	// Quality profile the file was generated with
	Quality string `json:"quality"`

	// Page count of the source document (0 when unknown)
	PageCount int `json:"page_count"`

	// Wall-clock time of registration
	CreatedAt time.Time `json:"created_at"`
}

// CompressionRatio returns the size reduction as a percentage in [0, 100].
// A zero-byte original yields 0 rather than a division fault, and outputs
// larger than the input clamp to 0.
func (a *Artifact) CompressionRatio() float64 {
	if a.OriginalSize <= 0 {
		return 0
	}
	ratio := float64(a.OriginalSize-a.CompressedSize) / float64(a.OriginalSize) * 100
	if ratio < 0 {
		return 0
	}
	if ratio > 100 {
		return 100
	}
	return ratio
}

// DownloadName returns the attachment filename suggested to the client
func (a *Artifact) DownloadName() string {
	return "compressed_" + a.OriginalFilename
}

// ExpiresAt returns the instant the artifact becomes eligible for sweeping
func (a *Artifact) ExpiresAt(ttl time.Duration) time.Time {
	return a.CreatedAt.Add(ttl)
}
