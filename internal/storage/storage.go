package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ObjectStorage stores generated files (workout exports) and hands out
// temporary download links for them.
type ObjectStorage interface {
	// PutObject uploads body under objectKey, replacing any existing object.
	PutObject(ctx context.Context, objectKey, contentType string, body []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
