// Package storage provides the object storage areas the application uses:
// an intake area for raw uploads (with a quarantine namespace) and a
// published area for watermarked assets and signature images.
package storage

import (
	"context"
	"time"
)

// Bucket is one logical storage area. Paths are relative to the area root.
type Bucket interface {
	Download(ctx context.Context, path string) ([]byte, error)
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Move(ctx context.Context, from, to string) error
	Delete(ctx context.Context, path string) error
}

// Signer issues short-lived URLs so clients move bytes directly to and from
// the storage provider.
type Signer interface {
	SignedUploadURL(ctx context.Context, path, contentType string, ttl time.Duration) (string, error)
	SignedDownloadURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// SigningBucket is a Bucket that can also issue signed URLs.
type SigningBucket interface {
	Bucket
	Signer
}

const (
	QuarantinePrefix = "quarantine/"
	ProcessedPrefix  = "processed/"
	SignaturePrefix  = "signatures/"
)

// QuarantinePath is where a rejected upload is relocated within the intake area.
func QuarantinePath(path string) string {
	return QuarantinePrefix + path
}

// ProcessedPath is where the watermarked copy of an upload lives in the published area.
func ProcessedPath(path string) string {
	return ProcessedPrefix + path
}
