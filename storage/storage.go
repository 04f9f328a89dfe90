// Package storage provides durable blob storage for fetched audio artifacts.
package storage

import "context"

// FileStore is the capability the track service needs from blob storage:
// upload a local file and resolve an object id to a time-limited download URL.
type FileStore interface {
	// Upload stores the file at localPath under objectName and returns the
	// opaque object id. The checksum is attached for integrity and future
	// dedup.
	Upload(ctx context.Context, localPath, objectName, sha1Checksum string) (string, error)

	// GetDownloadURL resolves an object id to a presigned download URL.
	// The URL carries its own provider-side expiry, separate from the
	// stored file generation's TTL.
	GetDownloadURL(ctx context.Context, objectID string) (string, error)
}
