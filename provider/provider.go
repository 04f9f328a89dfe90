// Package provider implements URL classification, metadata resolution and
// alternative-source search for the supported music services.
package provider

import (
	"context"

	"github.com/adampisula/musicdl-server/model"
)

// MusicProvider is the capability shared by every supported service: recognize
// a URL, extract its canonical identifier and resolve track metadata.
type MusicProvider interface {
	// IsURLSupported is a pure syntactic check against the provider's URL
	// shapes. It never errors and has no side effects.
	IsURLSupported(url string) bool

	// GetProviderID extracts the stable identifier embedded in the URL.
	// Returns apperr.ErrUnsupportedURL when IsURLSupported would be false.
	GetProviderID(url string) (string, error)

	// GetMetadata resolves track metadata for the URL. Authoritative for
	// Spotify; a contractually empty placeholder for providers without a
	// first-party metadata API.
	GetMetadata(ctx context.Context, url string) (model.TrackMetadata, error)
}

// DownloadableMusicProvider additionally retrieves raw audio and searches its
// catalog for candidates matching target metadata.
type DownloadableMusicProvider interface {
	MusicProvider

	// Download retrieves the audio behind the URL into a local temporary
	// file and returns its path. The caller owns deleting the file.
	Download(ctx context.Context, url string) (string, error)

	// Search returns candidate links for the target metadata, ordered by
	// descending similarity.
	Search(ctx context.Context, target model.TrackMetadata, preferExtended bool) ([]model.Link, error)
}
