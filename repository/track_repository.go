// Package repository persists tracks, their source identifiers and the
// append-only history of stored file generations.
package repository

import (
	"context"

	"github.com/adampisula/musicdl-server/model"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	// GetTrackByProviderID finds the track whose source carries the given
	// canonical id in either the spotify or the youtube field. Returns
	// apperr.ErrTrackNotFound on a miss.
	GetTrackByProviderID(ctx context.Context, providerID string) (*model.Track, error)

	// AddTrack persists a new track with its metadata, source ids and
	// initial file generations, returning the track id.
	AddTrack(ctx context.Context, track *model.Track) (int64, error)

	// AddFile appends a new file generation to an existing track.
	AddFile(ctx context.Context, trackID int64, file model.TrackFile) (int64, error)
}
