// Package service orchestrates URL classification, metadata resolution,
// alternative search and the fetch/cache/refetch pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/adampisula/musicdl-server/apperr"
	"github.com/adampisula/musicdl-server/cache"
	"github.com/adampisula/musicdl-server/core/utils"
	"github.com/adampisula/musicdl-server/logger"
	"github.com/adampisula/musicdl-server/model"
	"github.com/adampisula/musicdl-server/provider"
	"github.com/adampisula/musicdl-server/repository"
	"github.com/adampisula/musicdl-server/storage"
	"github.com/adampisula/musicdl-server/tagger"
)

// MetadataResult is resolved track metadata plus whether it is authoritative
// catalog data or inferred suggestions.
type MetadataResult struct {
	Metadata      model.TrackMetadata `json:"metadata"`
	IsSuggestions bool                `json:"is_suggestions"`
}

// FetchSource names the source URLs of a fetch request. The YouTube URL is
// the download target; the Spotify URL, when present, links the track to its
// canonical catalog entry.
type FetchSource struct {
	SpotifyURL string
	YoutubeURL string
}

// TrackService resolves music URLs to downloadable audio artifacts, treating
// stored artifacts as time-limited cache entries keyed by canonical source
// identifiers.
type TrackService struct {
	spotify    provider.MusicProvider
	youtube    provider.DownloadableMusicProvider
	soundcloud provider.DownloadableMusicProvider
	repo       repository.TrackRepository
	files      storage.FileStore
	metaCache  *cache.MetadataCache

	// fetchGroup coalesces concurrent fetches of the same provider id so
	// two simultaneous requests for an expired track run one download.
	fetchGroup singleflight.Group

	now     func() time.Time
	tagFile func(path string, metadata model.TrackMetadata) error
}

// NewTrackService wires the resolution service.
func NewTrackService(
	spotify provider.MusicProvider,
	youtube provider.DownloadableMusicProvider,
	soundcloud provider.DownloadableMusicProvider,
	repo repository.TrackRepository,
	files storage.FileStore,
	metaCache *cache.MetadataCache,
) *TrackService {
	return &TrackService{
		spotify:    spotify,
		youtube:    youtube,
		soundcloud: soundcloud,
		repo:       repo,
		files:      files,
		metaCache:  metaCache,
		now:        time.Now,
		tagFile:    tagger.WriteTags,
	}
}

// DetermineAction classifies a URL. Spotify links identify a catalog entry
// whose concrete download target still has to be chosen; YouTube and
// SoundCloud links identify a downloadable asset directly.
func (s *TrackService) DetermineAction(url string) model.Action {
	switch {
	case s.spotify.IsURLSupported(url):
		return model.ActionSelectSource
	case s.youtube.IsURLSupported(url):
		return model.ActionDownload
	case s.soundcloud.IsURLSupported(url):
		return model.ActionDownload
	default:
		return model.ActionUnknownURL
	}
}

// matchProvider returns the first provider recognizing the URL, in fixed
// priority order.
func (s *TrackService) matchProvider(url string) (provider.MusicProvider, error) {
	switch {
	case s.spotify.IsURLSupported(url):
		return s.spotify, nil
	case s.youtube.IsURLSupported(url):
		return s.youtube, nil
	case s.soundcloud.IsURLSupported(url):
		return s.soundcloud, nil
	default:
		return nil, apperr.ErrUnsupportedURL
	}
}

// GetMetadata resolves metadata for a URL with cache-first priority: a
// persisted track wins, then the provider (behind a short-lived cache).
// Metadata is flagged as suggestions unless it came from the store or the
// canonical provider.
func (s *TrackService) GetMetadata(ctx context.Context, url string) (MetadataResult, error) {
	matched, err := s.matchProvider(url)
	if err != nil {
		return MetadataResult{}, err
	}

	providerID, err := matched.GetProviderID(url)
	if err != nil {
		return MetadataResult{}, err
	}

	// Probe the store first: a miss is a signal to fall through, not an
	// error.
	track, err := s.repo.GetTrackByProviderID(ctx, providerID)
	if err == nil {
		return MetadataResult{Metadata: track.Metadata, IsSuggestions: false}, nil
	}
	if !errors.Is(err, apperr.ErrTrackNotFound) {
		return MetadataResult{}, err
	}

	isSuggestions := matched != s.spotify

	if cached, ok := s.metaCache.Get(ctx, providerID); ok {
		return MetadataResult{Metadata: cached, IsSuggestions: isSuggestions}, nil
	}

	metadata, err := matched.GetMetadata(ctx, url)
	if err != nil {
		return MetadataResult{}, err
	}
	s.metaCache.Set(ctx, providerID, metadata)

	return MetadataResult{Metadata: metadata, IsSuggestions: isSuggestions}, nil
}

// GetAlternatives resolves metadata for the URL and searches the downloadable
// catalogs for similar candidates.
func (s *TrackService) GetAlternatives(ctx context.Context, url string, preferExtended bool) (model.Links, error) {
	result, err := s.GetMetadata(ctx, url)
	if err != nil {
		return model.Links{}, err
	}

	youtubeLinks, err := s.youtube.Search(ctx, result.Metadata, preferExtended)
	if err != nil {
		return model.Links{}, err
	}

	soundcloudLinks, err := s.soundcloud.Search(ctx, result.Metadata, preferExtended)
	if err != nil {
		return model.Links{}, err
	}

	return model.Links{
		Youtube:    youtubeLinks,
		Soundcloud: soundcloudLinks,
	}, nil
}

// GetDownloadURL resolves a URL to a time-limited download URL for the stored
// artifact, refetching first when the latest stored generation expired.
func (s *TrackService) GetDownloadURL(ctx context.Context, url string) (string, error) {
	matched, err := s.matchProvider(url)
	if err != nil {
		return "", err
	}

	providerID, err := matched.GetProviderID(url)
	if err != nil {
		return "", err
	}

	track, err := s.repo.GetTrackByProviderID(ctx, providerID)
	if err != nil {
		return "", err
	}

	latest, ok := track.LatestFile()
	if !ok || latest.Expired(s.now()) {
		// The stored artifact is stale; run one refetch cycle reusing the
		// persisted metadata. A track without a downloadable source id
		// cannot be refetched and indicates corrupted persisted state.
		if track.Source.YoutubeID == "" {
			return "", fmt.Errorf("track %d: %w", track.ID, apperr.ErrSourceMissing)
		}

		logger.Info("Stored file expired, refetching",
			zap.Int64("trackId", track.ID),
			zap.String("youtubeId", track.Source.YoutubeID))

		source := FetchSource{YoutubeURL: provider.WatchURL(track.Source.YoutubeID)}
		if _, err := s.Fetch(ctx, source, track.Metadata); err != nil {
			return "", err
		}

		track, err = s.repo.GetTrackByProviderID(ctx, providerID)
		if err != nil {
			return "", err
		}
		latest, ok = track.LatestFile()
		if !ok {
			return "", fmt.Errorf("track %d has no file after refetch", track.ID)
		}
	}

	return s.files.GetDownloadURL(ctx, latest.ObjectID)
}

// Fetch downloads the audio behind the source, tags and uploads it, and
// persists the result: a new file generation on an existing track, or a new
// track. Concurrent fetches for the same video id are coalesced.
func (s *TrackService) Fetch(ctx context.Context, source FetchSource, metadata model.TrackMetadata) (*model.Track, error) {
	if source.YoutubeURL == "" {
		return nil, apperr.ErrUnsupportedURL
	}

	youtubeID, err := s.youtube.GetProviderID(source.YoutubeURL)
	if err != nil {
		return nil, err
	}

	track, err, _ := s.fetchGroup.Do(youtubeID, func() (any, error) {
		return s.fetch(ctx, source, youtubeID, metadata)
	})
	if err != nil {
		return nil, err
	}
	return track.(*model.Track), nil
}

func (s *TrackService) fetch(ctx context.Context, source FetchSource, youtubeID string, metadata model.TrackMetadata) (*model.Track, error) {
	tempPath, err := s.youtube.Download(ctx, source.YoutubeURL)
	if err != nil {
		return nil, err
	}
	// The temp file is removed on every exit path from here on.
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			logger.Warn("Failed to remove temp file",
				zap.String("path", tempPath), zap.Error(err))
		}
	}()

	if err := s.tagFile(tempPath, metadata); err != nil {
		return nil, err
	}

	checksum, err := utils.Sha1Checksum(tempPath)
	if err != nil {
		return nil, err
	}
	size, err := utils.FileSize(tempPath)
	if err != nil {
		return nil, err
	}
	extension := utils.FileExtension(tempPath)

	objectName := checksum + "." + extension
	objectID, err := s.files.Upload(ctx, tempPath, objectName, checksum)
	if err != nil {
		return nil, err
	}

	now := s.now()
	file := model.TrackFile{
		ObjectID:      objectID,
		Sha1Checksum:  checksum,
		FileExtension: extension,
		Size:          size,
		CreatedAt:     now,
		ExpiresAt:     now.Add(model.FileTTL),
	}

	spotifyID := ""
	if source.SpotifyURL != "" {
		spotifyID, err = s.spotify.GetProviderID(source.SpotifyURL)
		if err != nil {
			return nil, err
		}
	}

	existing, err := s.lookupExisting(ctx, youtubeID, spotifyID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		fileID, err := s.repo.AddFile(ctx, existing.ID, file)
		if err != nil {
			return nil, err
		}
		file.ID = fileID
		existing.Files = append(existing.Files, file)

		logger.Info("Appended file generation",
			zap.Int64("trackId", existing.ID),
			zap.String("objectId", objectID))

		return existing, nil
	}

	newTrack := &model.Track{
		Metadata: metadata,
		Source: model.TrackSource{
			SpotifyID: spotifyID,
			YoutubeID: youtubeID,
		},
		Files: []model.TrackFile{file},
	}
	trackID, err := s.repo.AddTrack(ctx, newTrack)
	if err != nil {
		return nil, err
	}
	newTrack.ID = trackID

	logger.Info("Created track",
		zap.Int64("trackId", trackID),
		zap.String("youtubeId", youtubeID),
		zap.String("objectId", objectID))

	return newTrack, nil
}

// lookupExisting probes the store by the downloadable id first, then by the
// canonical id, returning nil when neither matches.
func (s *TrackService) lookupExisting(ctx context.Context, youtubeID, spotifyID string) (*model.Track, error) {
	track, err := s.repo.GetTrackByProviderID(ctx, youtubeID)
	if err == nil {
		return track, nil
	}
	if !errors.Is(err, apperr.ErrTrackNotFound) {
		return nil, err
	}

	if spotifyID == "" {
		return nil, nil
	}

	track, err = s.repo.GetTrackByProviderID(ctx, spotifyID)
	if err == nil {
		return track, nil
	}
	if !errors.Is(err, apperr.ErrTrackNotFound) {
		return nil, err
	}
	return nil, nil
}
