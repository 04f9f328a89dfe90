package provider

import (
	"context"
	"errors"
	"regexp"

	"github.com/adampisula/musicdl-server/apperr"
	"github.com/adampisula/musicdl-server/model"
)

var soundcloudURLRegex = regexp.MustCompile(`^(?:(https?)://)?(?:(?:www|m|on)\.)?(soundcloud\.com|snd\.sc)/(.+)$`)

// SoundCloudProvider recognizes SoundCloud links so classification stays
// total, but its download and search paths are not implemented yet.
type SoundCloudProvider struct{}

// NewSoundCloudProvider creates the SoundCloud placeholder provider.
func NewSoundCloudProvider() *SoundCloudProvider {
	return &SoundCloudProvider{}
}

// IsURLSupported reports whether the URL is a SoundCloud link.
func (p *SoundCloudProvider) IsURLSupported(rawURL string) bool {
	return soundcloudURLRegex.MatchString(rawURL)
}

// GetProviderID extracts the track path from the URL.
func (p *SoundCloudProvider) GetProviderID(rawURL string) (string, error) {
	matches := soundcloudURLRegex.FindStringSubmatch(rawURL)
	if matches == nil {
		return "", apperr.ErrUnsupportedURL
	}
	return matches[3], nil
}

// GetMetadata returns placeholder metadata; SoundCloud metadata resolution is
// not implemented.
func (p *SoundCloudProvider) GetMetadata(ctx context.Context, rawURL string) (model.TrackMetadata, error) {
	return model.TrackMetadata{
		Artists:         []string{""},
		Title:           "",
		IsRemix:         false,
		DurationSeconds: 0,
	}, nil
}

// Download is not implemented for SoundCloud.
func (p *SoundCloudProvider) Download(ctx context.Context, rawURL string) (string, error) {
	return "", errors.New("soundcloud download not implemented")
}

// Search returns no candidates; the SoundCloud catalog is not searched yet.
func (p *SoundCloudProvider) Search(ctx context.Context, target model.TrackMetadata, preferExtended bool) ([]model.Link, error) {
	return []model.Link{}, nil
}
