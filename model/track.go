package model

import "time"

// FileTTL is how long a stored audio artifact stays authoritative before a
// download request triggers a refetch.
const FileTTL = 29 * 24 * time.Hour

// TrackMetadata describes a track as reported by its canonical provider.
// Once attached to a persisted Track it is never regenerated; refetches reuse it.
type TrackMetadata struct {
	Artists         []string `json:"artists"` // ordered, first entry is the primary artist
	Title           string   `json:"title"`
	IsRemix         bool     `json:"is_remix"`
	IsExtended      bool     `json:"is_extended"`
	DurationSeconds int      `json:"duration_seconds"`
}

// PrimaryArtist returns the first artist, or "" for empty metadata.
func (m TrackMetadata) PrimaryArtist() string {
	if len(m.Artists) == 0 {
		return ""
	}
	return m.Artists[0]
}

// TrackSource holds the canonical per-provider identifiers of a track.
// Cache lookups are keyed by provider id: a lookup matches a track carrying
// that id in either field.
type TrackSource struct {
	SpotifyID string `json:"spotify_id,omitempty"`
	YoutubeID string `json:"youtube_id,omitempty"`
}

// Empty reports whether the source carries no identifier at all. A persisted
// track must never have an empty source.
func (s TrackSource) Empty() bool {
	return s.SpotifyID == "" && s.YoutubeID == ""
}

// TrackFile is one stored-artifact generation. Files are append-only: a
// refetch creates a new generation instead of mutating an old one.
type TrackFile struct {
	ID            int64     `json:"id"`
	ObjectID      string    `json:"object_id"`
	Sha1Checksum  string    `json:"sha1_checksum"`
	FileExtension string    `json:"file_extension"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the generation is past its TTL at the given instant.
func (f TrackFile) Expired(now time.Time) bool {
	return now.After(f.ExpiresAt)
}

// Track is the aggregate: identity, immutable metadata, source ids and the
// history of stored file generations.
type Track struct {
	ID       int64         `json:"id"`
	Metadata TrackMetadata `json:"metadata"`
	Source   TrackSource   `json:"source"`
	Files    []TrackFile   `json:"files"` // ordered by creation time, oldest first
}

// LatestFile returns the most recently created file generation, which is the
// only one authoritative for downloads. Returns false if no generation exists.
func (t *Track) LatestFile() (TrackFile, bool) {
	if len(t.Files) == 0 {
		return TrackFile{}, false
	}
	latest := t.Files[0]
	for _, f := range t.Files[1:] {
		if f.CreatedAt.After(latest.CreatedAt) {
			latest = f
		}
	}
	return latest, true
}
