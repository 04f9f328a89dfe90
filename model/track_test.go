package model

import (
	"testing"
	"time"
)

func TestLatestFile(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		files        []TrackFile
		wantObjectID string
		wantOK       bool
	}{
		{
			name:   "no files",
			files:  nil,
			wantOK: false,
		},
		{
			name: "single file",
			files: []TrackFile{
				{ObjectID: "a", CreatedAt: base},
			},
			wantObjectID: "a",
			wantOK:       true,
		},
		{
			name: "latest generation wins regardless of slice order",
			files: []TrackFile{
				{ObjectID: "new", CreatedAt: base.Add(48 * time.Hour)},
				{ObjectID: "old", CreatedAt: base},
				{ObjectID: "mid", CreatedAt: base.Add(24 * time.Hour)},
			},
			wantObjectID: "new",
			wantOK:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := Track{Files: tt.files}
			latest, ok := track.LatestFile()
			if ok != tt.wantOK {
				t.Fatalf("LatestFile() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && latest.ObjectID != tt.wantObjectID {
				t.Errorf("LatestFile() object = %q, want %q", latest.ObjectID, tt.wantObjectID)
			}
		})
	}
}

func TestTrackFileExpired(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	file := TrackFile{
		CreatedAt: created,
		ExpiresAt: created.Add(FileTTL),
	}

	if file.Expired(created.Add(FileTTL - time.Second)) {
		t.Error("file expired before its TTL elapsed")
	}
	if file.Expired(file.ExpiresAt) {
		t.Error("file expired exactly at ExpiresAt; expiry should be strict")
	}
	if !file.Expired(created.Add(FileTTL + time.Second)) {
		t.Error("file not expired after its TTL elapsed")
	}
}

func TestTrackSourceEmpty(t *testing.T) {
	if !(TrackSource{}).Empty() {
		t.Error("zero source should be empty")
	}
	if (TrackSource{YoutubeID: "abc"}).Empty() {
		t.Error("source with youtube id should not be empty")
	}
}

func TestPrimaryArtist(t *testing.T) {
	if got := (TrackMetadata{}).PrimaryArtist(); got != "" {
		t.Errorf("PrimaryArtist() on empty metadata = %q, want empty", got)
	}
	meta := TrackMetadata{Artists: []string{"First", "Second"}}
	if got := meta.PrimaryArtist(); got != "First" {
		t.Errorf("PrimaryArtist() = %q, want First", got)
	}
}
