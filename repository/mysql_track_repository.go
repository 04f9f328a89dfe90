package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/adampisula/musicdl-server/apperr"
	"github.com/adampisula/musicdl-server/model"
)

type artistEntity struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:255;uniqueIndex"`
}

func (artistEntity) TableName() string { return "artists" }

type metadataEntity struct {
	ID              int64 `gorm:"primaryKey;autoIncrement"`
	Title           string
	IsRemix         bool
	IsExtended      bool
	DurationSeconds int
}

func (metadataEntity) TableName() string { return "metadatas" }

// metadataArtistEntity links artists to metadata preserving display order.
type metadataArtistEntity struct {
	MetadataID  int64 `gorm:"primaryKey;autoIncrement:false"`
	ArtistID    int64 `gorm:"primaryKey;autoIncrement:false"`
	ArtistOrder int
}

func (metadataArtistEntity) TableName() string { return "metadatas_artists" }

type sourceEntity struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	SpotifyID *string `gorm:"size:64;index"`
	YoutubeID *string `gorm:"size:64;index"`
}

func (sourceEntity) TableName() string { return "sources" }

type trackEntity struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	MetadataID int64
	SourceID   int64
}

func (trackEntity) TableName() string { return "tracks" }

type fileEntity struct {
	ID            int64 `gorm:"primaryKey;autoIncrement"`
	TrackID       int64 `gorm:"index"`
	ObjectID      string
	Sha1Checksum  string `gorm:"size:40"`
	FileExtension string `gorm:"size:16"`
	Size          int64
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

func (fileEntity) TableName() string { return "files" }

// AutoMigrate creates or updates the track schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&artistEntity{},
		&metadataEntity{},
		&metadataArtistEntity{},
		&sourceEntity{},
		&trackEntity{},
		&fileEntity{},
	)
}

// mysqlTrackRepository implements TrackRepository on top of GORM/MySQL.
type mysqlTrackRepository struct {
	db *gorm.DB
}

// NewMySQLTrackRepository creates a new track repository over the given
// database handle.
func NewMySQLTrackRepository(db *gorm.DB) TrackRepository {
	return &mysqlTrackRepository{db: db}
}

// GetTrackByProviderID finds a track carrying the canonical id in either
// source field and assembles the full aggregate.
func (r *mysqlTrackRepository) GetTrackByProviderID(ctx context.Context, providerID string) (*model.Track, error) {
	var track trackEntity
	err := r.db.WithContext(ctx).
		Joins("JOIN sources ON sources.id = tracks.source_id").
		Where("sources.spotify_id = ? OR sources.youtube_id = ?", providerID, providerID).
		First(&track).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up track by provider id: %w", err)
	}

	var source sourceEntity
	if err := r.db.WithContext(ctx).First(&source, track.SourceID).Error; err != nil {
		return nil, fmt.Errorf("failed to load track source: %w", err)
	}

	var metadata metadataEntity
	if err := r.db.WithContext(ctx).First(&metadata, track.MetadataID).Error; err != nil {
		return nil, fmt.Errorf("failed to load track metadata: %w", err)
	}

	var artists []artistEntity
	err = r.db.WithContext(ctx).
		Joins("JOIN metadatas_artists ON metadatas_artists.artist_id = artists.id").
		Where("metadatas_artists.metadata_id = ?", metadata.ID).
		Order("metadatas_artists.artist_order ASC").
		Find(&artists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load track artists: %w", err)
	}

	var files []fileEntity
	err = r.db.WithContext(ctx).
		Where("track_id = ?", track.ID).
		Order("created_at ASC").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load track files: %w", err)
	}

	artistNames := make([]string, 0, len(artists))
	for _, a := range artists {
		artistNames = append(artistNames, a.Name)
	}

	trackFiles := make([]model.TrackFile, 0, len(files))
	for _, f := range files {
		trackFiles = append(trackFiles, model.TrackFile{
			ID:            f.ID,
			ObjectID:      f.ObjectID,
			Sha1Checksum:  f.Sha1Checksum,
			FileExtension: f.FileExtension,
			Size:          f.Size,
			CreatedAt:     f.CreatedAt,
			ExpiresAt:     f.ExpiresAt,
		})
	}

	return &model.Track{
		ID: track.ID,
		Metadata: model.TrackMetadata{
			Artists:         artistNames,
			Title:           metadata.Title,
			IsRemix:         metadata.IsRemix,
			IsExtended:      metadata.IsExtended,
			DurationSeconds: metadata.DurationSeconds,
		},
		Source: model.TrackSource{
			SpotifyID: stringValue(source.SpotifyID),
			YoutubeID: stringValue(source.YoutubeID),
		},
		Files: trackFiles,
	}, nil
}

// AddTrack persists the whole aggregate in one transaction.
func (r *mysqlTrackRepository) AddTrack(ctx context.Context, track *model.Track) (int64, error) {
	var trackID int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		metadata := metadataEntity{
			Title:           track.Metadata.Title,
			IsRemix:         track.Metadata.IsRemix,
			IsExtended:      track.Metadata.IsExtended,
			DurationSeconds: track.Metadata.DurationSeconds,
		}
		if err := tx.Create(&metadata).Error; err != nil {
			return fmt.Errorf("failed to create metadata: %w", err)
		}

		for i, name := range track.Metadata.Artists {
			artist := artistEntity{Name: name}
			if err := tx.Where(artistEntity{Name: name}).FirstOrCreate(&artist).Error; err != nil {
				return fmt.Errorf("failed to create artist %q: %w", name, err)
			}
			link := metadataArtistEntity{
				MetadataID:  metadata.ID,
				ArtistID:    artist.ID,
				ArtistOrder: i,
			}
			if err := tx.Create(&link).Error; err != nil {
				return fmt.Errorf("failed to link artist %q: %w", name, err)
			}
		}

		source := sourceEntity{
			SpotifyID: stringPointer(track.Source.SpotifyID),
			YoutubeID: stringPointer(track.Source.YoutubeID),
		}
		if err := tx.Create(&source).Error; err != nil {
			return fmt.Errorf("failed to create source: %w", err)
		}

		entity := trackEntity{
			MetadataID: metadata.ID,
			SourceID:   source.ID,
		}
		if err := tx.Create(&entity).Error; err != nil {
			return fmt.Errorf("failed to create track: %w", err)
		}
		trackID = entity.ID

		for _, file := range track.Files {
			if err := createFile(tx, entity.ID, file); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return trackID, nil
}

// AddFile appends a new file generation to an existing track.
func (r *mysqlTrackRepository) AddFile(ctx context.Context, trackID int64, file model.TrackFile) (int64, error) {
	entity := fileEntity{
		TrackID:       trackID,
		ObjectID:      file.ObjectID,
		Sha1Checksum:  file.Sha1Checksum,
		FileExtension: file.FileExtension,
		Size:          file.Size,
		CreatedAt:     file.CreatedAt,
		ExpiresAt:     file.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return 0, fmt.Errorf("failed to add file to track %d: %w", trackID, err)
	}
	return entity.ID, nil
}

func createFile(tx *gorm.DB, trackID int64, file model.TrackFile) error {
	entity := fileEntity{
		TrackID:       trackID,
		ObjectID:      file.ObjectID,
		Sha1Checksum:  file.Sha1Checksum,
		FileExtension: file.FileExtension,
		Size:          file.Size,
		CreatedAt:     file.CreatedAt,
		ExpiresAt:     file.ExpiresAt,
	}
	if err := tx.Create(&entity).Error; err != nil {
		return fmt.Errorf("failed to create file for track %d: %w", trackID, err)
	}
	return nil
}

func stringPointer(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
