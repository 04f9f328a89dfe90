package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/adampisula/musicdl-server/config"
	"github.com/adampisula/musicdl-server/logger"
)

// presignedURLExpiry is the lifetime of generated download URLs. Seven days
// is the longest MinIO allows for presigned requests.
const presignedURLExpiry = 7 * 24 * time.Hour

// MinioStore implements FileStore on a MinIO (S3-compatible) bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to MinIO and makes sure the configured bucket
// exists.
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("Created MinIO bucket", zap.String("bucket", cfg.MinioBucket))
	}

	return &MinioStore{client: client, bucket: cfg.MinioBucket}, nil
}

// Upload stores the local file under objectName and returns the object id.
func (s *MinioStore) Upload(ctx context.Context, localPath, objectName, sha1Checksum string) (string, error) {
	opts := minio.PutObjectOptions{
		ContentType: "audio/mpeg",
		UserMetadata: map[string]string{
			"Sha1-Checksum": sha1Checksum,
		},
	}

	info, err := s.client.FPutObject(ctx, s.bucket, objectName, localPath, opts)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}

	logger.Info("Uploaded object to MinIO",
		zap.String("object", info.Key),
		zap.Int64("size", info.Size))

	return info.Key, nil
}

// GetDownloadURL returns a presigned GET URL for the object.
func (s *MinioStore) GetDownloadURL(ctx context.Context, objectID string) (string, error) {
	reqParams := make(url.Values)
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, objectID, presignedURLExpiry, reqParams)
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", objectID, err)
	}
	return presigned.String(), nil
}

// Ping verifies the bucket is reachable. Used by the doctor command.
func (s *MinioStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}
