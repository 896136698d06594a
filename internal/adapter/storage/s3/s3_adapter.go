package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gb112302/agriconnect/internal/app/config"
	"github.com/gb112302/agriconnect/internal/platform/logger"
)

// Storage persists product media. Upload returns the public URL and the
// object key needed to delete the file later.
type Storage interface {
	Upload(ctx context.Context, originalFileName string, data []byte) (url string, objectKey string, err error)
	Remove(ctx context.Context, objectKey string) error
}

type s3Storage struct {
	client *minio.Client
	bucket string
	log    logger.Logger
}

func NewStorage(cfg config.S3Config, log logger.Logger) (Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	err = client.MakeBucket(context.Background(), cfg.Bucket, minio.MakeBucketOptions{})
	if err != nil {
		exists, errExists := client.BucketExists(context.Background(), cfg.Bucket)
		if errExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", cfg.Bucket, err, errExists)
		}
		log.Infof("Bucket %s already exists", cfg.Bucket)
	}

	return &s3Storage{
		client: client,
		bucket: cfg.Bucket,
		log:    log,
	}, nil
}

func (s *s3Storage) Upload(ctx context.Context, originalFileName string, data []byte) (string, string, error) {
	ext := filepath.Ext(originalFileName)
	objectKey := fmt.Sprintf("products/%s%s", uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: http.DetectContentType(data),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}

	fileURL := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectKey)
	s.log.Infof("Uploaded %s (%d bytes) as %s", originalFileName, len(data), objectKey)
	return fileURL, objectKey, nil
}

func (s *s3Storage) Remove(ctx context.Context, objectKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s from bucket %s: %w", objectKey, s.bucket, err)
	}
	return nil
}
