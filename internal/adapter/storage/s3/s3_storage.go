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
	"github.com/surajpratapsingh112/shree-ecommerce/internal/app/config"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
)

// UploadedFile is the stored object reference kept on products and
// categories: the key lets us delete the object later, the URL is what
// clients render.
type UploadedFile struct {
	Key string
	URL string
}

type ImageStorage interface {
	Upload(ctx context.Context, originalFileName string, data []byte, folder string) (*UploadedFile, error)
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
}

type s3Storage struct {
	client *minio.Client
	bucket string
	log    logger.Logger
}

func NewImageStorage(cfg config.StorageConfig, log logger.Logger) (ImageStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for %s: %w", cfg.Endpoint, err)
	}

	if err := client.MakeBucket(context.Background(), cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, errExists := client.BucketExists(context.Background(), cfg.Bucket)
		if errExists != nil || !exists {
			return nil, fmt.Errorf("failed to make or verify bucket %s: %w", cfg.Bucket, err)
		}
	}

	log.Infof("Image storage ready, endpoint=%s bucket=%s", cfg.Endpoint, cfg.Bucket)
	return &s3Storage{client: client, bucket: cfg.Bucket, log: log}, nil
}

func (s *s3Storage) Upload(ctx context.Context, originalFileName string, data []byte, folder string) (*UploadedFile, error) {
	ext := filepath.Ext(originalFileName)
	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)

	opts := minio.PutObjectOptions{ContentType: http.DetectContentType(data)}
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		s.log.Errorf("Failed to upload object %s: %v", key, err)
		return nil, fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key)
	return &UploadedFile{Key: key, URL: url}, nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.log.Errorf("Failed to delete object %s: %v", key, err)
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// DeleteMany removes each object individually and reports the first
// failure; remaining keys are still attempted.
func (s *s3Storage) DeleteMany(ctx context.Context, keys []string) error {
	var firstErr error
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
