package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/BerylCAtieno/processos-api/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// s3Storage keeps uploads in one bucket; a location is the object key.
type s3Storage struct {
	client *minio.Client
	bucket string
}

func NewS3Storage(ctx context.Context, cfg *config.Config) (Storage, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	if err := ensureBucket(ctx, client, cfg.S3BucketName); err != nil {
		return nil, err
	}

	return &s3Storage{client: client, bucket: cfg.S3BucketName}, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", bucket, err)
	}
	if exists {
		return nil
	}

	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		// another process may have created it between the two calls
		if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return fmt.Errorf("failed to create bucket %q: %w", bucket, err)
	}
	return nil
}

func (s *s3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

func (s *s3Storage) Download(ctx context.Context, location string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, location, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.readError(location, err)
	}
	defer object.Close()

	// GetObject is lazy; a missing key only surfaces on the first read
	data, err := io.ReadAll(object)
	if err != nil {
		return nil, s.readError(location, err)
	}
	return data, nil
}

func (s *s3Storage) readError(location string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	return fmt.Errorf("failed to download %s: %w", location, err)
}

// Delete is idempotent: S3 reports success for a missing key.
func (s *s3Storage) Delete(ctx context.Context, location string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, location, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", location, err)
	}
	return nil
}
