package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

type S3Storage struct {
	client *minio.Client
}

func NewS3Storage(client *minio.Client) *S3Storage {
	return &S3Storage{client: client}
}

func (s *S3Storage) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(key) == "" {
		return "", ErrInvalidRef
	}

	presigned, err := s.client.PresignedGetObject(ctx, bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}

	return presigned.String(), nil
}

// BucketExists is used by readiness checks.
func (s *S3Storage) BucketExists(ctx context.Context, bucket string) error {
	if s.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check s3 bucket %q: %w", bucket, err)
	}
	if !exists {
		return fmt.Errorf("s3 bucket %q does not exist", bucket)
	}
	return nil
}
