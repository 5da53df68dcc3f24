package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/oncare/pharmalytics/internal/config"
)

// S3Client implements ObjectStorage against any S3-compatible endpoint.
type S3Client struct {
	client *minio.Client
	bucket string
}

func NewS3Client(cfg config.StorageConfig) (*S3Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create storage client: %w", err)
	}

	return &S3Client{client: client, bucket: cfg.Bucket}, nil
}

func (c *S3Client) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	for object := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("storage list failed: %w", object.Err)
		}
		results = append(results, ObjectInfo{
			Key:  object.Key,
			Size: object.Size,
		})
	}
	return results, nil
}

func (c *S3Client) DownloadObject(ctx context.Context, key, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
	}
	if err := c.client.FGetObject(ctx, c.bucket, key, destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("storage download failed for %s: %w", key, err)
	}
	return nil
}

var _ ObjectStorage = (*S3Client)(nil)
