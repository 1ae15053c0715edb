// Package archive stores burned artifacts in object storage so async
// job results survive the worker that produced them. The synchronous
// burn path never touches it; its artifacts stream straight back to the
// caller.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/seanowww/LyricSync/internal/config"
	"github.com/seanowww/LyricSync/internal/metrics"
)

// Archive provides render artifact storage
type Archive struct {
	client     *minio.Client
	bucketName string
}

// New creates a new archive client and ensures the bucket exists.
func New(cfg config.ArchiveConfig) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Archive{
		client:     client,
		bucketName: cfg.BucketName,
	}, nil
}

// StoreRender uploads a burned MP4 and returns its object key.
func (a *Archive) StoreRender(ctx context.Context, videoID, jobID string, data []byte) (string, error) {
	key := fmt.Sprintf("renders/%s/%s.mp4", videoID, jobID)

	_, err := a.client.PutObject(ctx, a.bucketName, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "video/mp4"},
	)
	if err != nil {
		metrics.RecordArchiveOperation("store", "error")
		return "", fmt.Errorf("failed to store render: %w", err)
	}

	metrics.RecordArchiveOperation("store", "ok")
	return key, nil
}

// PresignedURL returns a time-limited download URL for an archived
// render.
func (a *Archive) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	url, err := a.client.PresignedGetObject(ctx, a.bucketName, key, expiry, nil)
	if err != nil {
		metrics.RecordArchiveOperation("presign", "error")
		return "", fmt.Errorf("failed to generate URL: %w", err)
	}

	metrics.RecordArchiveOperation("presign", "ok")
	return url.String(), nil
}

// Delete removes an archived render.
func (a *Archive) Delete(ctx context.Context, key string) error {
	err := a.client.RemoveObject(ctx, a.bucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		metrics.RecordArchiveOperation("delete", "error")
		return fmt.Errorf("failed to delete render: %w", err)
	}

	metrics.RecordArchiveOperation("delete", "ok")
	return nil
}
