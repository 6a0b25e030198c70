// Package minio stores wall snapshots in S3-compatible object storage.
// It backs the offline cache that lets a wall show its last known notes while the store is unreachable.
package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/dtroode/postit-wall/internal/model"
)

const noSuchKey = "NoSuchKey"

// Internal adapter interface to enable mocking without a real MinIO server.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

// Wrapper to adapt *minio.Client to minioAPI.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}
func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}
func (w minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.c.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

var _ model.SnapshotCache = (*Client)(nil)

type Client struct {
	api    minioAPI
	bucket string
}

// NewClient creates a snapshot cache on top of a real *minio.Client. No request is made until Enable.
func NewClient(client *minio.Client, bucket string) *Client {
	return NewClientWithAPI(minioClientWrapper{c: client}, bucket)
}

// NewClientWithAPI allows injecting a mockable API (used in tests).
func NewClientWithAPI(api minioAPI, bucket string) *Client {
	return &Client{
		api:    api,
		bucket: bucket,
	}
}

// Enable checks that the storage is reachable and creates the bucket if it doesn't exist.
func (c *Client) Enable(ctx context.Context) error {
	if err := c.ensureBucketExists(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %w", err)
	}
	return nil
}

func (c *Client) ensureBucketExists(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Save stores the snapshot as the latest one of its owner.
func (c *Client) Save(ctx context.Context, snapshot model.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = c.api.PutObject(ctx, c.bucket, snapshotKey(snapshot.OwnerID), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}
	return nil
}

// Load returns the latest snapshot of ownerID; ok is false when none was saved.
func (c *Client) Load(ctx context.Context, ownerID uuid.UUID) (model.Snapshot, bool, error) {
	obj, err := c.api.GetObject(ctx, c.bucket, snapshotKey(ownerID), minio.GetObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == noSuchKey {
			return model.Snapshot{}, false, nil
		}
		return model.Snapshot{}, false, fmt.Errorf("failed to get snapshot: %w", err)
	}
	defer obj.Close()

	// GetObject is lazy, a missing key surfaces on the first read
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == noSuchKey {
			return model.Snapshot{}, false, nil
		}
		return model.Snapshot{}, false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.Snapshot{}, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	snapshot.FromCache = true

	return snapshot, true, nil
}

func snapshotKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("snapshots/%s.json", ownerID.String())
}
