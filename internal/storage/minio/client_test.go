package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/postit-wall/internal/model"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error
	madeBucket      string

	objects map[string][]byte
	putErr  error
	getErr  error
	readErr error
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, bucket string, _ minioLib.MakeBucketOptions) error {
	f.madeBucket = bucket
	return f.makeBucketErr
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, key string, r io.Reader, _ int64, _ minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	if f.putErr != nil {
		return minioLib.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minioLib.UploadInfo{}, err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = data
	return minioLib.UploadInfo{Key: key, Size: int64(len(data))}, nil
}
func (f *fakeMinio) GetObject(_ context.Context, _ string, key string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.readErr != nil {
		return io.NopCloser(&failingReader{err: f.readErr}), nil
	}
	data, ok := f.objects[key]
	if !ok {
		return io.NopCloser(&failingReader{err: minioLib.ErrorResponse{Code: noSuchKey}}), nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type failingReader struct{ err error }

func (r *failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestClient_Enable(t *testing.T) {
	ctx := context.Background()

	t.Run("bucket exists", func(t *testing.T) {
		api := &fakeMinio{bucketExists: true}
		c := NewClientWithAPI(api, "b")
		require.NoError(t, c.Enable(ctx))
		assert.Empty(t, api.madeBucket)
	})

	t.Run("creates bucket", func(t *testing.T) {
		api := &fakeMinio{bucketExists: false}
		c := NewClientWithAPI(api, "bucket")
		require.NoError(t, c.Enable(ctx))
		assert.Equal(t, "bucket", api.madeBucket)
	})

	t.Run("storage unreachable", func(t *testing.T) {
		api := &fakeMinio{bucketExistsErr: errors.New("dial tcp: connection refused")}
		err := NewClientWithAPI(api, "bucket").Enable(ctx)
		assert.ErrorContains(t, err, "failed to ensure bucket exists")
	})

	t.Run("make bucket error", func(t *testing.T) {
		api := &fakeMinio{makeBucketErr: errors.New("fail")}
		err := NewClientWithAPI(api, "bucket").Enable(ctx)
		assert.ErrorContains(t, err, "failed to create bucket")
	})
}

func TestClient_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{}
	c := NewClientWithAPI(api, "b")
	owner := uuid.New()

	snap := model.Snapshot{
		OwnerID: owner,
		Notes: []model.Note{
			{ID: uuid.New(), OwnerID: owner, Date: "2024-01-02", Title: "second"},
			{ID: uuid.New(), OwnerID: owner, Date: "2024-01-01", Title: "first"},
		},
	}
	require.NoError(t, c.Save(ctx, snap))
	assert.Contains(t, api.objects, "snapshots/"+owner.String()+".json")

	got, ok, err := c.Load(ctx, owner)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.FromCache)
	assert.Equal(t, owner, got.OwnerID)
	require.Len(t, got.Notes, 2)
	assert.Equal(t, "second", got.Notes[0].Title)
}

func TestClient_LoadMissing(t *testing.T) {
	c := NewClientWithAPI(&fakeMinio{}, "b")

	_, ok, err := c.Load(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("save", func(t *testing.T) {
		c := NewClientWithAPI(&fakeMinio{putErr: errors.New("put-fail")}, "b")
		err := c.Save(ctx, model.Snapshot{OwnerID: uuid.New()})
		assert.ErrorContains(t, err, "failed to upload snapshot")
	})

	t.Run("get", func(t *testing.T) {
		c := NewClientWithAPI(&fakeMinio{getErr: errors.New("get-fail")}, "b")
		_, ok, err := c.Load(ctx, uuid.New())
		assert.False(t, ok)
		assert.ErrorContains(t, err, "failed to get snapshot")
	})

	t.Run("read", func(t *testing.T) {
		c := NewClientWithAPI(&fakeMinio{readErr: errors.New("reset by peer")}, "b")
		_, ok, err := c.Load(ctx, uuid.New())
		assert.False(t, ok)
		assert.ErrorContains(t, err, "failed to read snapshot")
	})

	t.Run("corrupt", func(t *testing.T) {
		owner := uuid.New()
		api := &fakeMinio{objects: map[string][]byte{snapshotKey(owner): []byte("{not json")}}
		_, ok, err := NewClientWithAPI(api, "b").Load(ctx, owner)
		assert.False(t, ok)
		assert.ErrorContains(t, err, "failed to unmarshal snapshot")
	})
}
