package minio

import (
	"context"
	"os"
	"testing"

	"github.com/bytedoc/bytedoc/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIntegration_MinioStore requires a running MinIO instance.
func TestIntegration_MinioStore(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-bytedoc"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	if _, err = client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("hello bytedoc snapshot")
	require.NoError(t, store.Put(ctx, "doc.bds", data))

	blob, err := store.Open(ctx, "doc.bds")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, len(data))
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, data, buf)
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "doc.bds")

	w, err := store.Create(ctx, "streamed.bds")
	require.NoError(t, err)
	_, err = w.Write([]byte("part one "))
	require.NoError(t, err)
	_, err = w.Write([]byte("part two"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	streamed, err := store.Open(ctx, "streamed.bds")
	require.NoError(t, err)
	all, err := blobstore.ReadAll(ctx, streamed)
	require.NoError(t, err)
	assert.Equal(t, "part one part two", string(all))
	require.NoError(t, streamed.Close())

	require.NoError(t, store.Delete(ctx, "doc.bds"))
	require.NoError(t, store.Delete(ctx, "streamed.bds"))
	_, err = store.Open(ctx, "doc.bds")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
