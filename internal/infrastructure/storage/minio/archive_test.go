package minio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	buckets map[string]bool
	puts    map[string]string // object name -> source path
	putErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{buckets: map[string]bool{}, puts: map[string]string{}}
}

func (f *fakeObjectStore) BucketExists(_ context.Context, bucket string) (bool, error) {
	return f.buckets[bucket], nil
}

func (f *fakeObjectStore) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.buckets[bucket] = true
	return nil
}

func (f *fakeObjectStore) FPutObject(_ context.Context, bucket, object, filePath string, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	f.puts[bucket+"/"+object] = filePath
	return minio.UploadInfo{Size: 1}, nil
}

func (f *fakeObjectStore) FGetObject(_ context.Context, bucket, object, filePath string, _ minio.GetObjectOptions) error {
	if _, ok := f.puts[bucket+"/"+object]; !ok {
		return assert.AnError
	}
	return os.WriteFile(filePath, []byte("fetched"), 0o644)
}

func TestNewArchiveWithClient_CreatesBucket(t *testing.T) {
	store := newFakeObjectStore()
	_, err := NewArchiveWithClient(store, "ckpts", "run-1", nil)
	require.NoError(t, err)
	assert.True(t, store.buckets["ckpts"])
}

func TestNewArchiveWithClient_Validation(t *testing.T) {
	_, err := NewArchiveWithClient(nil, "ckpts", "run-1", nil)
	assert.Error(t, err)

	_, err = NewArchiveWithClient(newFakeObjectStore(), "", "run-1", nil)
	assert.Error(t, err)

	_, err = NewArchiveWithClient(newFakeObjectStore(), "ckpts", "", nil)
	assert.Error(t, err)
}

func TestArchive_StoreAndFetch(t *testing.T) {
	store := newFakeObjectStore()
	a, err := NewArchiveWithClient(store, "ckpts", "run-1", nil)
	require.NoError(t, err)

	local := filepath.Join(t.TempDir(), "epoch_agent_0_1.5.json")
	require.NoError(t, os.WriteFile(local, []byte("{}"), 0o644))

	require.NoError(t, a.Store(context.Background(), local))
	assert.Equal(t, local, store.puts["ckpts/run-1/epoch_agent_0_1.5.json"])

	dest := filepath.Join(t.TempDir(), "restored.json")
	require.NoError(t, a.Fetch(context.Background(), "epoch_agent_0_1.5.json", dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "fetched", string(data))
}

func TestArchive_StoreError(t *testing.T) {
	store := newFakeObjectStore()
	store.putErr = assert.AnError
	a, err := NewArchiveWithClient(store, "ckpts", "run-1", nil)
	require.NoError(t, err)

	assert.Error(t, a.Store(context.Background(), "/tmp/whatever.json"))
}

//Personal.AI order the ending
