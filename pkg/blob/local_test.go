package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedocs/catalog-api/pkg/config"
)

func TestLocalStorePutDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "documents/123-abc-notes.pdf", "application/pdf", strings.NewReader("%PDF-1.4"), 8)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/documents/123-abc-notes.pdf", url)

	data, err := os.ReadFile(filepath.Join(dir, "documents", "123-abc-notes.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, store.Delete(context.Background(), "documents/123-abc-notes.pdf"))
	_, err = os.Stat(filepath.Join(dir, "documents", "123-abc-notes.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStoreDeleteMissingKey(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	assert.NoError(t, store.Delete(context.Background(), "documents/never-existed.txt"))
}

func configWithDriver(driver string) config.StorageConfig {
	return config.StorageConfig{Driver: driver, LocalDir: os.TempDir()}
}

func TestFactoryRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), configWithDriver("ftp"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage driver")
}

func TestFactoryRequiresBucketForS3(t *testing.T) {
	_, err := New(context.Background(), configWithDriver("s3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_BUCKET")
}
