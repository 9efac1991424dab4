package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadMissingFile(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore(filepath.Join(tmpDir, "checkpoint.json"))
	require.NoError(t, err)

	cp, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, cp.ProcessedFiles)
	assert.Equal(t, 0, cp.TotalProcessed)
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore(filepath.Join(tmpDir, "checkpoint.json"))
	require.NoError(t, err)

	cp, err := store.Load()
	require.NoError(t, err)

	now := time.Now()
	cp.MarkProcessed("video1.md", now)
	cp.MarkProcessed("video2.md", now)
	require.NoError(t, store.Save(cp))

	// 重新加载应看到相同的进度
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.True(t, loaded.IsProcessed("video1.md"))
	assert.True(t, loaded.IsProcessed("video2.md"))
	assert.False(t, loaded.IsProcessed("video3.md"))
	assert.Equal(t, 2, loaded.TotalProcessed)
	assert.NotEmpty(t, loaded.LastUpdated)
}

func TestFileStore_SaveRecordsError(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore(filepath.Join(tmpDir, "checkpoint.json"))
	require.NoError(t, err)

	cp, err := store.Load()
	require.NoError(t, err)

	cp.RecordError("broken.md", assert.AnError, time.Now())
	require.NoError(t, store.Save(cp))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded.LastError)
	assert.Equal(t, "broken.md", loaded.LastError.File)
	// 失败的文件不算已处理
	assert.False(t, loaded.IsProcessed("broken.md"))
}

func TestFileStore_SaveDoesNotLeaveTempFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "checkpoint.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	cp, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, store.Save(cp))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
