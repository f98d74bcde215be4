package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_SaveAndRead(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, zap.NewNop())
	ctx := context.Background()

	t.Run("saves and reads back", func(t *testing.T) {
		content := []byte("workbook bytes")
		err := fs.Save(ctx, filepath.Join("2024-05-01", "export.xlsx"), content)
		require.NoError(t, err)

		got, err := fs.Read(ctx, filepath.Join("2024-05-01", "export.xlsx"))
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("creates parent directories", func(t *testing.T) {
		err := fs.Save(ctx, filepath.Join("deep", "nested", "file.xlsx"), []byte("x"))
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(tempDir, "deep", "nested", "file.xlsx"))
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		require.NoError(t, fs.Save(ctx, "overwrite.txt", []byte("original")))
		require.NoError(t, fs.Save(ctx, "overwrite.txt", []byte("updated")))

		content, err := os.ReadFile(filepath.Join(tempDir, "overwrite.txt"))
		require.NoError(t, err)
		assert.Equal(t, []byte("updated"), content)
	})

	t.Run("read of missing file fails", func(t *testing.T) {
		_, err := fs.Read(ctx, "nope.xlsx")
		assert.Error(t, err)
	})
}

func TestLocalFileStorage_RejectsEscapingPaths(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(filepath.Join(tempDir, "base"), zap.NewNop())
	ctx := context.Background()

	err := fs.Save(ctx, filepath.Join("..", "outside.txt"), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes storage root")

	_, err = fs.Read(ctx, filepath.Join("..", "outside.txt"))
	assert.Error(t, err)
}

func TestLocalFileStorage_ExistsAndDelete(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, zap.NewNop())
	ctx := context.Background()

	assert.False(t, fs.Exists(ctx, "file.txt"))

	require.NoError(t, fs.Save(ctx, "file.txt", []byte("x")))
	assert.True(t, fs.Exists(ctx, "file.txt"))

	require.NoError(t, fs.Delete(ctx, "file.txt"))
	assert.False(t, fs.Exists(ctx, "file.txt"))

	// Deleting again is a no-op
	assert.NoError(t, fs.Delete(ctx, "file.txt"))
}

func TestLocalFileStorage_GetFullPath(t *testing.T) {
	fs := NewLocalFileStorage("/exports", zap.NewNop())
	assert.Equal(t, filepath.Join("/exports", "2024-05-01", "a.xlsx"),
		fs.GetFullPath(filepath.Join("2024-05-01", "a.xlsx")))
}
