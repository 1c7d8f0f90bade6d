package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestNewLocalStorage_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "tmp")

	s, err := NewLocalStorage(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.TempDir())
	assert.DirExists(t, dir)
}

func TestNewLocalStorage_DefaultDir(t *testing.T) {
	s, err := NewLocalStorage("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.TempDir(), "video2sound"), s.TempDir())
}

func TestSaveAndLoadTemp(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	path, err := s.SaveTemp(ctx, "input_video", strings.NewReader("fake video bytes"))
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "input_video")
	assert.FileExists(t, path)

	r, err := s.LoadTemp(ctx, path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "fake video bytes", string(content))
}

func TestSaveTemp_UniqueNames(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	a, err := s.SaveTemp(ctx, "artifact", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := s.SaveTemp(ctx, "artifact", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSaveTemp_CancelledContext(t *testing.T) {
	s := newLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SaveTemp(ctx, "input", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadTemp_MissingFile(t *testing.T) {
	s := newLocal(t)
	_, err := s.LoadTemp(context.Background(), filepath.Join(s.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestCleanupTemp(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	path, err := s.SaveTemp(ctx, "input", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.CleanupTemp(ctx, []string{path}))
	assert.NoFileExists(t, path)
}

func TestCleanupTemp_MissingFilesIgnored(t *testing.T) {
	s := newLocal(t)
	err := s.CleanupTemp(context.Background(), []string{
		filepath.Join(s.TempDir(), "never-existed-1"),
		filepath.Join(s.TempDir(), "never-existed-2"),
	})
	assert.NoError(t, err)
}

func TestLocalStorage_UploadToS3NotConfigured(t *testing.T) {
	s := newLocal(t)
	_, err := s.UploadToS3(context.Background(), "key", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrS3NotConfigured)
}
