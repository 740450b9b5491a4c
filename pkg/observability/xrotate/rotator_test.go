package xrotate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLumberjack_EmptyFilename(t *testing.T) {
	_, err := NewLumberjack("")
	assert.ErrorIs(t, err, ErrEmptyFilename)
}

func TestNewLumberjack_InvalidMaxSize(t *testing.T) {
	_, err := NewLumberjack(filepath.Join(t.TempDir(), "app.log"), WithMaxSize(-1))
	assert.ErrorIs(t, err, ErrInvalidMaxSize)

	_, err = NewLumberjack(filepath.Join(t.TempDir(), "app.log"), WithMaxSize(maxSizeMB+1))
	assert.ErrorIs(t, err, ErrInvalidMaxSize)
}

func TestNewLumberjack_NoCleanupPolicy(t *testing.T) {
	_, err := NewLumberjack(filepath.Join(t.TempDir(), "app.log"),
		WithMaxBackups(0), WithMaxAge(0))
	assert.ErrorIs(t, err, ErrNoCleanupPolicy)
}

func TestLumberjack_WriteAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	r, err := NewLumberjack(path)
	require.NoError(t, err)

	n, err := r.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	require.NoError(t, r.Close())

	// 关闭后的操作都返回 ErrClosed
	_, err = r.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, r.Rotate(), ErrClosed)
	assert.ErrorIs(t, r.Close(), ErrClosed)
}

func TestLumberjack_Rotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	r, err := NewLumberjack(path, WithCompress(false))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Write([]byte("before rotate\n"))
	require.NoError(t, err)

	require.NoError(t, r.Rotate())

	_, err = r.Write([]byte("after rotate\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "after rotate\n", string(data))

	// 备份文件包含轮转前的内容
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
