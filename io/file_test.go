package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesWriteRead(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	files := NewFiles()
	path := filepath.Join(t.TempDir(), "out.txt")

	fd, err := files.Open(path, MODE_CREATE, ACCESS_WRITE)
	require.NoError(err)
	assert.GreaterOrEqual(fd, int32(3))

	n, err := files.Write(fd, []byte("hello"))
	assert.NoError(err)
	assert.Equal(5, n)

	require.NoError(files.Close(fd))
	assert.ErrorIs(files.Close(fd), ErrFileHandle)

	fd, err = files.Open(path, MODE_OPEN, ACCESS_READ)
	require.NoError(err)

	buf := make([]byte, 16)
	n, err = files.Read(fd, buf)
	assert.NoError(err)
	assert.Equal("hello", string(buf[:n]))

	// End of file.
	n, err = files.Read(fd, buf)
	assert.NoError(err)
	assert.Equal(0, n)

	_, err = files.Write(fd, []byte("nope"))
	assert.Error(err)

	require.NoError(files.Close(fd))

	fd, err = files.Open(path, MODE_APPEND, ACCESS_WRITE)
	require.NoError(err)
	_, err = files.Write(fd, []byte(" world"))
	assert.NoError(err)
	require.NoError(files.Close(fd))

	data, err := os.ReadFile(path)
	require.NoError(err)
	assert.Equal("hello world", string(data))

	_, err = files.Open(path, MODE_CREATE_NEW, ACCESS_WRITE)
	assert.Error(err)
}

func TestFilesErrors(t *testing.T) {
	assert := assert.New(t)

	files := NewFiles()
	path := filepath.Join(t.TempDir(), "missing.txt")

	_, err := files.Open(path, MODE_OPEN, ACCESS_READ)
	assert.Error(err)

	_, err = files.Open(path, 9, ACCESS_READ)
	assert.ErrorIs(err, ErrFileMode)
	_, err = files.Open(path, MODE_OPEN, 0)
	assert.ErrorIs(err, ErrFileAccess)
	_, err = files.Open(path, MODE_CREATE, ACCESS_READ)
	assert.ErrorIs(err, ErrFileAccess)

	buf := make([]byte, 4)
	_, err = files.Read(99, buf)
	assert.ErrorIs(err, ErrFileHandle)
	_, err = files.Write(-1, buf)
	assert.ErrorIs(err, ErrFileHandle)
	assert.ErrorIs(files.Close(1), ErrFileHandle)
}
