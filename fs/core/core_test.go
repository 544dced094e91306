package core_test

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amphancm/olmocr/fs/billy"
	"github.com/amphancm/olmocr/fs/core"
)

func TestFSType_String(t *testing.T) {
	tests := []struct {
		fsType   core.FSType
		expected string
	}{
		{core.FSTypeUnknown, "unknown"},
		{core.FSTypeLocal, "local"},
		{core.FSTypeMemory, "memory"},
		{core.FSTypeRemote, "remote"},
		{core.FSType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fsType.String())
		})
	}
	assert.Equal(t, core.FSType(0), core.FSTypeUnknown)
}

func TestReexportedErrorsMatchStdlib(t *testing.T) {
	assert.ErrorIs(t, core.ErrNotExist, fs.ErrNotExist)
	assert.ErrorIs(t, core.ErrExist, fs.ErrExist)
	assert.ErrorIs(t, core.ErrPermission, fs.ErrPermission)
	assert.ErrorIs(t, core.ErrInvalid, fs.ErrInvalid)
	assert.NotErrorIs(t, core.ErrUnsupported, fs.ErrNotExist)
	assert.Equal(t, "operation not supported", core.ErrUnsupported.Error())
}

func TestPathError(t *testing.T) {
	err := core.PathError("open", "bucket/key", core.ErrNotExist)

	var pe *fs.PathError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "open", pe.Op)
	assert.Equal(t, "bucket/key", pe.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	src := billy.NewMemory()
	dst := billy.NewMemory()

	require.NoError(t, src.MkdirAll(ctx, "/in", true))
	writeFile(t, src, "/in/a.txt", "hello world")
	require.NoError(t, dst.MkdirAll(ctx, "/out", true))

	n, err := core.Copy(ctx, src, "/in/a.txt", dst, "/out/a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)
	assert.Equal(t, "hello world", readFile(t, dst, "/out/a.txt"))
}

func TestCopy_MissingSource(t *testing.T) {
	ctx := context.Background()
	src := billy.NewMemory()
	dst := billy.NewMemory()

	_, err := core.Copy(ctx, src, "/nope", dst, "/out")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	exists, err := dst.Exists(ctx, "/out")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCopy_CanceledContext(t *testing.T) {
	src := billy.NewMemory()
	dst := billy.NewMemory()
	writeFile(t, src, "/a", strings.Repeat("x", 1024))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := core.Copy(ctx, src, "/a", dst, "/b")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCopyFromFS(t *testing.T) {
	ctx := context.Background()
	src := fstest.MapFS{
		"seed/a.txt":       {Data: []byte("a")},
		"seed/sub/b.txt":   {Data: []byte("b")},
		"other/ignore.txt": {Data: []byte("x")},
	}
	dst := billy.NewMemory()

	require.NoError(t, core.CopyFromFS(ctx, src, "seed", dst, "/root"))

	assert.Equal(t, "a", readFile(t, dst, "/root/a.txt"))
	assert.Equal(t, "b", readFile(t, dst, "/root/sub/b.txt"))

	exists, err := dst.Exists(ctx, "/root/ignore.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func writeFile(t *testing.T, b core.Backend, name, content string) {
	t.Helper()
	w, err := b.Create(context.Background(), name)
	require.NoError(t, err)
	_, err = io.WriteString(w, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func readFile(t *testing.T, b core.Backend, name string) string {
	t.Helper()
	r, err := b.Open(context.Background(), name)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}
