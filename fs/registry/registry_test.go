package registry

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amphancm/olmocr/errors"
	"github.com/amphancm/olmocr/fs/billy"
	"github.com/amphancm/olmocr/fs/core"
	"github.com/amphancm/olmocr/fs/minio"
)

func TestNew_DefaultProtocols(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)
	assert.Equal(t, []string{"", "file", "http", "https", "mem"}, reg.Protocols())

	local, err := reg.Resolve("")
	require.NoError(t, err)
	file, err := reg.Resolve("file")
	require.NoError(t, err)
	assert.Same(t, local, file)
	assert.Equal(t, core.FSTypeLocal, local.Type())

	mem, err := reg.Resolve("mem")
	require.NoError(t, err)
	assert.Equal(t, core.FSTypeMemory, mem.Type())

	web, err := reg.Resolve("https")
	require.NoError(t, err)
	assert.Equal(t, core.FSTypeRemote, web.Type())
}

func TestNew_WithS3(t *testing.T) {
	reg, err := New(WithS3(minio.Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"}))
	require.NoError(t, err)

	s3, err := reg.Resolve("s3")
	require.NoError(t, err)
	for _, scheme := range S3Schemes {
		b, err := reg.Resolve(scheme)
		require.NoError(t, err, scheme)
		assert.Same(t, s3, b, scheme)
	}
}

func TestNew_InvalidS3(t *testing.T) {
	_, err := New(WithS3(minio.Config{}))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))
}

func TestResolve_Unknown(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	_, err = reg.Resolve("gs")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotImplemented))

	_, _, err = reg.For("gs://bucket/x")
	assert.True(t, errors.HasCode(err, errors.CodeNotImplemented))
}

func TestWithBackend_Overrides(t *testing.T) {
	mem := billy.NewMemory()
	reg, err := New(WithBackend("file", mem), WithBackend("gs", mem))
	require.NoError(t, err)

	b, err := reg.Resolve("file")
	require.NoError(t, err)
	assert.Same(t, core.Backend(mem), b)

	b, err = reg.Resolve("gs")
	require.NoError(t, err)
	assert.Same(t, core.Backend(mem), b)
}

func TestFor_StripsProtocol(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	tests := []struct {
		path string
		want string
		typ  core.FSType
	}{
		{"/tmp/x.json", "/tmp/x.json", core.FSTypeLocal},
		{"rel/x.json", "rel/x.json", core.FSTypeLocal},
		{"file:///tmp/x.json", "/tmp/x.json", core.FSTypeLocal},
		{"mem://a/b", "a/b", core.FSTypeMemory},
		{"https://host/f.gz?x=1", "host/f.gz?x=1", core.FSTypeRemote},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			b, name, err := reg.For(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
			assert.Equal(t, tt.typ, b.Type())
		})
	}
}

func TestDefault_Singleton(t *testing.T) {
	a := Default()
	b := Default()
	require.NotNil(t, a)
	assert.Same(t, a, b)
	_, err := a.Resolve("s3")
	assert.NoError(t, err)
}

func newTree(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "deep", "b.txt"), []byte("x"), 0o644))

	reg, err := New()
	require.NoError(t, err)
	return reg, dir
}

func TestPathKinds(t *testing.T) {
	reg, dir := newTree(t)
	ctx := context.Background()
	file := filepath.Join(dir, "a.txt")
	sub := filepath.Join(dir, "sub")
	missing := filepath.Join(dir, "missing")

	assert.True(t, reg.Exists(ctx, file))
	assert.True(t, reg.Exists(ctx, sub))
	assert.False(t, reg.Exists(ctx, missing))

	assert.True(t, reg.IsFile(ctx, file))
	assert.False(t, reg.IsFile(ctx, sub))
	assert.False(t, reg.IsFile(ctx, missing))

	assert.True(t, reg.IsDir(ctx, sub))
	assert.True(t, reg.IsDir(ctx, "file://"+sub))
	assert.False(t, reg.IsDir(ctx, file))
	assert.False(t, reg.IsDir(ctx, missing))

	assert.False(t, reg.Exists(ctx, "gs://bucket/x"))
}

func TestSize(t *testing.T) {
	reg, dir := newTree(t)
	ctx := context.Background()

	n, err := reg.Size(ctx, filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	_, err = reg.Size(ctx, filepath.Join(dir, "sub"))
	assert.True(t, errors.HasCode(err, errors.CodeIsADirectory))

	_, err = reg.Size(ctx, filepath.Join(dir, "nope"))
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDeleteFile(t *testing.T) {
	reg, dir := newTree(t)
	ctx := context.Background()
	file := filepath.Join(dir, "a.txt")

	_, err := reg.DeleteFile(ctx, filepath.Join(dir, "sub"), false)
	assert.True(t, errors.HasCode(err, errors.CodeIsADirectory))

	deleted, err := reg.DeleteFile(ctx, file, false)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoFileExists(t, file)

	deleted, err = reg.DeleteFile(ctx, file, true)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = reg.DeleteFile(ctx, file, false)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	_, err = reg.DeleteFile(ctx, filepath.Join(dir, "*.txt"), true)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidPath))
}

func TestDeleteDir(t *testing.T) {
	reg, dir := newTree(t)
	ctx := context.Background()
	sub := filepath.Join(dir, "sub")

	_, err := reg.DeleteDir(ctx, filepath.Join(dir, "a.txt"), false)
	assert.True(t, errors.HasCode(err, errors.CodeNotADirectory))

	deleted, err := reg.DeleteDir(ctx, sub, false)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoDirExists(t, sub)

	deleted, err = reg.DeleteDir(ctx, sub, true)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = reg.DeleteDir(ctx, sub, false)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestMkdirP(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, reg.MkdirP(ctx, "mem://x/y/z"))
	require.NoError(t, reg.MkdirP(ctx, "mem://x/y/z"))
	assert.True(t, reg.IsDir(ctx, "mem://x/y"))

	err = reg.MkdirP(ctx, "mem://x/*/z")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidPath))

	err = reg.MkdirP(ctx, "https://host/dir")
	assert.True(t, errors.HasCode(err, errors.CodeNotImplemented))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "open", "x"))

	tests := []struct {
		err  error
		code errors.ErrorCode
	}{
		{core.PathError("open", "x", fs.ErrNotExist), errors.CodeNotFound},
		{core.PathError("create", "x", fs.ErrExist), errors.CodeAlreadyExists},
		{core.PathError("open", "x", fs.ErrPermission), errors.CodeForbidden},
		{core.PathError("open", "x", core.ErrIsDir), errors.CodeIsADirectory},
		{core.PathError("create", "x", core.ErrUnsupported), errors.CodeNotImplemented},
		{fmt.Errorf("read: %w", context.DeadlineExceeded), errors.CodeTimeout},
		{timeoutErr{}, errors.CodeTimeout},
		{&net.OpError{Op: "dial", Err: stderrors.New("refused")}, errors.CodeNetwork},
		{stderrors.New("boom"), errors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			err := Wrap(tt.err, "op", "x")
			assert.Equal(t, tt.code, errors.GetCode(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	already := errors.New(errors.CodeInvalidPath, "bad")
	assert.Same(t, already, Wrap(already, "op", "x"))
}

func TestMkdirParent(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, reg.MkdirParent(ctx, "mem://p/run[1]/x.txt"))
	assert.True(t, reg.IsDir(ctx, "mem://p/run[1]"))
	assert.False(t, reg.Exists(ctx, "mem://p/run[1]/x.txt"))

	require.NoError(t, reg.MkdirParent(ctx, "mem://top.txt"))

	dir := t.TempDir()
	require.NoError(t, reg.MkdirParent(ctx, filepath.Join(dir, "a*", "b?.txt")))
	assert.DirExists(t, filepath.Join(dir, "a*"))
}
