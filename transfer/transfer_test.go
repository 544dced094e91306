package transfer

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amphancm/olmocr/errors"
	"github.com/amphancm/olmocr/fs/billy"
	"github.com/amphancm/olmocr/fs/core"
	"github.com/amphancm/olmocr/fs/registry"
)

var tree = fstest.MapFS{
	"a.txt":            {Data: []byte("alpha")},
	".hidden":          {Data: []byte("secret")},
	"sub/b.json":       {Data: []byte(`{"b":1}`)},
	"sub/deep/c.jsonl": {Data: []byte("{}\n{}\n")},
	"other/d.bin":      {Data: []byte("\x00\x01\x02")},
}

func seed(t *testing.T, b core.Backend, root string, files fstest.MapFS) {
	t.Helper()
	require.NoError(t, core.CopyFromFS(context.Background(), files, ".", b, root))
}

func read(t *testing.T, reg *registry.Registry, path string) string {
	t.Helper()
	b, name, err := reg.For(path)
	require.NoError(t, err)
	r, err := b.Open(context.Background(), name)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestCopyFile(t *testing.T) {
	mem := billy.NewMemory()
	reg, err := registry.New(registry.WithBackend("mem", mem))
	require.NoError(t, err)
	seed(t, mem, "/src", tree)

	c := New(WithRegistry(reg))
	ctx := context.Background()

	dst := filepath.Join(t.TempDir(), "nested", "dir", "a.txt")
	require.NoError(t, c.CopyFile(ctx, "mem://src/a.txt", dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	require.NoError(t, c.CopyFile(ctx, dst, "mem://back/a.txt"))
	assert.Equal(t, "alpha", read(t, reg, "mem://back/a.txt"))
}

func TestCopyFile_Errors(t *testing.T) {
	reg, err := registry.New()
	require.NoError(t, err)
	c := New(WithRegistry(reg))
	ctx := context.Background()

	err = c.CopyFile(ctx, "mem://missing.txt", "mem://out.txt")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeTransferFailed))
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = c.CopyFile(ctx, "mem://*.txt", "mem://out.txt")
	assert.True(t, errors.HasCode(err, errors.CodeTransferFailed))
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = c.CopyFile(ctx, "gs://b/x", "mem://out.txt")
	assert.True(t, errors.HasCode(err, errors.CodeNotImplemented))
}

func TestCopyDir(t *testing.T) {
	mem := billy.NewMemory()
	reg, err := registry.New(registry.WithBackend("mem", mem))
	require.NoError(t, err)
	seed(t, mem, "/src", tree)

	c := New(WithRegistry(reg), WithConcurrency(3))
	ctx := context.Background()

	local := t.TempDir()
	require.NoError(t, c.CopyDir(ctx, "mem://src", local))
	for rel, f := range tree {
		data, err := os.ReadFile(filepath.Join(local, filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
		assert.Equal(t, string(f.Data), string(data), rel)
	}

	require.NoError(t, c.CopyDir(ctx, "file://"+local, "mem://round"))
	for rel, f := range tree {
		assert.Equal(t, string(f.Data), read(t, reg, "mem://round/"+rel), rel)
	}
}

func TestCopy_MetacharactersInNames(t *testing.T) {
	mem := billy.NewMemory()
	reg, err := registry.New(registry.WithBackend("mem", mem))
	require.NoError(t, err)
	seed(t, mem, "/src", fstest.MapFS{
		"notes (v2) [final].txt": {Data: []byte("notes")},
		"run[1]/x.txt":           {Data: []byte("bracketed")},
		"run1/y.txt":             {Data: []byte("decoy")},
		"a*b?.txt":               {Data: []byte("stars")},
	})

	c := New(WithRegistry(reg))
	ctx := context.Background()

	require.NoError(t, c.CopyFile(ctx, "mem://src/a*b?.txt", "mem://single/a*b?.txt"))
	assert.Equal(t, "stars", read(t, reg, "mem://single/a*b?.txt"))

	local := t.TempDir()
	require.NoError(t, c.CopyDir(ctx, "mem://src", local))
	for rel, want := range map[string]string{
		"notes (v2) [final].txt": "notes",
		"run[1]/x.txt":           "bracketed",
		"run1/y.txt":             "decoy",
		"a*b?.txt":               "stars",
	} {
		data, err := os.ReadFile(filepath.Join(local, filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
		assert.Equal(t, want, string(data), rel)
	}
	assert.NoFileExists(t, filepath.Join(local, "run[1]", "y.txt"))

	require.NoError(t, c.CopyDir(ctx, `mem://src/run\[1\]`, "mem://only"))
	assert.Equal(t, "bracketed", read(t, reg, "mem://only/x.txt"))
	assert.False(t, reg.Exists(ctx, "mem://only/y.txt"))
}

// flaky fails Open for names containing fail and counts concurrent readers.
type flaky struct {
	core.Backend
	fail   string
	active atomic.Int32
	peak   atomic.Int32
}

var errInjected = stderrors.New("injected failure")

func (f *flaky) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if f.fail != "" && strings.Contains(name, f.fail) {
		return nil, errInjected
	}
	n := f.active.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	r, err := f.Backend.Open(ctx, name)
	if err != nil {
		f.active.Add(-1)
		return nil, err
	}
	return &countedReader{ReadCloser: r, done: func() { f.active.Add(-1) }}, nil
}

type countedReader struct {
	io.ReadCloser
	done func()
}

func (r *countedReader) Close() error {
	r.done()
	return r.ReadCloser.Close()
}

func TestCopyDir_FailureLeavesCopiedFiles(t *testing.T) {
	mem := billy.NewMemory()
	seed(t, mem, "/src", tree)
	src := &flaky{Backend: mem, fail: "deep/c.jsonl"}

	reg, err := registry.New(registry.WithBackend("flaky", src))
	require.NoError(t, err)
	c := New(WithRegistry(reg), WithConcurrency(1))

	dst := t.TempDir()
	err = c.CopyDir(context.Background(), "flaky://src", dst)
	require.Error(t, err)
	assert.ErrorIs(t, err, errInjected)
	assert.True(t, errors.HasCode(err, errors.CodeTransferFailed))

	// files copied before the failing level stay in place
	data, err := os.ReadFile(filepath.Join(dst, ".hidden"))
	require.NoError(t, err)
	assert.Equal(t, "secret", string(data))
	assert.NoFileExists(t, filepath.Join(dst, "sub", "deep", "c.jsonl"))
}

func TestCopyDir_BoundedConcurrency(t *testing.T) {
	mem := billy.NewMemory()
	ctx := context.Background()
	for i := range 20 {
		w, err := mem.Create(ctx, fmt.Sprintf("/flat/%02d.txt", i))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
	src := &flaky{Backend: mem}

	reg, err := registry.New(registry.WithBackend("flaky", src))
	require.NoError(t, err)
	c := New(WithRegistry(reg), WithConcurrency(2))

	require.NoError(t, c.CopyDir(ctx, "flaky://flat", "mem://out"))
	assert.LessOrEqual(t, src.peak.Load(), int32(2))
	assert.Positive(t, src.peak.Load())

	for i := range 20 {
		assert.True(t, reg.IsFile(ctx, fmt.Sprintf("mem://out/%02d.txt", i)))
	}
}

func TestWithConcurrency_IgnoresNonPositive(t *testing.T) {
	reg, err := registry.New()
	require.NoError(t, err)
	c := New(WithRegistry(reg), WithConcurrency(0))
	assert.Equal(t, DefaultConcurrency, c.concurrency)
}

func TestRetarget(t *testing.T) {
	got, err := retarget("s3://b/x/y/1.txt", "s3://b/x", "/tmp/out")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out/y/1.txt", got)

	got, err = retarget("mem://src", "mem://src", "mem://dst")
	require.NoError(t, err)
	assert.Equal(t, "mem://dst", got)

	got, err = retarget("mem://src/run[1]/x.txt", "mem://src/run[1]", "/tmp/out/run[1]")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out/run[1]/x.txt", got)

	_, err = retarget("s3://b/x", "mem://b", "mem://dst")
	assert.True(t, errors.HasCode(err, errors.CodeProtocolMismatch))
}
