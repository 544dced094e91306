package glob

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amphancm/olmocr/errors"
	"github.com/amphancm/olmocr/fs/core"
	"github.com/amphancm/olmocr/fs/registry"
)

// seed copies files into the backend behind dir.
func seed(t *testing.T, reg *registry.Registry, dir string, files fstest.MapFS) {
	t.Helper()
	b, name, err := reg.For(dir)
	require.NoError(t, err)
	require.NoError(t, core.CopyFromFS(context.Background(), files, ".", b, name))
}

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}

func newTree(t *testing.T) *Expander {
	t.Helper()
	reg, err := registry.New()
	require.NoError(t, err)
	seed(t, reg, "mem://root", fstest.MapFS{
		"a.txt":          file("a"),
		"b.json":         file("b"),
		".hidden":        file("h"),
		"sub/c.txt":      file("c"),
		"sub/deep/d.txt": file("d"),
	})
	return New(reg)
}

func collect(t *testing.T, e *Expander, pattern string, opts ...Option) []string {
	t.Helper()
	var out []string
	for p, err := range e.Glob(context.Background(), pattern, opts...) {
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func TestGlob(t *testing.T) {
	e := newTree(t)

	tests := []struct {
		name    string
		pattern string
		opts    []Option
		want    []string
	}{
		{
			name:    "autoglob directory",
			pattern: "mem://root",
			want:    []string{"mem://root/a.txt", "mem://root/b.json", "mem://root/sub"},
		},
		{
			name:    "trailing slash",
			pattern: "mem://root/",
			want:    []string{"mem://root/a.txt", "mem://root/b.json", "mem://root/sub"},
		},
		{
			name:    "hidden files",
			pattern: "mem://root",
			opts:    []Option{WithHidden(true)},
			want:    []string{"mem://root/.hidden", "mem://root/a.txt", "mem://root/b.json", "mem://root/sub"},
		},
		{
			name:    "recursive yields children before directory",
			pattern: "mem://root",
			opts:    []Option{WithRecursiveDirs(true)},
			want: []string{
				"mem://root/a.txt",
				"mem://root/b.json",
				"mem://root/sub/c.txt",
				"mem://root/sub/deep/d.txt",
				"mem://root/sub/deep",
				"mem://root/sub",
			},
		},
		{
			name:    "recursive files only",
			pattern: "mem://root",
			opts:    []Option{WithRecursiveDirs(true), WithYieldDirs(false)},
			want: []string{
				"mem://root/a.txt",
				"mem://root/b.json",
				"mem://root/sub/c.txt",
				"mem://root/sub/deep/d.txt",
			},
		},
		{
			name:    "no dirs",
			pattern: "mem://root/*",
			opts:    []Option{WithYieldDirs(false)},
			want:    []string{"mem://root/a.txt", "mem://root/b.json"},
		},
		{
			name:    "autoglob off",
			pattern: "mem://root",
			opts:    []Option{WithAutoglobDirs(false)},
			want:    []string{"mem://root"},
		},
		{
			name:    "literal file",
			pattern: "mem://root/a.txt",
			want:    []string{"mem://root/a.txt"},
		},
		{
			name:    "literal missing",
			pattern: "mem://nowhere/x.txt",
			want:    []string{"mem://nowhere/x.txt"},
		},
		{
			name:    "escaped wildcard is literal",
			pattern: `mem://root/a\*.txt`,
			want:    []string{"mem://root/a*.txt"},
		},
		{
			name:    "extension",
			pattern: "mem://root/*.txt",
			want:    []string{"mem://root/a.txt"},
		},
		{
			name:    "double star",
			pattern: "mem://root/**/*.txt",
			want:    []string{"mem://root/a.txt", "mem://root/sub/c.txt", "mem://root/sub/deep/d.txt"},
		},
		{
			name:    "no match",
			pattern: "mem://root/*.csv",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collect(t, e, tt.pattern, tt.opts...))
		})
	}
}

func TestGlob_MetacharactersInNames(t *testing.T) {
	reg, err := registry.New()
	require.NoError(t, err)
	seed(t, reg, "mem://br", fstest.MapFS{
		"run[1]/x.txt":           file("x"),
		"run1/y.txt":             file("y"),
		"notes (v2) [final].txt": file("n"),
	})
	e := New(reg)

	got := collect(t, e, "mem://br", WithRecursiveDirs(true), WithYieldDirs(false))
	assert.Equal(t, []string{
		"mem://br/notes (v2) [final].txt",
		"mem://br/run1/y.txt",
		"mem://br/run[1]/x.txt",
	}, got)

	got = collect(t, e, `mem://br/run\[1\]`)
	assert.Equal(t, []string{"mem://br/run[1]/x.txt"}, got)

	got = collect(t, e, `mem://br/run\[1\]/x.txt`)
	assert.Equal(t, []string{"mem://br/run[1]/x.txt"}, got)
}

func TestGlob_Reenumerable(t *testing.T) {
	e := newTree(t)
	seq := e.Glob(context.Background(), "mem://root/*.txt")

	var first []string
	for p, err := range seq {
		require.NoError(t, err)
		first = append(first, p)
	}
	assert.Equal(t, []string{"mem://root/a.txt"}, first)

	seed(t, e.reg, "mem://root", fstest.MapFS{"z.txt": file("z")})

	var second []string
	for p, err := range seq {
		require.NoError(t, err)
		second = append(second, p)
	}
	assert.Equal(t, []string{"mem://root/a.txt", "mem://root/z.txt"}, second)
}

func TestGlob_EarlyBreak(t *testing.T) {
	e := newTree(t)
	var got []string
	for p, err := range e.Glob(context.Background(), "mem://root", WithRecursiveDirs(true)) {
		require.NoError(t, err)
		got = append(got, p)
		if len(got) == 2 {
			break
		}
	}
	assert.Len(t, got, 2)
}

func TestGlob_Errors(t *testing.T) {
	e := newTree(t)

	t.Run("unknown protocol", func(t *testing.T) {
		var errs []error
		for p, err := range e.Glob(context.Background(), "gs://bucket/*") {
			assert.Empty(t, p)
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		assert.True(t, errors.HasCode(errs[0], errors.CodeNotImplemented))
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var errs []error
		for _, err := range e.Glob(ctx, "mem://root/*") {
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], context.Canceled)
	})

	t.Run("unsupported backend glob", func(t *testing.T) {
		var errs []error
		for _, err := range e.Glob(context.Background(), "https://example.invalid/*.gz") {
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		assert.True(t, errors.HasCode(errs[0], errors.CodeNotImplemented))
	})
}

func TestGlob_Local(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), nil, 0o644))

	reg, err := registry.New()
	require.NoError(t, err)
	e := New(reg)

	got := collect(t, e, dir, WithRecursiveDirs(true), WithYieldDirs(false))
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "sub", "b.txt"),
	}, got)

	got = collect(t, e, "file://"+dir+"/*.txt")
	assert.Equal(t, []string{"file://" + filepath.Join(dir, "a.txt")}, got)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden("a/.git"))
	assert.True(t, isHidden(".env"))
	assert.True(t, isHidden("a/.cache/"))
	assert.False(t, isHidden("a/b.txt"))
	assert.False(t, isHidden("a.b/c"))
}
