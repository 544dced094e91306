package core

import (
	"context"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Copy streams the file src on from to dst on to and returns the number of
// bytes written. The parent of dst must already exist on backends that have
// directories. On failure the destination writer is aborted when it supports
// it, so atomic backends leave nothing behind.
func Copy(ctx context.Context, from Backend, src string, to Backend, dst string) (int64, error) {
	r, err := from.Open(ctx, src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.Close() }()

	w, err := to.Create(ctx, dst)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(w, &ctxReader{ctx: ctx, r: r})
	if err != nil {
		abort(w)
		return n, err
	}
	if err := w.Close(); err != nil {
		return n, err
	}
	return n, nil
}

func abort(w io.WriteCloser) {
	if a, ok := w.(Aborter); ok {
		_ = a.Abort()
		return
	}
	_ = w.Close()
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// CopyFromFS copies every file under srcRoot in a read-only filesystem
// (typically embed.FS or fstest.MapFS) into dstRoot on a Backend, preserving
// the directory structure.
//
// Use "." as srcRoot to copy the entire source filesystem.
//
// Example:
//
//	//go:embed testdata/*
//	var fixtures embed.FS
//
//	mem := billy.NewMemory()
//	err := core.CopyFromFS(ctx, fixtures, "testdata", mem, "/seed")
func CopyFromFS(ctx context.Context, src fs.FS, srcRoot string, dst Backend, dstRoot string) error {
	return fs.WalkDir(src, srcRoot, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := filePath
		if srcRoot != "." && srcRoot != "" {
			rel = strings.TrimPrefix(strings.TrimPrefix(filePath, srcRoot), "/")
		}
		target := path.Join(dstRoot, rel)

		if err := dst.MkdirAll(ctx, path.Dir(target), true); err != nil {
			return err
		}

		f, err := src.Open(filePath)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		w, err := dst.Create(ctx, target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, f); err != nil {
			abort(w)
			return PathError("copy", target, err)
		}
		return w.Close()
	})
}
