package registry

import (
	"context"
	"errors"
	"io/fs"
	pathpkg "path"
	"strings"

	perrors "github.com/amphancm/olmocr/errors"
	"github.com/amphancm/olmocr/locator"
)

// Exists reports whether path names an existing file or directory.
func (r *Registry) Exists(ctx context.Context, path string) bool {
	b, name, err := r.For(path)
	if err != nil {
		return false
	}
	ok, err := b.Exists(ctx, name)
	return r.answer(ctx, "exists", path, ok, err)
}

// IsDir reports whether path is a directory.
func (r *Registry) IsDir(ctx context.Context, path string) bool {
	b, name, err := r.For(path)
	if err != nil {
		return false
	}
	ok, err := b.IsDir(ctx, name)
	return r.answer(ctx, "isdir", path, ok, err)
}

// IsFile reports whether path is a file.
func (r *Registry) IsFile(ctx context.Context, path string) bool {
	b, name, err := r.For(path)
	if err != nil {
		return false
	}
	ok, err := b.IsFile(ctx, name)
	return r.answer(ctx, "isfile", path, ok, err)
}

func (r *Registry) answer(ctx context.Context, op, path string, ok bool, err error) bool {
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.WarnContext(ctx, "path query failed", "op", op, "path", path, "error", err)
		}
		return false
	}
	return ok
}

// DeleteFile removes the file at path and reports whether something was
// deleted. A missing file is an error unless ignoreMissing is set; a
// directory is always an error.
func (r *Registry) DeleteFile(ctx context.Context, path string, ignoreMissing bool) (bool, error) {
	return r.delete(ctx, path, ignoreMissing, false)
}

// DeleteDir removes the directory at path and everything under it, and
// reports whether something was deleted. A missing directory is an error
// unless ignoreMissing is set; a file is always an error.
func (r *Registry) DeleteDir(ctx context.Context, path string, ignoreMissing bool) (bool, error) {
	return r.delete(ctx, path, ignoreMissing, true)
}

func (r *Registry) delete(ctx context.Context, path string, ignoreMissing, dir bool) (bool, error) {
	if locator.IsGlob(path) {
		return false, perrors.InvalidPath(path, "cannot delete a glob pattern")
	}
	b, name, err := r.For(path)
	if err != nil {
		return false, err
	}

	info, err := b.Stat(ctx, name)
	if errors.Is(err, fs.ErrNotExist) {
		if ignoreMissing {
			return false, nil
		}
		return false, perrors.NotFound(path, err)
	}
	if err != nil {
		return false, Wrap(err, "stat", path)
	}

	switch {
	case dir && !info.IsDir():
		return false, perrors.WithContext(perrors.Newf(perrors.CodeNotADirectory, "%s is not a directory", path), "path", path)
	case !dir && info.IsDir():
		return false, perrors.WithContext(perrors.Newf(perrors.CodeIsADirectory, "%s is a directory", path), "path", path)
	}

	if err := b.Remove(ctx, name, dir); err != nil {
		if ignoreMissing && errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, Wrap(err, "remove", path)
	}
	r.logger.DebugContext(ctx, "deleted", "path", path, "dir", dir)
	return true, nil
}

// Size returns the size in bytes of the file at path.
func (r *Registry) Size(ctx context.Context, path string) (int64, error) {
	b, name, err := r.For(path)
	if err != nil {
		return 0, err
	}
	info, err := b.Stat(ctx, name)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, perrors.NotFound(path, err)
	}
	if err != nil {
		return 0, Wrap(err, "stat", path)
	}
	if info.IsDir() {
		return 0, perrors.WithContext(perrors.Newf(perrors.CodeIsADirectory, "%s is a directory", path), "path", path)
	}
	return info.Size(), nil
}

// MkdirP creates the directory at path and its parents. An existing
// directory is fine.
func (r *Registry) MkdirP(ctx context.Context, path string) error {
	if locator.IsGlob(path) {
		return perrors.InvalidPath(path, "cannot create a glob pattern")
	}
	b, name, err := r.For(path)
	if err != nil {
		return err
	}
	if err := b.MkdirAll(ctx, name, true); err != nil {
		return Wrap(err, "mkdir", path)
	}
	return nil
}

// MkdirParent creates the directory holding path. Unlike MkdirP it takes
// path literally, so names with glob metacharacters are fine.
func (r *Registry) MkdirParent(ctx context.Context, path string) error {
	b, name, err := r.For(path)
	if err != nil {
		return err
	}
	parent := pathpkg.Dir(strings.TrimRight(name, "/"))
	if parent == "." || parent == "/" || parent == name {
		return nil
	}
	if err := b.MkdirAll(ctx, parent, true); err != nil {
		return Wrap(err, "mkdir", path)
	}
	return nil
}
