package billy

import (
	"io/fs"
	"log/slog"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/amphancm/olmocr/fs/core"
)

// file is a plain write stream over a billy.File.
type file struct {
	billy.File
}

// atomicFile writes to a temporary file and renames it over target on Close,
// so readers never see a partial file.
type atomicFile struct {
	file
	bfs    billy.Filesystem
	target string
	logger *slog.Logger
	done   bool
}

// Close commits the temporary file to its final name.
func (f *atomicFile) Close() error {
	if f.done {
		return core.PathError("close", f.target, fs.ErrClosed)
	}
	f.done = true

	tmp := f.Name()
	if err := f.File.Close(); err != nil {
		_ = f.bfs.Remove(tmp)
		return err
	}
	if err := f.bfs.Rename(tmp, f.target); err != nil {
		_ = f.bfs.Remove(tmp)
		return err
	}
	f.logger.Debug("committed file", "path", f.target)
	return nil
}

// Abort discards the temporary file.
func (f *atomicFile) Abort() error {
	if f.done {
		return nil
	}
	f.done = true

	tmp := f.Name()
	_ = f.File.Close()
	return f.bfs.Remove(tmp)
}

// rootInfo describes "/" on filesystems that do not store it.
type rootInfo struct{}

func (rootInfo) Name() string       { return "/" }
func (rootInfo) Size() int64        { return 0 }
func (rootInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o755 }
func (rootInfo) ModTime() time.Time { return time.Time{} }
func (rootInfo) IsDir() bool        { return true }
func (rootInfo) Sys() any           { return nil }

// Compile-time interface checks.
var (
	_ core.Aborter = (*atomicFile)(nil)
	_ fs.FileInfo  = rootInfo{}
)
