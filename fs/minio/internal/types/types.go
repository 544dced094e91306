// Package types provides shared type definitions for the minio filesystem.
package types // nolint:revive // Internal package with clear purpose

import (
	"io/fs"
	"time"
)

// FileInfo implements fs.FileInfo for MinIO objects and virtual directories.
type FileInfo struct {
	FileName    string
	FileSize    int64
	FileModTime time.Time
	FileMode    fs.FileMode
}

// Name returns the name of the file.
func (fi *FileInfo) Name() string { return fi.FileName }

// Size returns the length in bytes for regular files.
func (fi *FileInfo) Size() int64 { return fi.FileSize }

// Mode returns the file mode bits.
func (fi *FileInfo) Mode() fs.FileMode { return fi.FileMode }

// ModTime returns the modification time.
func (fi *FileInfo) ModTime() time.Time { return fi.FileModTime }

// IsDir returns true if this describes a directory.
func (fi *FileInfo) IsDir() bool { return fi.FileMode&fs.ModeDir != 0 }

// Sys returns the underlying data source (always nil for S3).
func (fi *FileInfo) Sys() any { return nil }

// NewFileInfo describes an object.
func NewFileInfo(name string, size int64, modTime time.Time) *FileInfo {
	return &FileInfo{
		FileName:    name,
		FileSize:    size,
		FileModTime: modTime,
		FileMode:    0o644,
	}
}

// NewDirInfo describes a bucket or key prefix.
func NewDirInfo(name string) *FileInfo {
	return &FileInfo{
		FileName: name,
		FileMode: fs.ModeDir | 0o755,
	}
}

// Compile-time interface checks.
var _ fs.FileInfo = (*FileInfo)(nil)
