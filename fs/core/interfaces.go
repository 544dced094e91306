package core

import (
	"context"
	"io"
	"io/fs"
)

// FSType represents the underlying type of a backend.
type FSType int

const (
	// FSTypeUnknown indicates the backend type is unknown or unspecified.
	FSTypeUnknown FSType = iota
	// FSTypeLocal indicates the local disk.
	FSTypeLocal
	// FSTypeMemory indicates an in-memory filesystem.
	FSTypeMemory
	// FSTypeRemote indicates a remote store (e.g., S3, HTTP).
	FSTypeRemote
)

// String returns a string representation of the FSType.
func (t FSType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeMemory:
		return "memory"
	case FSTypeRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Backend is the capability set every protocol handler provides.
//
// Paths handed to a Backend are protocol-stripped: "bucket/key" for object
// stores, "/abs/path" for the local disk and "host/path?query" for HTTP.
// Results from Glob are in the same form. Errors for missing paths wrap
// fs.ErrNotExist so callers can test them with errors.Is.
//
// Backend is composed of five sub-interfaces: QueryFS, GlobFS, ReadFS,
// WriteFS and ManageFS.
type Backend interface {
	QueryFS
	GlobFS
	ReadFS
	WriteFS
	ManageFS

	// Type returns the underlying backend type.
	Type() FSType
}

// QueryFS answers questions about a single path.
type QueryFS interface {
	// Exists reports whether the named file or directory exists.
	// A false result with a non-nil error means existence could not be
	// determined, not that the path is missing.
	Exists(ctx context.Context, name string) (bool, error)

	// IsDir reports whether name is a directory. Object stores treat any
	// key prefix with at least one object under it as a directory.
	IsDir(ctx context.Context, name string) (bool, error)

	// IsFile reports whether name is a regular file or object.
	IsFile(ctx context.Context, name string) (bool, error)

	// Stat returns metadata for name. Size is the only field every backend
	// fills in.
	Stat(ctx context.Context, name string) (fs.FileInfo, error)
}

// GlobFS expands patterns.
type GlobFS interface {
	// Glob returns the paths matching pattern in lexical order. Patterns use
	// '*', '?' and '[...]' within a segment and '**' for any number of
	// segments, including none. A backslash makes the next metacharacter
	// literal. A pattern without wildcards yields itself if it exists.
	Glob(ctx context.Context, pattern string) ([]string, error)
}

// ReadFS opens read streams.
type ReadFS interface {
	// Open opens the named file for streaming reads. The caller must close
	// the returned reader.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// WriteFS creates files and directories.
type WriteFS interface {
	// Create opens a write stream to name, truncating any existing file.
	// Data becomes visible no later than Close; a writer that also
	// implements Aborter discards its data on Abort.
	Create(ctx context.Context, name string) (io.WriteCloser, error)

	// MkdirAll creates name along with any necessary parents. When existOK
	// is false an existing directory is reported as fs.ErrExist. Object
	// stores have no directories and treat this as a no-op.
	MkdirAll(ctx context.Context, name string, existOK bool) error
}

// ManageFS removes files and directories.
type ManageFS interface {
	// Remove deletes the named file. When recursive is set, name may be a
	// directory and everything under it is removed too. Removing a missing
	// path wraps fs.ErrNotExist.
	Remove(ctx context.Context, name string, recursive bool) error
}

// Aborter is implemented by writers that can discard partially written
// data instead of publishing it.
//
//	if a, ok := w.(Aborter); ok {
//	    a.Abort()
//	}
type Aborter interface {
	// Abort releases the writer without committing. Close must not be
	// called afterwards.
	Abort() error
}
